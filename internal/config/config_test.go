package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TIMEZONE", "Asia/Kuching")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Store.TxAttempts)
	assert.Equal(t, "Asia/Kuching", cfg.Store.Location.String())
	assert.Equal(t, 10, cfg.Checkout.MaxTicketsPerOrder)
	assert.Equal(t, 5*time.Second, cfg.Checkout.PaymentTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, 10, cfg.RateLimit.CheckoutPerMinute)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "eighty"}},
		{"bad driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"bad timeout", map[string]string{"PAYMENT_TIMEOUT": "5 seconds"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"missing secret", map[string]string{"AUTH_JWT_SECRET": ""}},
		{"postgres without user", map[string]string{"STORE_DRIVER": "postgres", "POSTGRES_USER": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_DRIVER", "memory")
			t.Setenv("AUTH_JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "parktix", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/parktix?sslmode=disable", cfg.DSN())
}
