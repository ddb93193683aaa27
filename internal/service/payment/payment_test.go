package payment

import (
	"context"
	"testing"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := DefaultRegistry()

	for _, tag := range []string{"CARD", "wallet", " cash ", "DUMMY"} {
		s, err := r.Resolve(tag)
		require.NoError(t, err, tag)
		assert.NotNil(t, s)
	}

	_, err := r.Resolve("BITCOIN")
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = r.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCardValidate(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		wantErr bool
	}{
		{"empty", "", true},
		{"blank", "   ", true},
		{"too short", "4111", true},
		{"letters", "4111-1111-1111-11ab", true},
		{"too long", "41111111111111111111", true},
		{"plain", "4111111111111111", false},
		{"spaced", "4111 1111 1111 1111", false},
		{"dashed", "4111-1111-1111-1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Card{}.Validate(Details{CardNumber: tt.number})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWalletValidate(t *testing.T) {
	assert.NoError(t, Wallet{}.Validate(Details{WalletProvider: "GrabPay"}))
	assert.ErrorIs(t, Wallet{}.Validate(Details{}), domain.ErrValidation)
	assert.ErrorIs(t, Wallet{}.Validate(Details{WalletProvider: "paypal"}), domain.ErrValidation)
}

func TestExecuteSucceedsWithReference(t *testing.T) {
	amount := decimal.RequireFromString("55.00")

	out, err := Card{}.Execute(context.Background(), amount, Details{CardNumber: "4111111111111111"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Contains(t, out.Reference, "CARD-")

	out, err = Cash{Tag: MethodDummy}.Execute(context.Background(), amount, Details{})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Contains(t, out.Reference, "DUMMY-")
}

func TestExecuteTimesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	out, err := Wallet{}.Execute(ctx, decimal.NewFromInt(1), Details{WalletProvider: "tng"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Payment timed out.", out.Message)
}
