package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	t.Helper()

	return New(memory.NewStore().Users(), nil, Config{
		JWTSecret:     "test-secret",
		SessionTTL:    time.Minute,
		AdminEmail:    "Admin@Admin.com",
		AdminPassword: "admin",
		BcryptCost:    bcrypt.MinCost,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	u, err := s.Register(ctx, "Ana", "  Ana@Example.COM ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = s.Register(ctx, "Ana 2", "ana@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := s.Login(ctx, "ANA@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.User.ID)

	claims, err := s.ParseToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestRegisterValidation(t *testing.T) {
	s := newService(t)

	_, err := s.Register(context.Background(), "", "a@b.c", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Register(context.Background(), "A", "not-an-email", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Register(context.Background(), "A", "admin@admin.com", "x")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAdminLoginUpsertsAdmin(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.Login(ctx, "admin@admin.com", "nope")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	first, err := s.Login(ctx, "admin@admin.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.User.Role)

	second, err := s.Login(ctx, "admin@admin.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	claims, err := s.ParseToken(second.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestParseTokenRejects(t *testing.T) {
	s := newService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	raw, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	forgedRaw, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	for _, tok := range []string{"", "garbage", raw, forgedRaw} {
		_, err := s.ParseToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
