package cart

import (
	"context"
	"testing"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	memory.Seed(store)
	uid, err := store.Users().Create(ctx, domain.User{Email: "u@example.com"})
	require.NoError(t, err)
	s := New(store)

	_, err = s.AddItem(ctx, uid, 1, 2)
	require.NoError(t, err)
	c, err := s.AddItem(ctx, uid, 1, 1)
	require.NoError(t, err)
	c, err = s.AddItem(ctx, uid, 5, 1)
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "Santubong Adult Ticket", c.Items[0].ProductName)
	assert.Equal(t, "83", c.Total.String())

	_, err = s.AddItem(ctx, uid, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.AddItem(ctx, 999, 1, 1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.AddItem(ctx, uid, 1, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, s.Clear(ctx, uid))
	c, err = s.Get(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.Total.IsZero())
}
