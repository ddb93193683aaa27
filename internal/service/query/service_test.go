package query

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

func seedTicket(t *testing.T, store *memory.Store, parkID int64, day time.Time) {
	t.Helper()

	err := store.RunTx(context.Background(), func(ctx context.Context, tx repository.Repos) error {
		uid, err := tx.Users().Create(ctx, domain.User{Email: "u@example.com"})
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, domain.Order{ID: 1, UserID: uid, Status: domain.OrderPaid}); err != nil {
			return err
		}
		return tx.Tickets().CreateBatch(ctx, []domain.Ticket{{
			ID: 1, OrderID: 1, UserID: uid, ParkID: parkID, VisitDate: day,
			Status: domain.TicketActive, RedemptionCode: "C-1",
		}})
	})
	require.NoError(t, err)
}

func TestParkAvailability(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	memory.Seed(store)
	seedTicket(t, store, 1, domain.Day(now, time.UTC))

	s := New(store, nil, Config{Now: func() time.Time { return now }})

	av, err := s.ParkAvailability(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 100, av.Capacity)
	assert.Equal(t, 1, av.Active)
	assert.Equal(t, 99, av.Remaining)

	av, err = s.ParkAvailability(ctx, 1, "2030-06-02")
	require.NoError(t, err)
	assert.Equal(t, 0, av.Active)

	_, err = s.ParkAvailability(ctx, 404, "")
	assert.ErrorIs(t, err, ErrParkNotFound)

	_, err = s.ParkAvailability(ctx, 1, "tomorrow")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParkAvailabilityIsCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := redisrepo.NewCache(rdb)

	store := memory.NewStore()
	memory.Seed(store)
	s := New(store, cache, Config{Now: func() time.Time { return now }})
	day := domain.Day(now, time.UTC)

	av, err := s.ParkAvailability(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 0, av.Active)

	seedTicket(t, store, 1, day)

	av, err = s.ParkAvailability(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 0, av.Active, "served from cache")

	require.NoError(t, cache.InvalidateParkDay(ctx, 1, day))

	av, err = s.ParkAvailability(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, av.Active)
}
