package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeded(t *testing.T) (*Store, int64) {
	t.Helper()

	s := NewStore()
	Seed(s)

	uid, err := s.Users().Create(context.Background(), domain.User{Email: "a@example.com", FullName: "A"})
	require.NoError(t, err)
	return s, uid
}

func TestRunTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, uid := newSeeded(t)
	boom := errors.New("boom")

	var allocated int64
	err := s.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		id, err := tx.Sequences().Next(ctx, repository.SeqOrders)
		require.NoError(t, err)
		allocated = id

		require.NoError(t, tx.Orders().Create(ctx, domain.Order{
			ID:          id,
			UserID:      uid,
			Status:      domain.OrderPaid,
			TotalAmount: decimal.RequireFromString("25"),
			CreatedAt:   time.Now(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Orders().Get(ctx, allocated)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	next, err := s.Sequences().Next(ctx, repository.SeqOrders)
	require.NoError(t, err)
	assert.Equal(t, allocated+1, next)
}

func TestRunTxCommitsAndCountsActive(t *testing.T) {
	ctx := context.Background()
	s, uid := newSeeded(t)
	day := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)

	err := s.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		require.NoError(t, tx.Orders().Create(ctx, domain.Order{ID: 7, UserID: uid, Status: domain.OrderPaid}))
		return tx.Tickets().CreateBatch(ctx, []domain.Ticket{
			{ID: 1, OrderID: 7, UserID: uid, ParkID: 1, VisitDate: day, Status: domain.TicketActive, RedemptionCode: "ORDER-7-1-1"},
			{ID: 2, OrderID: 7, UserID: uid, ParkID: 1, VisitDate: day, Status: domain.TicketActive, RedemptionCode: "ORDER-7-1-2"},
		})
	})
	require.NoError(t, err)

	n, err := s.Tickets().CountActive(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Tickets().UpdateStatus(ctx, 1, domain.TicketCancelled))
	n, err = s.Tickets().CountActive(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tk, err := s.Tickets().Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Santubong National Park", tk.ParkName)
}

func TestCreateBatchRejectsForeignOwner(t *testing.T) {
	ctx := context.Background()
	s, uid := newSeeded(t)
	other, err := s.Users().Create(ctx, domain.User{Email: "b@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.Orders().Create(ctx, domain.Order{ID: 1, UserID: uid, Status: domain.OrderPaid}))
	err = s.Tickets().CreateBatch(ctx, []domain.Ticket{
		{ID: 1, OrderID: 1, UserID: other, ParkID: 1, Status: domain.TicketActive, RedemptionCode: "X"},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUsersCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newSeeded(t)

	_, err := s.Users().Create(ctx, domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestNextNAscending(t *testing.T) {
	s := NewStore()

	ids, err := s.Sequences().NextN(context.Background(), repository.SeqTickets, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestMarkCancelledTwice(t *testing.T) {
	ctx := context.Background()
	s, uid := newSeeded(t)
	require.NoError(t, s.Orders().Create(ctx, domain.Order{ID: 3, UserID: uid, Status: domain.OrderPaid}))

	require.NoError(t, s.Orders().MarkCancelled(ctx, 3))
	assert.ErrorIs(t, s.Orders().MarkCancelled(ctx, 3), repository.ErrNotFound)
}
