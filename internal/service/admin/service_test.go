package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryAndListings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	memory.Seed(store)
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	err := store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		uid, err := tx.Users().Create(ctx, domain.User{Email: "u@example.com"})
		if err != nil {
			return err
		}
		statuses := []domain.OrderStatus{domain.OrderPaid, domain.OrderPaid, domain.OrderCancelled}
		for i, st := range statuses {
			id := int64(i + 1)
			if err := tx.Orders().Create(ctx, domain.Order{
				ID: id, UserID: uid, Status: st, TotalAmount: decimal.RequireFromString("12.50"),
				CreatedAt: day.Add(time.Duration(i) * time.Hour),
			}); err != nil {
				return err
			}
		}
		ticketStatuses := []domain.TicketStatus{domain.TicketActive, domain.TicketRescheduled, domain.TicketCancelled}
		for i, st := range ticketStatuses {
			id := int64(i + 1)
			if err := tx.Tickets().CreateBatch(ctx, []domain.Ticket{{
				ID: id, OrderID: id, UserID: uid, ParkID: 1, VisitDate: day,
				Status: st, RedemptionCode: fmt.Sprintf("C-%d", id),
			}}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	s := New(store)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sum.TotalUsers)
	assert.EqualValues(t, 3, sum.TotalOrders)
	assert.Equal(t, "25", sum.TotalRevenue.String())
	assert.EqualValues(t, 3, sum.TotalTickets)
	assert.EqualValues(t, 1, sum.ActiveTickets)
	assert.EqualValues(t, 1, sum.RescheduledTickets)
	assert.EqualValues(t, 1, sum.CancelledTickets)

	orders, err := s.ListOrders(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(3), orders[0].ID)

	orders, err = s.ListOrders(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1), orders[0].ID)

	tickets, err := s.ListTickets(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, tickets, 3)
	assert.Equal(t, "Santubong National Park", tickets[0].ParkName)
}
