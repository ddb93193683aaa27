package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	"github.com/kirinyoku/parktix/internal/uow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now      = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)
	visitDay = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
)

const parkID = int64(50)

type fixture struct {
	store *memory.Store
	svc   *Service
	owner int64
	other int64
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	store.PutPark(domain.Park{ID: parkID, Name: "Test Park", DailyCapacity: capacity, Status: domain.ParkOpen})

	owner, err := store.Users().Create(ctx, domain.User{Email: "owner@example.com"})
	require.NoError(t, err)
	other, err := store.Users().Create(ctx, domain.User{Email: "other@example.com"})
	require.NoError(t, err)

	svc := New(
		uow.NewUoW(store, uow.Options{MaxAttempts: 3}, nil),
		nil,
		nil,
		nil,
		Config{Now: func() time.Time { return now }},
	)

	return &fixture{store: store, svc: svc, owner: owner, other: other}
}

// issue stores one order of userID with n ACTIVE tickets on day.
func (f *fixture) issue(t *testing.T, userID int64, day time.Time, n int) []int64 {
	t.Helper()

	var ids []int64
	err := f.store.RunTx(context.Background(), func(ctx context.Context, tx repository.Repos) error {
		orderID, err := tx.Sequences().Next(ctx, repository.SeqOrders)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, domain.Order{ID: orderID, UserID: userID, Status: domain.OrderPaid}); err != nil {
			return err
		}
		ids, err = tx.Sequences().NextN(ctx, repository.SeqTickets, n)
		if err != nil {
			return err
		}
		tickets := make([]domain.Ticket, n)
		for i, id := range ids {
			tickets[i] = domain.Ticket{
				ID:             id,
				OrderID:        orderID,
				UserID:         userID,
				ParkID:         parkID,
				VisitDate:      day,
				Status:         domain.TicketActive,
				RedemptionCode: fmt.Sprintf("T-%d", id),
			}
		}
		return tx.Tickets().CreateBatch(ctx, tickets)
	})
	require.NoError(t, err)
	return ids
}

func (f *fixture) ticket(t *testing.T, id int64) *domain.Ticket {
	t.Helper()
	tk, err := f.store.Tickets().Get(context.Background(), id)
	require.NoError(t, err)
	return tk
}

func TestCancelTwiceIsSafe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 2)

	res, err := f.svc.Cancel(ctx, ids[0], f.owner)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCancelled)
	assert.Equal(t, "Ticket cancelled.", res.Message())

	res, err = f.svc.Cancel(ctx, ids[0], f.owner)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCancelled)
	assert.Equal(t, "Ticket already cancelled.", res.Message())

	assert.Equal(t, domain.TicketCancelled, f.ticket(t, ids[0]).Status)
	assert.Equal(t, domain.TicketActive, f.ticket(t, ids[1]).Status)
}

func TestCancelForeignTicketLooksMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 1)

	_, err := f.svc.Cancel(ctx, ids[0], f.other)
	require.ErrorIs(t, err, ErrTicketNotFound)

	_, err = f.svc.Cancel(ctx, 9999, f.owner)
	require.ErrorIs(t, err, ErrTicketNotFound)

	assert.Equal(t, domain.TicketActive, f.ticket(t, ids[0]).Status)
}

func TestCancelAsAdminIgnoresOwner(t *testing.T) {
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 1)

	res, err := f.svc.CancelAsAdmin(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.TicketCancelled, res.Ticket.Status)
}

func TestCancelFreesCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	ids := f.issue(t, f.owner, visitDay, 1)

	_, err := f.svc.Cancel(ctx, ids[0], f.owner)
	require.NoError(t, err)

	n, err := f.store.Tickets().CountActive(ctx, parkID, visitDay)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 1)

	tk, err := f.svc.Reschedule(ctx, ids[0], f.owner, "2030-06-10")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketRescheduled, tk.Status)
	assert.Equal(t, "2030-06-10", domain.FormatDate(tk.VisitDate))

	// a rescheduled ticket can move again
	tk, err = f.svc.Reschedule(ctx, ids[0], f.owner, "2030-06-12T15:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2030-06-12", domain.FormatDate(f.ticket(t, ids[0]).VisitDate))
	assert.Equal(t, domain.TicketRescheduled, tk.Status)
}

func TestRescheduleToFullDayLeavesTicketUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	full := visitDay.AddDate(0, 0, 3)
	f.issue(t, f.other, full, 1)
	ids := f.issue(t, f.owner, visitDay, 1)

	_, err := f.svc.Reschedule(ctx, ids[0], f.owner, domain.FormatDate(full))
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	tk := f.ticket(t, ids[0])
	assert.Equal(t, domain.TicketActive, tk.Status)
	assert.True(t, tk.VisitDate.Equal(visitDay))
}

func TestRescheduleSameDayOnFullPark(t *testing.T) {
	f := newFixture(t, 1)
	ids := f.issue(t, f.owner, visitDay, 1)

	tk, err := f.svc.Reschedule(context.Background(), ids[0], f.owner, domain.FormatDate(visitDay))
	require.NoError(t, err)
	assert.Equal(t, domain.TicketRescheduled, tk.Status)
}

func TestRescheduleIntoClosedPark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 1)
	f.store.PutPark(domain.Park{ID: parkID, Name: "Test Park", DailyCapacity: 5, Status: domain.ParkClosed})

	for _, date := range []string{"2030-06-10", domain.FormatDate(visitDay)} {
		_, err := f.svc.Reschedule(ctx, ids[0], f.owner, date)
		require.ErrorIs(t, err, domain.ErrParkClosed, date)
	}

	tk := f.ticket(t, ids[0])
	assert.Equal(t, domain.TicketActive, tk.Status)
	assert.True(t, tk.VisitDate.Equal(visitDay))
}

func TestRescheduleRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 2)
	_, err := f.svc.Cancel(ctx, ids[1], f.owner)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      int64
		user    int64
		date    string
		wantErr error
	}{
		{"bad date", ids[0], f.owner, "2030-13-01", domain.ErrValidation},
		{"empty date", ids[0], f.owner, "", domain.ErrValidation},
		{"past date", ids[0], f.owner, "2030-05-01", domain.ErrValidation},
		{"foreign ticket", ids[0], f.other, "2030-06-05", ErrTicketNotFound},
		{"missing ticket", 777, f.owner, "2030-06-05", ErrTicketNotFound},
		{"cancelled ticket", ids[1], f.owner, "2030-06-05", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Reschedule(ctx, tt.id, tt.user, tt.date)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.True(t, f.ticket(t, ids[0]).VisitDate.Equal(visitDay))
	assert.Equal(t, domain.TicketCancelled, f.ticket(t, ids[1]).Status)
}

func TestRescheduleAsAdmin(t *testing.T) {
	f := newFixture(t, 5)
	ids := f.issue(t, f.owner, visitDay, 1)

	tk, err := f.svc.RescheduleAsAdmin(context.Background(), ids[0], "2030-07-01")
	require.NoError(t, err)
	assert.Equal(t, f.owner, tk.UserID)
	assert.Equal(t, "2030-07-01", domain.FormatDate(tk.VisitDate))
}
