package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/kirinyoku/parktix/internal/uow"
)

type Service struct {
	store    repository.Store
	uow      *uow.UoW
	notifier *redisrepo.ParkDayNotifier
	log      *slog.Logger
}

func New(
	store repository.Store,
	tx *uow.UoW,
	notifier *redisrepo.ParkDayNotifier,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{store: store, uow: tx, notifier: notifier, log: log}
}

// ListByUser returns the orders of a user with their items, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const op = "service.orders.ListByUser"

	if userID <= 0 {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("userId", "userId is required."))
	}

	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return orders, nil
}

// TicketsByUser returns the tickets of a user ordered by visit date.
func (s *Service) TicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	const op = "service.orders.TicketsByUser"

	if userID <= 0 {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("userId", "userId is required."))
	}

	tickets, err := s.store.Tickets().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tickets, nil
}

type CancelResult struct {
	Order            domain.Order
	CancelledTickets []domain.Ticket
}

// Cancel moves a whole order to CANCELLED together with every ticket of the
// order that is not cancelled yet.
//
// Parameters:
//   - ctx: request-scoped context.
//   - orderID: ID of the order to cancel.
//
// Returns:
//   - *CancelResult: the cancelled order and the tickets this call cancelled.
//   - error: orders.ErrOrderNotFound if the order does not exist.
//   - error: orders.ErrOrderNotCancellable if it is already cancelled.
func (s *Service) Cancel(ctx context.Context, orderID int64) (*CancelResult, error) {
	const op = "service.orders.Cancel"

	var res CancelResult

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		o, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if o.Status == domain.OrderCancelled {
			return ErrOrderNotCancellable
		}

		if err := tx.Orders().MarkCancelled(ctx, orderID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotCancellable
			}
			return err
		}

		tickets, err := tx.Tickets().CancelByOrder(ctx, orderID)
		if err != nil {
			return err
		}

		o.Status = domain.OrderCancelled
		res = CancelResult{Order: *o, CancelledTickets: tickets}

		after(func(ctx context.Context) {
			for _, t := range tickets {
				s.notifier.ParkDayChanged(ctx, t.ParkID, t.VisitDate)
			}
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.log.Info("order cancelled",
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", res.Order.UserID),
		slog.Int("tickets", len(res.CancelledTickets)),
	)

	return &res, nil
}
