package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/metrics"
	"github.com/kirinyoku/parktix/internal/repository"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/kirinyoku/parktix/internal/uow"
)

type Config struct {
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	uow      *uow.UoW
	notifier *redisrepo.ParkDayNotifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	cfg      Config
}

func New(
	tx *uow.UoW,
	notifier *redisrepo.ParkDayNotifier,
	m *metrics.Metrics,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		uow:      tx,
		notifier: notifier,
		metrics:  m,
		log:      log,
		cfg:      cfg,
	}
}

type CancelResult struct {
	Ticket domain.Ticket
	// AlreadyCancelled is set when the ticket was cancelled before this
	// call; nothing was written.
	AlreadyCancelled bool
}

func (r CancelResult) Message() string {
	if r.AlreadyCancelled {
		return "Ticket already cancelled."
	}
	return "Ticket cancelled."
}

// Cancel cancels a ticket owned by userID. Cancelling a cancelled ticket
// succeeds and reports AlreadyCancelled.
//
// Returns:
//   - error: booking.ErrTicketNotFound if the ticket does not exist or
//     belongs to another user.
func (s *Service) Cancel(ctx context.Context, ticketID, userID int64) (*CancelResult, error) {
	const op = "service.booking.Cancel"

	if userID <= 0 {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("userId", "User is required."))
	}

	res, err := s.cancel(ctx, ticketID, &userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return res, nil
}

// CancelAsAdmin cancels any ticket regardless of its owner.
func (s *Service) CancelAsAdmin(ctx context.Context, ticketID int64) (*CancelResult, error) {
	const op = "service.booking.CancelAsAdmin"

	res, err := s.cancel(ctx, ticketID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return res, nil
}

func (s *Service) cancel(ctx context.Context, ticketID int64, userID *int64) (*CancelResult, error) {
	var res CancelResult

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		t, err := ownedTicket(ctx, tx, ticketID, userID)
		if err != nil {
			return err
		}

		if t.Status == domain.TicketCancelled {
			res = CancelResult{Ticket: *t, AlreadyCancelled: true}
			return nil
		}

		if err := tx.Tickets().UpdateStatus(ctx, t.ID, domain.TicketCancelled); err != nil {
			return err
		}

		t.Status = domain.TicketCancelled
		res = CancelResult{Ticket: *t}

		after(func(ctx context.Context) {
			s.notifier.ParkDayChanged(ctx, t.ParkID, t.VisitDate)
		})

		return nil
	})
	if err != nil {
		s.metrics.ObserveTicketOp("cancel", resultOf(err))
		return nil, err
	}

	result := "success"
	if res.AlreadyCancelled {
		result = "already_cancelled"
	}
	s.metrics.ObserveTicketOp("cancel", result)
	s.log.Info("ticket cancelled",
		slog.Int64("ticket_id", ticketID),
		slog.Int64("user_id", res.Ticket.UserID),
		slog.Bool("already_cancelled", res.AlreadyCancelled),
	)

	return &res, nil
}

// Reschedule moves a ticket owned by userID to newDate and marks it
// RESCHEDULED. The target park and day must have room for one more ticket
// unless the date does not change.
//
// Returns:
//   - error: domain.ValidationError if newDate is not a valid date or lies
//     in the past.
//   - error: booking.ErrTicketNotFound under the same rule as Cancel.
//   - error: booking.TransitionError if the ticket is cancelled.
//   - error: domain.ErrParkClosed if the ticket's park is closed.
//   - error: domain.CapacityExceededError if the target day is full.
func (s *Service) Reschedule(ctx context.Context, ticketID, userID int64, newDate string) (*domain.Ticket, error) {
	const op = "service.booking.Reschedule"

	if userID <= 0 {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("userId", "User is required."))
	}

	t, err := s.reschedule(ctx, ticketID, &userID, newDate)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}

// RescheduleAsAdmin reschedules any ticket regardless of its owner.
func (s *Service) RescheduleAsAdmin(ctx context.Context, ticketID int64, newDate string) (*domain.Ticket, error) {
	const op = "service.booking.RescheduleAsAdmin"

	t, err := s.reschedule(ctx, ticketID, nil, newDate)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}

func (s *Service) reschedule(
	ctx context.Context,
	ticketID int64,
	userID *int64,
	newDate string,
) (*domain.Ticket, error) {
	day, err := domain.ParseVisitDate(newDate, s.cfg.Location)
	if err != nil {
		s.metrics.ObserveTicketOp("reschedule", "invalid")
		return nil, domain.Invalid("newDate", "Invalid visit date.")
	}

	if day.Before(domain.Day(s.cfg.Now(), s.cfg.Location)) {
		s.metrics.ObserveTicketOp("reschedule", "invalid")
		return nil, domain.Invalid("newDate", "Visit date cannot be in the past.")
	}

	var updated domain.Ticket

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx repository.Repos,
		after func(uow.AfterCommit),
	) error {
		t, err := ownedTicket(ctx, tx, ticketID, userID)
		if err != nil {
			return err
		}

		if t.Status == domain.TicketCancelled {
			return TransitionError{TicketID: t.ID, From: t.Status, To: domain.TicketRescheduled}
		}

		park, err := tx.Catalog().GetPark(ctx, t.ParkID)
		if err != nil {
			return err
		}

		// a closed park takes no bookings, not even a same-day move
		if park.Status == domain.ParkClosed {
			return fmt.Errorf("%w: %s", domain.ErrParkClosed, park.Name)
		}

		from := t.VisitDate

		if !from.Equal(day) {
			if err := tx.Tickets().LockParkDay(ctx, t.ParkID, day); err != nil {
				return err
			}

			active, err := tx.Tickets().CountActive(ctx, t.ParkID, day)
			if err != nil {
				return err
			}

			if active+1 > park.DailyCapacity {
				return domain.CapacityExceededError{
					ParkID:    park.ID,
					VisitDate: day,
					Capacity:  park.DailyCapacity,
					Active:    active,
					Requested: 1,
				}
			}
		}

		if err := tx.Tickets().Reschedule(ctx, t.ID, day); err != nil {
			return err
		}

		t.VisitDate = day
		t.Status = domain.TicketRescheduled
		updated = *t

		after(func(ctx context.Context) {
			s.notifier.ParkDayChanged(ctx, t.ParkID, from)
			if !from.Equal(day) {
				s.notifier.ParkDayChanged(ctx, t.ParkID, day)
			}
		})

		return nil
	})
	if err != nil {
		s.metrics.ObserveTicketOp("reschedule", resultOf(err))
		return nil, err
	}

	s.metrics.ObserveTicketOp("reschedule", "success")
	s.log.Info("ticket rescheduled",
		slog.Int64("ticket_id", updated.ID),
		slog.Int64("user_id", updated.UserID),
		slog.Int64("park_id", updated.ParkID),
		slog.String("visit_date", domain.FormatDate(updated.VisitDate)),
	)

	return &updated, nil
}

// ownedTicket locks the ticket and checks that userID, when given, owns it.
// A foreign ticket is reported exactly like a missing one.
func ownedTicket(ctx context.Context, tx repository.Repos, ticketID int64, userID *int64) (*domain.Ticket, error) {
	t, err := tx.Tickets().GetForUpdate(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	if userID != nil && t.UserID != *userID {
		return nil, ErrTicketNotFound
	}

	return t, nil
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrParkClosed):
		return "park_closed"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
