package booking

import (
	"errors"
	"fmt"

	"github.com/kirinyoku/parktix/internal/domain"
)

var (
	ErrTicketNotFound    = errors.New("ticket not found for this user")
	ErrInvalidTransition = errors.New("ticket status does not allow this change")
)

type TransitionError struct {
	TicketID int64
	From     domain.TicketStatus
	To       domain.TicketStatus
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("ticket %d cannot move from %s to %s", e.TicketID, e.From, e.To)
}

func (e TransitionError) Unwrap() error { return ErrInvalidTransition }
