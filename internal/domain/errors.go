package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("daily park capacity exceeded")
	ErrPaymentDeclined  = errors.New("payment declined")
	ErrConflict         = errors.New("concurrent update conflict")
	ErrParkClosed       = errors.New("park is closed")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

type CapacityExceededError struct {
	ParkID    int64
	VisitDate time.Time
	Capacity  int
	Active    int
	Requested int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf(
		"park %d is fully booked on %s (capacity %d, booked %d, requested %d)",
		e.ParkID, FormatDate(e.VisitDate), e.Capacity, e.Active, e.Requested,
	)
}

func (e CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

type PaymentDeclinedError struct {
	Method  string
	Message string
}

func (e PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Method, e.Message)
}

func (e PaymentDeclinedError) Unwrap() error { return ErrPaymentDeclined }
