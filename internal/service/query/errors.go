package query

import (
	"errors"
)

var (
	ErrParkNotFound = errors.New("park not found")
)
