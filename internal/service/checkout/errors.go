package checkout

import (
	"errors"

	"github.com/kirinyoku/parktix/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("one or more products are invalid")
	ErrParkClosed      = domain.ErrParkClosed
	ErrRateLimited     = errors.New("rate limited")
)
