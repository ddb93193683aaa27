package uow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

type Options struct {
	// MaxAttempts bounds how many times a transaction aborted by a
	// serialization failure or deadlock is run. Values below 1 mean 1.
	MaxAttempts int
	// BaseBackoff is the first retry delay; later delays double and get
	// up to 50% jitter.
	BaseBackoff time.Duration
}

// UoW represents a unit of work.
type UoW struct {
	store repository.Store
	opts  Options
	log   *slog.Logger
}

func NewUoW(store repository.Store, opts Options, log *slog.Logger) *UoW {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 10 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &UoW{store: store, opts: opts, log: log}
}

// Do runs fn inside a transaction. After a successful commit,
// it executes all after-commit hooks registered by the final attempt.
//
// A transaction the store aborts with repository.ErrSerialization is rerun
// from scratch. When every attempt aborts, Do returns domain.ErrConflict.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error,
) error {
	const op = "uow.UoW.Do"

	var err error
	for attempt := 1; attempt <= u.opts.MaxAttempts; attempt++ {
		var hooks []AfterCommit

		err = u.store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil {
			for _, h := range hooks {
				h(ctx)
			}
			return nil
		}

		if !errors.Is(err, repository.ErrSerialization) {
			return err
		}

		u.log.Warn("transaction aborted, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", u.opts.MaxAttempts),
			slog.String("error", err.Error()),
		)

		if attempt == u.opts.MaxAttempts {
			break
		}
		if werr := u.wait(ctx, attempt); werr != nil {
			return fmt.Errorf("%s:%w", op, werr)
		}
	}

	return fmt.Errorf("%s:%w: %v", op, domain.ErrConflict, err)
}

func (u *UoW) wait(ctx context.Context, attempt int) error {
	d := u.opts.BaseBackoff << (attempt - 1)
	d += time.Duration(rand.Int64N(int64(d)/2 + 1))

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
