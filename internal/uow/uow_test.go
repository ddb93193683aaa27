package uow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore aborts the first n transactions with a serialization failure.
type flakyStore struct {
	repository.Store
	fail  int
	calls int
}

func (s *flakyStore) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	s.calls++
	return s.Store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if s.calls <= s.fail {
			return fmt.Errorf("commit: %w", repository.ErrSerialization)
		}
		return nil
	})
}

func TestDoRunsHooksAfterCommit(t *testing.T) {
	u := NewUoW(memory.NewStore(), Options{MaxAttempts: 3}, nil)

	var ran []string
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		after(func(context.Context) { ran = append(ran, "first") })
		after(func(context.Context) { ran = append(ran, "second") })
		assert.Empty(t, ran)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestDoSkipsHooksOnError(t *testing.T) {
	u := NewUoW(memory.NewStore(), Options{MaxAttempts: 3}, nil)
	boom := errors.New("boom")

	ran := false
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		after(func(context.Context) { ran = true })
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, ran)
}

func TestDoRetriesSerializationFailures(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore(), fail: 2}
	u := NewUoW(store, Options{MaxAttempts: 3, BaseBackoff: time.Millisecond}, nil)

	hooks := 0
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		after(func(context.Context) { hooks++ })
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
	assert.Equal(t, 1, hooks)
}

func TestDoGivesUpWithConflict(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore(), fail: 10}
	u := NewUoW(store, Options{MaxAttempts: 2, BaseBackoff: time.Millisecond}, nil)

	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		return nil
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, store.calls)
}
