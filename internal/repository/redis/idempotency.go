package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// releaseLock deletes KEYS[1] only while it still holds the lock marker.
var releaseLock = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyStore remembers the response of a request by its client key.
// A key is either locked while the first request runs or holds the saved
// response. A nil *IdempotencyStore is not usable; callers check for nil.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	if rdb == nil {
		return nil
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// AcquireLock reports whether the caller is the first to use key.
func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	const op = "redisrepo.IdempotencyStore.AcquireLock"

	ok, err := s.rdb.SetNX(ctx, key, lockValue, lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("%s:%w", op, err)
	}
	return ok, nil
}

// SaveResult replaces the lock with the response for the store TTL.
func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
	const op = "redisrepo.IdempotencyStore.SaveResult"

	if err := s.rdb.Set(ctx, key, resultPrefix+jsonPayload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}

// GetResult returns the saved response; a locked or missing key is not found.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, bool, error) {
	const op = "redisrepo.IdempotencyStore.GetResult"

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s:%w", op, err)
	}

	payload, ok := strings.CutPrefix(v, resultPrefix)
	return payload, ok, nil
}

// Release drops a held lock so the client can retry with the same key. A
// saved response is left in place.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	const op = "redisrepo.IdempotencyStore.Release"

	if err := releaseLock.Run(ctx, s.rdb, []string{key}, lockValue).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}
