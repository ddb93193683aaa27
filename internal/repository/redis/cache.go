package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache is a JSON read-through cache. A nil *Cache is valid and never hits.
type Cache struct {
	rdb    *redis.Client
	flight singleflight.Group
}

func NewCache(client *redis.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{rdb: client}
}

// lookup decodes the value under key into dst. Misses and decode failures
// report false; only transport errors are returned.
func (c *Cache) lookup(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return json.Unmarshal(raw, dst) == nil, nil
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// GetOrSetJSON returns the cached value for key, or loads, stores and
// returns it. Concurrent misses on the same key share one loader call.
// Cache errors fall through to the loader.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if c == nil {
		return loader(ctx)
	}

	var hit T
	if ok, err := c.lookup(ctx, key, &hit); err == nil && ok {
		return hit, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		var again T
		if ok, err := c.lookup(ctx, key, &again); err == nil && ok {
			return again, nil
		}

		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		// write errors are ignored
		_ = c.store(ctx, key, loaded, ttl)

		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("redisrepo.GetOrSetJSON: unexpected %T for %s", v, key)
	}

	return out, nil
}

// InvalidateParkDay drops the cached availability of one park and day.
func (c *Cache) InvalidateParkDay(ctx context.Context, parkID int64, day time.Time) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, KeyParkAvailability(parkID, day)).Err()
}
