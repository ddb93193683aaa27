package redisrepo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type availability struct {
	Remaining int `json:"remaining"`
}

func TestGetOrSetJSONLoadsOnce(t *testing.T) {
	ctx := context.Background()
	_, rdb := newClient(t)
	c := NewCache(rdb)
	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	key := KeyParkAvailability(1, day)

	var loads atomic.Int32
	loader := func(context.Context) (availability, error) {
		loads.Add(1)
		return availability{Remaining: 42}, nil
	}

	for range 3 {
		v, err := GetOrSetJSON(ctx, c, key, time.Minute, loader)
		require.NoError(t, err)
		assert.Equal(t, 42, v.Remaining)
	}
	assert.EqualValues(t, 1, loads.Load())

	require.NoError(t, c.InvalidateParkDay(ctx, 1, day))
	_, err := GetOrSetJSON(ctx, c, key, time.Minute, loader)
	require.NoError(t, err)
	assert.EqualValues(t, 2, loads.Load())
}

func TestGetOrSetJSONLoaderError(t *testing.T) {
	_, rdb := newClient(t)
	boom := errors.New("boom")

	_, err := GetOrSetJSON(context.Background(), NewCache(rdb), "k", time.Minute,
		func(context.Context) (availability, error) { return availability{}, boom })
	assert.ErrorIs(t, err, boom)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Cache

	v, err := GetOrSetJSON(context.Background(), c, "k", time.Minute,
		func(context.Context) (availability, error) { return availability{Remaining: 7}, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v.Remaining)
	assert.NoError(t, c.InvalidateParkDay(context.Background(), 1, time.Now()))
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	_, rdb := newClient(t)
	s := NewIdempotencyStore(rdb, time.Hour)
	key := KeyIdemCheckout(1, "abc")

	ok, err := s.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SaveResult(ctx, key, `{"orderId":1}`))
	payload, found, err := s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"orderId":1}`, payload)

	// a saved response survives Release
	require.NoError(t, s.Release(ctx, key))
	_, found, err = s.GetResult(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestIdempotencyReleaseFreesLock(t *testing.T) {
	ctx := context.Background()
	_, rdb := newClient(t)
	s := NewIdempotencyStore(rdb, time.Hour)
	key := KeyIdemCheckout(2, "retry")

	ok, err := s.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, key))

	ok, err = s.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	_, rdb := newClient(t)
	l := NewSlidingWindowLimiter(rdb, KeyRateLimit("checkout"), 2, time.Minute)

	for i := range 2 {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.EqualValues(t, i+1, d.Count)
	}

	d, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.EqualValues(t, 2, d.Count)
	assert.Greater(t, d.RetryAfter, time.Duration(0))

	d, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestSlidingWindowLimiterWindowSlides(t *testing.T) {
	ctx := context.Background()
	_, rdb := newClient(t)
	l := NewSlidingWindowLimiter(rdb, KeyRateLimit("checkout"), 1, time.Minute)

	now := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	d, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	now = now.Add(30 * time.Second)
	d, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	now = now.Add(31 * time.Second)
	d, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestNilLimiterAllows(t *testing.T) {
	l := NewSlidingWindowLimiter(nil, "x", 1, time.Minute)

	d, err := l.Allow(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestParkDayPubSub(t *testing.T) {
	_, rdb := newClient(t)
	ps := NewParkDayPubSub(rdb)
	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type change struct {
		park int64
		day  time.Time
	}
	got := make(chan change, 16)
	go func() {
		_ = ps.Subscribe(ctx, func(_ context.Context, parkID int64, d time.Time) {
			got <- change{parkID, d}
		})
	}()

	var c change
	require.Eventually(t, func() bool {
		_ = ps.PublishParkDayChanged(ctx, 3, day)
		select {
		case c = <-got:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, int64(3), c.park)
	assert.True(t, day.Equal(c.day))
}
