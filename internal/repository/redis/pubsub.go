package redisrepo

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ParkDayPubSub broadcasts changes to the ticket count of a park and day so
// every instance can drop its cached availability. A nil *ParkDayPubSub
// publishes nothing.
type ParkDayPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewParkDayPubSub(rdb *redis.Client) *ParkDayPubSub {
	if rdb == nil {
		return nil
	}
	return &ParkDayPubSub{
		rdb:     rdb,
		channel: ChannelParkDayChanged(),
	}
}

type parkDayChangedMsg struct {
	Type      string `json:"type"`
	ParkID    int64  `json:"park_id"`
	VisitDate string `json:"visit_date"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *ParkDayPubSub) PublishParkDayChanged(ctx context.Context, parkID int64, day time.Time) error {
	if p == nil {
		return nil
	}

	msg := parkDayChangedMsg{
		Type:      "park_day_changed",
		ParkID:    parkID,
		VisitDate: domain.FormatDate(day),
		TsUnix:    time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe calls handler for every change message until ctx is done.
func (p *ParkDayPubSub) Subscribe(
	ctx context.Context,
	handler func(ctx context.Context, parkID int64, day time.Time),
) error {
	if p == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev parkDayChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil || ev.ParkID == 0 {
				continue
			}
			day, err := time.Parse(domain.DateLayout, ev.VisitDate)
			if err != nil {
				continue
			}
			handler(ctx, ev.ParkID, day)
		}
	}
}

// ParkDayNotifier drops the local cached availability of a park and day and
// tells other instances to do the same. A nil *ParkDayNotifier does nothing.
type ParkDayNotifier struct {
	cache  *Cache
	pubsub *ParkDayPubSub
	log    *slog.Logger
}

func NewParkDayNotifier(cache *Cache, pubsub *ParkDayPubSub, log *slog.Logger) *ParkDayNotifier {
	if cache == nil && pubsub == nil {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	return &ParkDayNotifier{cache: cache, pubsub: pubsub, log: log}
}

func (n *ParkDayNotifier) ParkDayChanged(ctx context.Context, parkID int64, day time.Time) {
	if n == nil {
		return
	}
	if err := n.cache.InvalidateParkDay(ctx, parkID, day); err != nil {
		n.log.Warn("invalidate availability cache",
			slog.Int64("park_id", parkID),
			slog.String("visit_date", domain.FormatDate(day)),
			slog.String("error", err.Error()),
		)
	}
	if err := n.pubsub.PublishParkDayChanged(ctx, parkID, day); err != nil {
		n.log.Warn("publish park day change",
			slog.Int64("park_id", parkID),
			slog.String("visit_date", domain.FormatDate(day)),
			slog.String("error", err.Error()),
		)
	}
}
