package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
)

type Config struct {
	AvailabilityTTL time.Duration
	Location        *time.Location
	Now             func() time.Time
}

type Service struct {
	store repository.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 30 * time.Second
	}

	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// ParkAvailability reports capacity and booked tickets of a park on one
// calendar day, utilizing a caching layer. The result is informational:
// checkout always counts tickets inside its own transaction.
//
// Parameters:
//   - ctx: request-scoped context.
//   - parkID: ID of the park.
//   - date: YYYY-MM-DD or RFC3339; empty means today.
//
// Returns:
//   - *domain.ParkAvailability: the counters for that day.
//   - error: query.ErrParkNotFound if the park does not exist.
//   - error: domain.ValidationError if date cannot be parsed.
func (s *Service) ParkAvailability(ctx context.Context, parkID int64, date string) (*domain.ParkAvailability, error) {
	const op = "service.query.ParkAvailability"

	day := domain.Day(s.cfg.Now(), s.cfg.Location)
	if date != "" {
		d, err := domain.ParseVisitDate(date, s.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, domain.Invalid("date", "Invalid visit date."))
		}
		day = d
	}

	key := redisrepo.KeyParkAvailability(parkID, day)

	av, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.AvailabilityTTL,
		func(ctx context.Context) (domain.ParkAvailability, error) {
			park, err := s.store.Catalog().GetPark(ctx, parkID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.ParkAvailability{}, ErrParkNotFound
				}

				return domain.ParkAvailability{}, err
			}

			active, err := s.store.Tickets().CountActive(ctx, parkID, day)
			if err != nil {
				return domain.ParkAvailability{}, err
			}

			return domain.ParkAvailability{
				ParkID:    parkID,
				VisitDate: day,
				Capacity:  park.DailyCapacity,
				Active:    active,
				Remaining: max(park.DailyCapacity-active, 0),
			}, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &av, nil
}
