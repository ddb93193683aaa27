package service

import (
	"log/slog"

	"github.com/kirinyoku/parktix/internal/metrics"
	"github.com/kirinyoku/parktix/internal/repository"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/kirinyoku/parktix/internal/service/admin"
	"github.com/kirinyoku/parktix/internal/service/auth"
	"github.com/kirinyoku/parktix/internal/service/booking"
	"github.com/kirinyoku/parktix/internal/service/cart"
	"github.com/kirinyoku/parktix/internal/service/checkout"
	"github.com/kirinyoku/parktix/internal/service/orders"
	"github.com/kirinyoku/parktix/internal/service/payment"
	"github.com/kirinyoku/parktix/internal/service/query"
	"github.com/kirinyoku/parktix/internal/uow"
)

type Services struct {
	Auth     *auth.Service
	Cart     *cart.Service
	Checkout *checkout.Service
	Booking  *booking.Service
	Orders   *orders.Service
	Query    *query.Service
	Admin    *admin.Service
}

type Config struct {
	Checkout checkout.Config
	Booking  booking.Config
	Query    query.Config
	Auth     auth.Config
	UoW      uow.Options
}

// Deps are the optional collaborators. Nil Redis-backed fields disable the
// matching feature.
type Deps struct {
	Cache    *redisrepo.Cache
	PubSub   *redisrepo.ParkDayPubSub
	Limiter  *redisrepo.SlidingWindowLimiter
	Payments *payment.Registry
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func NewServices(store repository.Store, deps Deps, cfg Config) *Services {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	tx := uow.NewUoW(store, cfg.UoW, log)
	notifier := redisrepo.NewParkDayNotifier(deps.Cache, deps.PubSub, log)

	return &Services{
		Auth:     auth.New(store.Users(), log, cfg.Auth),
		Cart:     cart.New(store),
		Checkout: checkout.New(store, tx, deps.Payments, deps.Limiter, notifier, deps.Metrics, log, cfg.Checkout),
		Booking:  booking.New(tx, notifier, deps.Metrics, log, cfg.Booking),
		Orders:   orders.New(store, tx, notifier, log),
		Query:    query.New(store, deps.Cache, cfg.Query),
		Admin:    admin.New(store),
	}
}
