package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/parktix/internal/config"
	"github.com/kirinyoku/parktix/internal/metrics"
	"github.com/kirinyoku/parktix/internal/postgres"
	"github.com/kirinyoku/parktix/internal/redis"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/kirinyoku/parktix/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/parktix/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/parktix/internal/repository/redis"
	"github.com/kirinyoku/parktix/internal/service"
	"github.com/kirinyoku/parktix/internal/service/auth"
	"github.com/kirinyoku/parktix/internal/service/booking"
	"github.com/kirinyoku/parktix/internal/service/checkout"
	"github.com/kirinyoku/parktix/internal/service/payment"
	"github.com/kirinyoku/parktix/internal/service/query"
	httpgin "github.com/kirinyoku/parktix/internal/transport/http/gin"
	"github.com/kirinyoku/parktix/internal/uow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	availabilityTTL = 15 * time.Second
	idempotencyTTL  = 2 * time.Hour
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	cache      *redisrepo.Cache
	pubsub     *redisrepo.ParkDayPubSub
	closers    []io.Closer
	pool       *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	store, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, rdb)
	} else {
		logger.Warn("REDIS_ADDR not set: availability cache, idempotency keys and rate limiting are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	a.cache = redisrepo.NewCache(rdb)
	a.pubsub = redisrepo.NewParkDayPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(
		rdb,
		redisrepo.KeyRateLimit("checkout"),
		cfg.RateLimit.CheckoutPerMinute,
		time.Minute,
	)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, idempotencyTTL)

	loc := cfg.Store.Location

	// Initialize services
	services := service.NewServices(store, service.Deps{
		Cache:    a.cache,
		PubSub:   a.pubsub,
		Limiter:  limiter,
		Payments: payment.DefaultRegistry(),
		Metrics:  m,
		Logger:   logger,
	}, service.Config{
		Checkout: checkout.Config{
			MaxTicketsPerOrder: cfg.Checkout.MaxTicketsPerOrder,
			PaymentTimeout:     cfg.Checkout.PaymentTimeout,
			Location:           loc,
		},
		Booking: booking.Config{Location: loc},
		Query:   query.Config{AvailabilityTTL: availabilityTTL, Location: loc},
		Auth: auth.Config{
			JWTSecret:     cfg.Auth.JWTSecret,
			SessionTTL:    cfg.Auth.SessionTTL,
			AdminEmail:    cfg.Auth.AdminEmail,
			AdminPassword: cfg.Auth.AdminPassword,
		},
		UoW: uow.Options{MaxAttempts: cfg.Store.TxAttempts},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, m, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.Store, error) {
	if a.cfg.Store.Driver == "memory" {
		a.logger.Warn("using in-memory store: data is lost on restart")
		store := memory.NewStore()
		memory.Seed(store)
		return store, nil
	}

	pool, err := postgres.New(ctx, postgres.Config{
		DSN:      a.cfg.Postgres.DSN(),
		MaxConns: a.cfg.Postgres.MaxConns,
		TimeZone: a.cfg.Store.LocationRaw,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	a.pool = pool

	if a.cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, fmt.Errorf("failed to migrate postgres: %w", err)
		}
	}

	return postgresrepo.NewStore(pool, postgresrepo.Options{
		IsoLevel: pgx.TxIsoLevel(a.cfg.Postgres.Isolation),
	}), nil
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Drop cached availability changed by other instances
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, parkID int64, day time.Time) {
			if err := a.cache.InvalidateParkDay(ctx, parkID, day); err != nil {
				a.logger.Warn("invalidate availability", "park_id", parkID, "error", err)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("park day subscription: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
