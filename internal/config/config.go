package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver      string
	TxAttempts  int
	Location    *time.Location
	LocationRaw string
}

type RedisConfig struct {
	// Addr empty disables caching, idempotency keys and rate limiting.
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User      string
	Password  string
	Name      string
	Host      string
	Port      int
	SSLMode   string
	MaxConns  int32
	Migrate   bool
	Isolation string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type CheckoutConfig struct {
	MaxTicketsPerOrder int
	PaymentTimeout     time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	AdminEmail    string
	AdminPassword string
}

type RateLimitConfig struct {
	// CheckoutPerMinute is the per-IP checkout budget; 0 disables it.
	CheckoutPerMinute int
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: stringEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	driver := strings.ToLower(stringEnv("STORE_DRIVER", "postgres"))
	if driver != "postgres" && driver != "memory" {
		return nil, fmt.Errorf("%s: invalid STORE_DRIVER %q", op, driver)
	}

	txAttempts, err := intEnv("TX_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tz := stringEnv("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid TIMEZONE: %w", op, err)
	}

	storeCfg := StoreConfig{
		Driver:      driver,
		TxAttempts:  txAttempts,
		Location:    loc,
		LocationRaw: tz,
	}

	postgresCfg, err := postgresConfig(driver == "postgres")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	maxTickets, err := intEnv("CHECKOUT_MAX_TICKETS", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentTimeout, err := durationEnv("PAYMENT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	checkoutCfg := CheckoutConfig{
		MaxTicketsPerOrder: maxTickets,
		PaymentTimeout:     paymentTimeout,
	}

	sessionTTL, err := durationEnv("AUTH_SESSION_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authCfg := AuthConfig{
		JWTSecret:     os.Getenv("AUTH_JWT_SECRET"),
		SessionTTL:    sessionTTL,
		AdminEmail:    stringEnv("ADMIN_EMAIL", "admin@admin.com"),
		AdminPassword: stringEnv("ADMIN_PASSWORD", "admin"),
	}
	if authCfg.JWTSecret == "" {
		return nil, fmt.Errorf("%s: missing AUTH_JWT_SECRET", op)
	}

	checkoutRate, err := intEnv("RATE_LIMIT_CHECKOUT", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:    serverCfg,
		Store:     storeCfg,
		Postgres:  postgresCfg,
		Redis:     redisCfg,
		Checkout:  checkoutCfg,
		Auth:      authCfg,
		RateLimit: RateLimitConfig{CheckoutPerMinute: checkoutRate},
	}, nil
}

func postgresConfig(required bool) (PostgresConfig, error) {
	port, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 10)
	if err != nil {
		return PostgresConfig{}, err
	}

	migrate, err := boolEnv("POSTGRES_MIGRATE", true)
	if err != nil {
		return PostgresConfig{}, err
	}

	cfg := PostgresConfig{
		User:      os.Getenv("POSTGRES_USER"),
		Password:  os.Getenv("POSTGRES_PASSWORD"),
		Name:      os.Getenv("POSTGRES_DB"),
		Host:      stringEnv("POSTGRES_HOST", "localhost"),
		Port:      port,
		SSLMode:   stringEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns:  int32(maxConns),
		Migrate:   migrate,
		Isolation: strings.ToLower(stringEnv("POSTGRES_ISOLATION", "read committed")),
	}

	if !required {
		return cfg, nil
	}

	if cfg.User == "" {
		return cfg, fmt.Errorf("missing POSTGRES_USER")
	}

	if cfg.Password == "" {
		return cfg, fmt.Errorf("missing POSTGRES_PASSWORD")
	}

	if cfg.Name == "" {
		return cfg, fmt.Errorf("missing POSTGRES_DB")
	}

	switch cfg.Isolation {
	case "read committed", "repeatable read", "serializable":
	default:
		return cfg, fmt.Errorf("invalid POSTGRES_ISOLATION %q", cfg.Isolation)
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}
