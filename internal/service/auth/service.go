package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	JWTSecret  string
	SessionTTL time.Duration
	// AdminEmail logs in with AdminPassword and is upserted as an admin on
	// every successful login.
	AdminEmail    string
	AdminPassword string
	AdminName     string
	BcryptCost    int
}

type Service struct {
	users repository.Users
	log   *slog.Logger
	cfg   Config
}

func New(users repository.Users, log *slog.Logger, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	if cfg.AdminName == "" {
		cfg.AdminName = "Admin"
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	cfg.AdminEmail = normalizeEmail(cfg.AdminEmail)

	if log == nil {
		log = slog.Default()
	}

	return &Service{users: users, log: log, cfg: cfg}
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	const op = "service.auth.Register"

	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%s:%w", op,
			domain.Invalid("", "Full name, email, and password are required."))
	}

	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("email", "Email is invalid."))
	}

	if email == s.cfg.AdminEmail {
		return nil, fmt.Errorf("%s:%w", op, ErrEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	u := domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         domain.RoleUser,
	}

	id, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s:%w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	u.ID = id
	s.log.Info("user registered", slog.Int64("user_id", id))

	return &u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "service.auth.Login"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	var user *domain.User

	if s.cfg.AdminEmail != "" && email == s.cfg.AdminEmail {
		if s.cfg.AdminPassword == "" || password != s.cfg.AdminPassword {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		user, err = s.users.Upsert(ctx, domain.User{
			Email:        email,
			PasswordHash: string(hash),
			FullName:     s.cfg.AdminName,
			Role:         domain.RoleAdmin,
		})
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	} else {
		u, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
			}
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
		}
		user = u
	}

	token, exp, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &Session{Token: token, ExpiresAt: exp, User: *user}, nil
}

func (s *Service) issue(u *domain.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(s.cfg.SessionTTL)

	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

// ParseToken validates an HS256 session token.
func (s *Service) ParseToken(raw string) (*Claims, error) {
	const op = "service.auth.ParseToken"

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidToken)
	}

	return &claims, nil
}
