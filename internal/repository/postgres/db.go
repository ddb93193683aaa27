package postgresrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/parktix/internal/repository"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Options struct {
	// IsoLevel of RunTx transactions. Capacity checks hold explicit
	// per-(park, day) locks, so read committed is sufficient and avoids
	// serialization aborts under contention.
	IsoLevel pgx.TxIsoLevel
}

type Store struct {
	pool *pgxpool.Pool
	db   DB
	opts Options
}

var _ repository.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool, opts Options) *Store {
	if opts.IsoLevel == "" {
		opts.IsoLevel = pgx.ReadCommitted
	}

	return &Store{
		pool: pool,
		opts: opts,
	}
}

// With returns a copy of the store bound to db, usually a transaction.
func (s *Store) With(db DB) *Store {
	cp := *s
	cp.db = db
	return &cp
}

func (s *Store) handle() DB {
	if s.db != nil {
		return s.db
	}
	return s.pool
}

func (s *Store) RunTx(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repos) error,
) error {
	const op = "postgresrepo.Store.RunTx"

	// already inside a transaction
	if s.db != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   s.opts.IsoLevel,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	if err := fn(ctx, s.With(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, commitErr(err))
	}

	return nil
}

func (s *Store) Users() repository.Users         { return &UserRepo{db: s.handle()} }
func (s *Store) Catalog() repository.Catalog     { return &CatalogRepo{db: s.handle()} }
func (s *Store) Carts() repository.Carts         { return &CartRepo{db: s.handle()} }
func (s *Store) Orders() repository.Orders       { return &OrderRepo{db: s.handle()} }
func (s *Store) Tickets() repository.Tickets     { return &TicketRepo{db: s.handle()} }
func (s *Store) Sequences() repository.Sequences { return &SequenceRepo{db: s.handle()} }
func (s *Store) Reports() repository.Reports     { return &ReportRepo{db: s.handle()} }
