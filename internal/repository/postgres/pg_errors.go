package postgresrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/parktix/internal/repository"
)

// SQLSTATE codes the repositories react to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

// translateDBErr maps driver errors onto the repository sentinels. Errors it
// does not know are returned unchanged.
func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %s", repository.ErrSerialization, pgErr.Message)
	case codeUniqueViolation, codeCheckViolation:
		return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.ConstraintName)
	}

	return err
}

// commitErr classifies a failed COMMIT. A server reply means the transaction
// was rolled back; anything else leaves the outcome open.
func commitErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translateDBErr(err)
	}

	return fmt.Errorf("%w: %w", repository.ErrCommitUnknown, err)
}

func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s:%w", op, translateDBErr(err))
}
