package postgresrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBErr(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), repository.ErrNotFound},
		{"serialization", &pgconn.PgError{Code: codeSerializationFailure}, repository.ErrSerialization},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, repository.ErrSerialization},
		{"unique", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "users_email_key"}, repository.ErrConflict},
		{"check", &pgconn.PgError{Code: codeCheckViolation}, repository.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, repository.ErrNotFound},
		{"unknown", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateDBErr(tt.in), tt.want)
		})
	}

	assert.NoError(t, translateDBErr(nil))
	assert.NoError(t, wrapDBErr("op", nil))
}

func TestCommitErr(t *testing.T) {
	lost := errors.New("unexpected EOF")

	err := commitErr(lost)
	assert.ErrorIs(t, err, repository.ErrCommitUnknown)
	assert.ErrorIs(t, err, lost)

	err = commitErr(&pgconn.PgError{Code: codeSerializationFailure})
	assert.ErrorIs(t, err, repository.ErrSerialization)
	assert.NotErrorIs(t, err, repository.ErrCommitUnknown)

	err = commitErr(fmt.Errorf("commit: %w", &pgconn.PgError{Code: codeUniqueViolation}))
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NotErrorIs(t, err, repository.ErrCommitUnknown)
}
