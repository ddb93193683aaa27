package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrSerialization marks a transaction that lost a race against a
	// concurrent one and may be retried from the start.
	ErrSerialization = errors.New("serialization failure")
	// ErrCommitUnknown marks a COMMIT whose reply never arrived. The
	// transaction may or may not have been applied.
	ErrCommitUnknown = errors.New("commit outcome unknown")
)
