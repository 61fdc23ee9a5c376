package repository

import "errors"

var (
	// ErrNotFound indicates the keyed row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a uniqueness violation (e.g. email already taken).
	ErrDuplicate = errors.New("duplicate entry")

	// ErrOpenRecordExists indicates the per-user non-terminal application
	// constraint rejected a second open attempt.
	ErrOpenRecordExists = errors.New("open application record exists")

	// ErrStatusConflict indicates a compare-and-set lost the race: the row's
	// status was no longer the expected one at the moment of the flip.
	ErrStatusConflict = errors.New("status conflict")
)
