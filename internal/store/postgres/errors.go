package postgres

import "errors"

// Sentinel errors for the PostgreSQL sample store.
var (
	// ErrConnectionFailed indicates the server could not be reached or the
	// schema could not be created.
	ErrConnectionFailed = errors.New("postgres: connection failed")

	// ErrWriteFailed indicates a sample row was not inserted.
	ErrWriteFailed = errors.New("postgres: write failed")
)
