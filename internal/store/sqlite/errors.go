package sqlite

import "errors"

// Sentinel errors for the SQLite sample store.
var (
	// ErrConnectionFailed indicates the database could not be opened or migrated.
	ErrConnectionFailed = errors.New("sqlite: connection failed")

	// ErrWriteFailed indicates a sample row was not inserted.
	ErrWriteFailed = errors.New("sqlite: write failed")

	// ErrInvalidPath indicates the store URL does not name a database file.
	ErrInvalidPath = errors.New("sqlite: invalid database path")
)
