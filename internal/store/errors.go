package store

import "errors"

// Sentinel errors for store selection and startup.
var (
	// ErrConnectionFailed wraps any backend failure during Open.
	ErrConnectionFailed = errors.New("store: connection failed")

	// ErrUnsupportedBackend indicates store.backend or the URL scheme is unknown.
	ErrUnsupportedBackend = errors.New("store: unsupported backend")
)
