package redists

import "errors"

// Sentinel errors for RedisTimeSeries operations.
var (
	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("redists: connection failed")

	// ErrWriteFailed indicates a TS.ADD was rejected or could not be sent.
	ErrWriteFailed = errors.New("redists: write failed")

	// ErrInvalidPolicy indicates an unknown ON_DUPLICATE policy.
	ErrInvalidPolicy = errors.New("redists: invalid duplicate policy")
)
