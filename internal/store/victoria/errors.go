package victoria

import "errors"

// Sentinel errors for VictoriaMetrics operations.
//
//	if errors.Is(err, victoria.ErrWriteFailed) {
//	    // sample was not accepted
//	}
var (
	// ErrConnectionFailed indicates the initial health check failed.
	ErrConnectionFailed = errors.New("victoriametrics: connection failed")

	// ErrWriteFailed indicates a write was not accepted.
	ErrWriteFailed = errors.New("victoriametrics: write failed")
)
