package influx

import "errors"

// Sentinel errors for InfluxDB operations.
var (
	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a point was not accepted.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrMissingBucket indicates store.influxdb.org or bucket is empty.
	ErrMissingBucket = errors.New("influxdb: org and bucket are required")
)
