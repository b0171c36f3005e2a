package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/series"
	"github.com/nerrad567/sensorbridge/internal/store/influx"
	"github.com/nerrad567/sensorbridge/internal/store/postgres"
	"github.com/nerrad567/sensorbridge/internal/store/redists"
	"github.com/nerrad567/sensorbridge/internal/store/sqlite"
	"github.com/nerrad567/sensorbridge/internal/store/victoria"
)

// Store is an open connection to a time-series backend.
type Store interface {
	series.Appender

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the connection. Safe to call once.
	Close() error
}

// Compile-time checks.
var (
	_ Store = (*redists.Client)(nil)
	_ Store = (*victoria.Client)(nil)
	_ Store = (*influx.Client)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// Open connects to the backend selected by cfg and verifies it.
//
// Returns:
//   - Store: connected backend, owned by the caller
//   - string: the resolved backend name
//   - error: wraps ErrUnsupportedBackend or ErrConnectionFailed
func Open(ctx context.Context, cfg config.StoreConfig) (Store, string, error) {
	backend, err := cfg.ResolveBackend()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedBackend, err)
	}

	var s Store
	switch backend {
	case config.BackendRedis:
		s, err = redists.Connect(ctx, cfg)
	case config.BackendVictoriaMetrics:
		s, err = victoria.Connect(ctx, cfg)
	case config.BackendInfluxDB:
		s, err = influx.Connect(ctx, cfg)
	case config.BackendSQLite:
		s, err = sqlite.Open(ctx, cfg)
	case config.BackendPostgres:
		s, err = postgres.Connect(ctx, cfg)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}
	if err != nil {
		return nil, backend, fmt.Errorf("%w: %s at %s: %w", ErrConnectionFailed, backend, Redact(cfg.URL), err)
	}

	return s, backend, nil
}

// Redact masks any password in a store URL for logging.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
