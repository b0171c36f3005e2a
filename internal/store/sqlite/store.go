package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/infrastructure/database"
	"github.com/nerrad567/sensorbridge/internal/series"
	"github.com/nerrad567/sensorbridge/migrations"
)

// defaultBusyTimeout is used when sqlite.busy_timeout is unset (seconds).
const defaultBusyTimeout = 5

const (
	insertAuto = `INSERT INTO samples (series_key, ts, value)
		VALUES (?, CAST(ROUND((julianday('now') - 2440587.5) * 86400000) AS INTEGER), ?)`
	insertAt = `INSERT INTO samples (series_key, ts, value) VALUES (?, ?, ?)`
)

// Store appends samples to the samples table of a SQLite database.
type Store struct {
	db *database.DB
}

// Open opens (or creates) the database named by cfg.URL and applies the
// embedded migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	path, err := PathFromURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	busy := cfg.SQLite.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}

	db, err := database.Open(ctx, database.Config{
		Path:        path,
		WALMode:     cfg.SQLite.WALMode,
		BusyTimeout: busy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &Store{db: db}, nil
}

// PathFromURL extracts the database file path from a store URL.
//
//	sqlite:///var/lib/x.db  -> /var/lib/x.db
//	sqlite://data/x.db      -> data/x.db
//	file:x.db               -> x.db
//	sqlite::memory:         -> :memory:
func PathFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	var path string
	switch {
	case u.Opaque != "":
		path = u.Opaque
	case u.Host != "":
		path = u.Host + u.Path
	default:
		path = u.Path
	}

	if path == "" || strings.HasSuffix(path, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}
	if path == ":memory:" {
		return path, nil
	}
	return filepath.Clean(path), nil
}

// Append inserts one sample row.
func (s *Store) Append(ctx context.Context, key string, ts series.Timestamp, value float64) error {
	var err error
	if ts.IsAuto() {
		_, err = s.db.ExecContext(ctx, insertAuto, key, value)
	} else {
		_, err = s.db.ExecContext(ctx, insertAt, key, ts.UnixMilli(), value)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// HealthCheck runs a trivial query against the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
