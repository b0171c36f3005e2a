package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/nerrad567/sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/sensorbridge/internal/series"
)

const (
	connectTimeout  = 10 * time.Second
	maxOpenConns    = 4
	connMaxIdleTime = 5 * time.Minute
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS samples (
	    id         BIGSERIAL PRIMARY KEY,
	    series_key TEXT             NOT NULL,
	    ts         TIMESTAMPTZ      NOT NULL DEFAULT now(),
	    value      DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_series_ts ON samples (series_key, ts)`,
}

const (
	insertAuto = `INSERT INTO samples (series_key, value) VALUES ($1, $2)`
	insertAt   = `INSERT INTO samples (series_key, ts, value) VALUES ($1, $2, $3)`
)

// Store appends samples to the samples table.
type Store struct {
	db *sql.DB
}

// Connect opens a pool to cfg.URL, verifies it and ensures the schema exists.
func Connect(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	setupCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := db.PingContext(setupCtx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(setupCtx, stmt); err != nil {
			db.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("%w: creating schema: %w", ErrConnectionFailed, err)
		}
	}

	return &Store{db: db}, nil
}

// Append inserts one sample row.
func (s *Store) Append(ctx context.Context, key string, ts series.Timestamp, value float64) error {
	var err error
	if t, ok := ts.Time(); ok {
		_, err = s.db.ExecContext(ctx, insertAt, key, t.UTC(), value)
	} else {
		_, err = s.db.ExecContext(ctx, insertAuto, key, value)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
