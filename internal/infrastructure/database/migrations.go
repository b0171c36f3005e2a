package database

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Migration filename layout: YYYYMMDD_HHMMSS_description.sql
const (
	dateDigits  = 8
	clockDigits = 6
)

// createMigrationsTable records which versions have run. applied_at is
// milliseconds since the Unix epoch, like samples.ts.
const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT    PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`

// migration is one forward-only schema change.
type migration struct {
	version string // YYYYMMDD_HHMMSS
	name    string
	sql     string
}

// Migrate applies every migration in source that has not run yet, oldest first.
//
// source holds YYYYMMDD_HHMMSS_description.sql files at its root; a .sql
// file with any other name is an error. Each migration runs in its own
// transaction together with its schema_migrations row, so a failure leaves
// earlier migrations committed and the next call resumes at the failed one.
// A nil source is a no-op.
func (db *DB) Migrate(ctx context.Context, source fs.FS) error {
	all, err := readMigrations(source)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	if len(all) == 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range all {
		if done[m.version] {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		done[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrations: %w", err)
	}
	return done, nil
}

func (db *DB) apply(ctx context.Context, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.version, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}

// readMigrations loads every .sql file at the root of source. fs.Glob
// returns names in lexical order, which is version order.
func readMigrations(source fs.FS) ([]migration, error) {
	if source == nil {
		return nil, nil
	}

	files, err := fs.Glob(source, "*.sql")
	if err != nil {
		return nil, err
	}

	out := make([]migration, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		version, name, ok := parseMigrationFilename(file)
		if !ok {
			return nil, fmt.Errorf("%s: want YYYYMMDD_HHMMSS_description.sql", file)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("%s and %s share version %s", prev, file, version)
		}
		seen[version] = file

		body, err := fs.ReadFile(source, file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		out = append(out, migration{version: version, name: name, sql: string(body)})
	}
	return out, nil
}

// parseMigrationFilename splits "20260301_090000_create_samples.sql" into
// version "20260301_090000" and name "create_samples".
func parseMigrationFilename(file string) (version, name string, ok bool) {
	base, found := strings.CutSuffix(file, ".sql")
	if !found {
		return "", "", false
	}

	date, rest, found := strings.Cut(base, "_")
	if !found {
		return "", "", false
	}
	clock, name, found := strings.Cut(rest, "_")
	if !found || name == "" {
		return "", "", false
	}
	if len(date) != dateDigits || len(clock) != clockDigits || !digits(date) || !digits(clock) {
		return "", "", false
	}

	return date + "_" + clock, name, true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
