// Package database provides SQLite connectivity for the local sample store.
//
// This package manages:
//   - Database connection with WAL mode and busy timeout
//   - Schema migrations read from any fs.FS (the binary embeds its own)
//   - Connection lifecycle and health checks
//
// All statements use parameterised queries. The database file is created
// with 0600 permissions.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are forward-only. Each file is named
// YYYYMMDD_HHMMSS_description.sql and runs once, in version order.
package database
