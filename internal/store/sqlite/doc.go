// Package sqlite stores samples in a local SQLite file.
//
// Selected for sqlite://, sqlite3:// and file: store URLs. The schema is
// embedded in the migrations package and applied on open, so a fresh
// path is usable immediately:
//
//	store:
//	  url: "sqlite:///var/lib/sensorbridge/samples.db"
//	  sqlite:
//	    wal_mode: true
//	    busy_timeout: 5
//
// Rows land in the samples table as (series_key, ts, value) with ts in
// Unix milliseconds. An auto timestamp is taken from the database clock
// at insert time.
package sqlite
