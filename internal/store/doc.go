// Package store opens the time-series store samples are appended to.
//
// The backend is chosen by store.backend, or from the URL scheme when
// that is empty:
//
//	redis://, rediss://        RedisTimeSeries (TS.ADD)
//	http://, https://          VictoriaMetrics /write
//	                           (or InfluxDB v2 with backend: influxdb)
//	sqlite://, sqlite3://, file:  local SQLite file
//	postgres://, postgresql:// PostgreSQL / TimescaleDB
//
// Every backend verifies connectivity during Open, so a bad URL or an
// unreachable server fails startup rather than the first append.
package store
