// Package postgres stores samples in a PostgreSQL (or TimescaleDB) table.
//
// Selected for postgres:// and postgresql:// store URLs. The samples
// table is created on connect if it does not exist. An auto timestamp
// falls back to the column default, now().
package postgres
