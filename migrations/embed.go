// Package migrations embeds the SQLite schema migrations into the binary.
//
// The sample store runs them on open, so no SQL files need to be shipped
// alongside the executable.
package migrations

import "embed"

// FS holds every *.sql file in this directory at its root.
//
//go:embed *.sql
var FS embed.FS
