// Package migrations embeds the SQLite schema migrations for the key-value
// storage driver so they compile into the consuming binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
