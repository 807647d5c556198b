// Package migrations embeds the SQL migrations of the local SQLite
// credential store, for use with goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
