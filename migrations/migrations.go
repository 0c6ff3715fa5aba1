// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql migration, named for golang-migrate.
//
//go:embed *.sql
var FS embed.FS
