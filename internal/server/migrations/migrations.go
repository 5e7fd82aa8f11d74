// Package migrations embeds the goose SQL migrations for the SQL document
// media, one directory per dialect.
package migrations

import "embed"

// Directories inside Migrations.
const (
	DirPostgres = "postgres"
	DirSQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS
