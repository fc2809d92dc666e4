// Package migrations embeds the SQL schema for every supported database.
package migrations

import "embed"

// Postgres and SQLite hold golang-migrate style up/down files.
var (
	//go:embed postgres/*.sql
	Postgres embed.FS

	//go:embed sqlite/*.sql
	SQLite embed.FS
)

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
