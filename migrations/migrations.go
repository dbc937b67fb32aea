// Package migrations embeds the export catalog schema, one directory per
// database driver. Files are applied in name order by db.MigrateUp.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
