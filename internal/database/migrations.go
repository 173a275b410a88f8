package database

import "embed"

// MigrationsFS carries the SQL migrations, applied at startup through
// pkg/migration.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsPath is the directory inside MigrationsFS.
const MigrationsPath = "migrations"
