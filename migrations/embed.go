// Package migrations embeds SQL migration files into the binary.
//
// This allows PowerLift to run migrations without the SQL files present
// on the filesystem - they are compiled into the executable.
package migrations

import (
	"embed"

	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
