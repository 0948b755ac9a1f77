package pgstore

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/twofactor/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Migrate creates or upgrades the two_factor_authentications table.
func Migrate(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, migrations, migrationsDir, table, log)
}

// MigrationVersion returns the applied schema version.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool, table string, log *slog.Logger) (int64, error) {
	return pg.Version(ctx, pool, migrations, table, log)
}
