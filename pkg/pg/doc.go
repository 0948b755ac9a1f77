// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations
// from an embedded filesystem.
//
// Config is read from PG_* environment variables. Connect retries until the
// database answers a ping, Migrate runs the migrations of the calling package
// over the same pool, and Healthcheck wraps a ping for readiness probes.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations, "migrations", cfg.MigrationsTable, log); err != nil {
//		return err
//	}
package pg
