package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/mongostore"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/pgstore"
)

type loggerFunc func(cmd *cobra.Command) *slog.Logger

func migrateCommand(newLogger loggerFunc) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema (PG_CONN_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := newLogger(cmd)

			var cfg pg.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			pool, err := pg.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if !status {
				if err := pgstore.Migrate(ctx, pool, cfg.MigrationsTable, log); err != nil {
					return err
				}
			}
			v, err := pgstore.MigrationVersion(ctx, pool, cfg.MigrationsTable, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Only print the applied version")
	return cmd
}

func indexesCommand(newLogger loggerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes (MONGODB_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := newLogger(cmd)

			var cfg mongostore.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			store, err := mongostore.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(context.WithoutCancel(ctx)); err != nil {
					log.WarnContext(ctx, "failed to disconnect", logger.Error(err))
				}
			}()

			log.InfoContext(ctx, "indexes ready", slog.String("collection", cfg.Collection))
			return nil
		},
	}
}
