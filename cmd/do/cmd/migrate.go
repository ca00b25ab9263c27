package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/AKT74/shareulbi-backend/internal/config"
	"github.com/AKT74/shareulbi-backend/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, conn *sqlx.DB) error {
				return db.RunMigrations(conn.DB, cfg.DBDriver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, conn *sqlx.DB) error {
				return db.MigrateDown(conn.DB, cfg.DBDriver)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, conn *sqlx.DB) error {
				version, err := db.MigrationVersion(conn.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withDB(fn func(cfg *config.Config, conn *sqlx.DB) error) error {
	cfg := config.Load()

	conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer conn.Close()

	return fn(cfg, conn)
}
