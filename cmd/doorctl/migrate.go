package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-door-access/internal/migrations"
	"github.com/magabrotheeeer/gym-door-access/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	cmd.AddCommand(migrateUpCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, _ := cmd.Flags().GetString("dsn")
			path, _ := cmd.Flags().GetString("path")

			if dsn == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				dsn = cfg.StorageConnectionString
				if path == "" {
					path = cfg.MigrationsPath
				}
			}
			if path == "" {
				path = "./migrations"
			}

			db, err := storage.New(dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Run(db.DB, path); err != nil {
				return err
			}
			version, dirty, err := migrations.Version(db.DB, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().String("dsn", "", "postgres connection string (default from config)")
	cmd.Flags().String("path", "", "migrations directory (default from config)")
	return cmd
}
