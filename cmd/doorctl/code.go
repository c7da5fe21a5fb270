package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-door-access/internal/services/codegen"
	"github.com/magabrotheeeer/gym-door-access/internal/storage"
)

// offlineChecker считает любой код свободным.
type offlineChecker struct{}

func (offlineChecker) CodeExists(context.Context, string) (bool, error) { return false, nil }

func codeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Door code utilities",
	}
	cmd.AddCommand(codeGenerateCmd())
	return cmd
}

func codeGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random door codes",
		Long: `Generate random 7-8 digit door codes.

With --check-db the codes are checked against door_tokens in the database
from the config, otherwise no collision check is made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, _ := cmd.Flags().GetInt("count")
			checkDB, _ := cmd.Flags().GetBool("check-db")
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}

			var checker codegen.CodeChecker = offlineChecker{}
			attempts := 0
			if checkDB {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				db, err := storage.New(cfg.StorageConnectionString)
				if err != nil {
					return err
				}
				defer db.Close()
				checker = db
				attempts = cfg.CodeRetries
			}

			gen := codegen.New(checker, attempts)
			for range count {
				code, err := gen.Generate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 1, "number of codes to generate")
	cmd.Flags().Bool("check-db", false, "skip codes already present in door_tokens")
	return cmd
}
