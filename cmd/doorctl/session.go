package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/jwt"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session token utilities for local testing",
	}
	cmd.AddCommand(sessionMintCmd())
	return cmd
}

func sessionMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a signed session JWT for an auth user",
		Example: `  doorctl session mint --sub a1111111-1111-4111-8111-111111111111 --secret dev
  doorctl session mint --sub a1111111-1111-4111-8111-111111111111 --config config/local.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, _ := cmd.Flags().GetString("sub")
			role, _ := cmd.Flags().GetString("role")
			secret, _ := cmd.Flags().GetString("secret")
			audience, _ := cmd.Flags().GetString("audience")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if secret == "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				secret = cfg.JWTSecretKey
				if audience == "" {
					audience = cfg.JWTAudience
				}
			}

			token, err := jwt.NewJWTMaker(secret, ttl).WithAudience(audience).GenerateToken(sub, role)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("sub", "", "auth user id (token subject)")
	cmd.Flags().String("role", "authenticated", "session role claim")
	cmd.Flags().String("secret", "", "signing secret (default from config)")
	cmd.Flags().String("audience", "", "audience claim (default from config)")
	cmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
