package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/aktivasi/internal/auth"
	"github.com/MikeSquared-Agency/aktivasi/internal/config"
)

func tokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <handle>",
		Short: "Mint an API bearer token for a user handle",
		Long: `Token signs a JWT for handle with JWT_SECRET. The handle must still be an
active user in the users table when the token is presented.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}
			if ttl <= 0 {
				ttl = cfg.JWTTTL
			}

			tok, err := auth.NewToken(cfg.JWTSecret, cfg.JWTIssuer, ttl, args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default JWT_TTL)")
	return cmd
}
