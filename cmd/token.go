package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cantina/internal/api"
)

var tokenSubject string

// tokenCmd signs a bearer token for API clients such as the terminal UI
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an API bearer token",
	Long: `Sign a bearer token with auth.jwt_secret (or CANTINA_JWT_SECRET).

The terminal client reads it from CANTINA_TOKEN:
  export CANTINA_TOKEN=$(cantina token --subject kiosk-1)`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "cantina-cli", "Token subject")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}
	token, err := api.IssueToken(cfg.Auth.JWTSecret, tokenSubject)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	log.Debug("Issued token", zap.String("subject", tokenSubject))
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
