package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/server"
)

var (
	tokenSubject string
	tokenHours   int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Long:  `Issue a bearer token for the /api/reports endpoints. Requires JWT_SECRET.`,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Caller identity written into the token (required)")
	tokenCmd.Flags().IntVar(&tokenHours, "hours", 0, "Token lifetime in hours (default JWT_EXPIRATION_HOURS or 24)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenSubject == "" {
		return fmt.Errorf("--subject is required")
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	if tokenHours > 0 {
		jwtCfg.ExpirationHours = tokenHours
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(tokenSubject)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token) //nolint:errcheck
	return nil
}
