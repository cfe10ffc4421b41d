package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/pipeline"
	"github.com/jonathan/company-brief/internal/server"
	"github.com/jonathan/company-brief/internal/server/ratelimit"
)

var (
	servePort    int
	serveRuntime runtimeOptions
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser form and HTTP API server",
	Long: `Start an HTTP server with the report form at / and the JSON API under /api/reports.

API bearer auth is enabled when JWT_SECRET is set; issue tokens with 'brief_agent token'.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveRuntime.configPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveRuntime.mode, "mode", "", "Collection mode: sections or combined (overrides config)")
	serveCmd.Flags().BoolVar(&serveRuntime.useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	serveCmd.Flags().BoolVarP(&serveRuntime.verbose, "verbose", "v", false, "Debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, secrets, log, err := loadRuntime(serveRuntime)
	if err != nil {
		return err
	}

	jwtCfg, err := config.OptionalJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	p, closeClient, err := pipeline.FromConfig(context.Background(), cfg, secrets, log)
	if err != nil {
		return err
	}
	defer closeClient() //nolint:errcheck

	srv, err := server.New(server.Config{
		Port:      servePort,
		JWT:       jwtCfg,
		RateLimit: ratelimit.LoadConfig(),
		Logger:    log,
	}, p)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
