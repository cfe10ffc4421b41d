package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/logging"
)

// runtimeOptions are the flags shared by serve and generate.
type runtimeOptions struct {
	configPath string
	mode       string
	verbose    bool
	useBrowser bool
}

// loadRuntime resolves configuration, logger and secrets once at startup.
// Missing secrets fail here rather than mid-run.
func loadRuntime(opts runtimeOptions) (config.Config, config.Secrets, *logrus.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, config.Secrets{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, config.Secrets{}, nil, err
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	secrets, err := config.LoadSecrets(cfg)
	if err != nil {
		return config.Config{}, config.Secrets{}, nil, err
	}

	return cfg, secrets, log, nil
}

// applyOverrides lets command-line flags win over the config file.
func applyOverrides(cfg *config.Config, opts runtimeOptions) {
	if opts.mode != "" {
		cfg.Mode = opts.mode
	}
	if opts.useBrowser {
		cfg.UseBrowser = true
	}
	if opts.verbose {
		cfg.Verbose = true
		cfg.LogLevel = "debug"
	}
}
