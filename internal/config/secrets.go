package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names for the required secrets.
const (
	EnvBraveAPIKey  = "BRAVE_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvGoogleCSEID  = "GOOGLE_CSE_ID"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// Secrets holds the credentials resolved once at process start.
type Secrets struct {
	SearchAPIKey   string
	SearchEngineID string // Google Custom Search engine id (cx)
	LLMAPIKey      string
}

// MissingSecretError lists required environment variables that were not set.
type MissingSecretError struct {
	Names []string
}

func (e *MissingSecretError) Error() string {
	return fmt.Sprintf("missing required secrets: %s", strings.Join(e.Names, ", "))
}

// LoadSecrets resolves the secrets the configured providers need from the environment.
// Any missing secret is a fatal startup condition.
func LoadSecrets(cfg Config) (Secrets, error) {
	return resolveSecrets(cfg, os.Getenv)
}

func resolveSecrets(cfg Config, getenv func(string) string) (Secrets, error) {
	var secrets Secrets
	var missing []string

	require := func(name string) string {
		value := strings.TrimSpace(getenv(name))
		if value == "" {
			missing = append(missing, name)
		}
		return value
	}

	switch cfg.SearchProvider {
	case SearchGoogle:
		secrets.SearchAPIKey = require(EnvGoogleAPIKey)
		secrets.SearchEngineID = require(EnvGoogleCSEID)
	default:
		secrets.SearchAPIKey = require(EnvBraveAPIKey)
	}

	switch cfg.LLMProvider {
	case LLMGemini:
		secrets.LLMAPIKey = require(EnvGeminiAPIKey)
	default:
		secrets.LLMAPIKey = require(EnvOpenAIAPIKey)
	}

	if len(missing) > 0 {
		return Secrets{}, &MissingSecretError{Names: missing}
	}
	return secrets, nil
}
