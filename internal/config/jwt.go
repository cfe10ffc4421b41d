package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// JWTConfig holds configuration for API bearer token issuance and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	return newJWTConfig(secret, os.Getenv("JWT_EXPIRATION_HOURS"))
}

// OptionalJWTConfig returns nil without error when JWT_SECRET is unset.
// API auth is only enabled when a secret is configured.
func OptionalJWTConfig() (*JWTConfig, error) {
	if strings.TrimSpace(os.Getenv("JWT_SECRET")) == "" {
		return nil, nil
	}
	return NewJWTConfig()
}

func newJWTConfig(secret, expirationStr string) (*JWTConfig, error) {
	if expirationStr == "" {
		expirationStr = "24"
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
