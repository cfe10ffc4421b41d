package llm

import (
	"context"
	"fmt"
)

// Client is an abstraction over LLM providers
type Client interface {
	// Generate returns a single text completion for prompt
	Generate(ctx context.Context, prompt string) (string, error)
	// GenerateJSON returns a completion constrained to a JSON object
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Model returns the provider model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, cfg *Config, apiKey string) (Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
