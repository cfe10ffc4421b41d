// Package llm provides the text-generation client abstraction and its
// provider implementations.
package llm

import (
	"fmt"
	"time"

	"github.com/jonathan/company-brief/internal/config"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is the OpenAI chat completions API, or any compatible endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// MaxTemperature bounds sampling so output stays close to the source text.
const MaxTemperature = 0.3

// Config holds the generation settings shared by every call of a run.
type Config struct {
	Provider    Provider
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string        // optional OpenAI-compatible endpoint
	Timeout     time.Duration // per generation call
}

// DefaultConfig returns the default OpenAI configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       config.DefaultOpenAIModel,
		Temperature: config.DefaultTemperature,
		MaxTokens:   config.DefaultMaxTokens,
		Timeout:     config.DefaultLLMTimeoutSeconds * time.Second,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration.
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Model:       config.DefaultGeminiModel,
		Temperature: config.DefaultTemperature,
		MaxTokens:   config.DefaultMaxTokens,
		Timeout:     config.DefaultLLMTimeoutSeconds * time.Second,
	}
}

// FromAppConfig builds the client configuration from the loaded app config.
func FromAppConfig(cfg config.Config) *Config {
	return &Config{
		Provider:    Provider(cfg.LLMProvider),
		Model:       cfg.Model(),
		Temperature: cfg.TemperatureValue(),
		MaxTokens:   cfg.MaxTokens,
		BaseURL:     cfg.LLMBaseURL,
		Timeout:     cfg.LLMTimeout(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.Temperature < 0 || c.Temperature > MaxTemperature {
		return fmt.Errorf("llm temperature must be between 0 and %.1f, got %.2f", MaxTemperature, c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// WithModel returns a copy of the Config using model.
func (c *Config) WithModel(model string) *Config {
	clone := *c
	clone.Model = model
	return &clone
}
