// Package config provides configuration loading and validation for the brief agent.
// A Config is built once at process start and passed by value into constructors;
// business logic never reads the environment directly.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/company-brief/internal/schemas"
	"github.com/jonathan/company-brief/internal/types"
)

// Pipeline modes.
const (
	// ModeSections runs one search, scrape and summarize per report section.
	ModeSections = "sections"
	// ModeCombined runs one query, builds a snippet context and makes a single LLM call.
	ModeCombined = "combined"
)

// Search providers.
const (
	SearchBrave  = "brave"
	SearchGoogle = "google"
)

// LLM providers.
const (
	LLMOpenAI = "openai"
	LLMGemini = "gemini"
)

// Defaults for the tunables. Character budgets are tunables on purpose: the
// cutoffs carry no meaning beyond keeping prompts small.
const (
	DefaultResultsPerSection = 5
	DefaultResultsCombined   = 10
	DefaultDomainCap         = 6
	DefaultScrapeBudget      = 2000
	DefaultDocumentBudget    = 3000
	DefaultContextBudget     = 3000
	DefaultMaxSentences      = 15
	DefaultWorkers           = 4
	DefaultRequestsPerSecond = 4.0
	DefaultTimeoutSeconds    = 15
	DefaultLLMTimeoutSeconds = 90
	DefaultTemperature       = 0.2
	DefaultMaxTokens         = 2400
	DefaultOpenAIModel       = "gpt-4o-mini"
	DefaultGeminiModel       = "gemini-2.5-flash"
)

// DefaultPreferredDomains are host substrings treated as higher-quality sources.
func DefaultPreferredDomains() []string {
	return []string{"crunchbase", "techcrunch", "techinasia", "dealstreetasia", "yourstory", "blog", "news"}
}

// Config represents the tunables that can be loaded from a JSON file.
// All fields are optional; missing values use defaults.
type Config struct {
	// Pipeline
	Mode         string `json:"mode,omitempty"`          // sections | combined
	SectionsFile string `json:"sections_file,omitempty"` // Path to a JSON sections file

	// Search
	SearchProvider    string   `json:"search_provider,omitempty"`     // brave | google
	ResultsPerSection int      `json:"results_per_section,omitempty"` // Results requested per section query
	ResultsCombined   int      `json:"results_combined,omitempty"`    // Results requested for the combined query
	DomainCap         int      `json:"domain_cap,omitempty"`          // Max results kept after domain filtering
	PreferredDomains  []string `json:"preferred_domains,omitempty"`   // Host substrings to keep
	FilterSections    bool     `json:"filter_sections,omitempty"`     // Apply PreferredDomains in sections mode too

	// Collection
	DisableScrape     bool    `json:"disable_scrape,omitempty"`      // Use search snippets instead of page text
	UseBrowser        bool    `json:"use_browser,omitempty"`         // Headless browser fallback for SPA pages
	ScrapeBudget      int     `json:"scrape_budget,omitempty"`       // Max chars kept per scraped page
	DocumentBudget    int     `json:"document_budget,omitempty"`     // Max chars kept from an uploaded document
	ContextBudget     int     `json:"context_budget,omitempty"`      // Max chars of raw text handed to the LLM per section
	MaxSentences      int     `json:"max_sentences,omitempty"`       // Sentence dedup cap per section
	Workers           int     `json:"workers,omitempty"`             // Concurrent section collectors
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"` // Outbound request pacing
	TimeoutSeconds    int     `json:"timeout_seconds,omitempty"`     // Per outbound HTTP call

	// LLM
	LLMProvider       string   `json:"llm_provider,omitempty"` // openai | gemini
	LLMModel          string   `json:"llm_model,omitempty"`
	LLMBaseURL        string   `json:"llm_base_url,omitempty"` // OpenAI-compatible endpoint override
	Temperature       *float64 `json:"temperature,omitempty"`
	MaxTokens         int      `json:"max_tokens,omitempty"`
	LLMTimeoutSeconds int      `json:"llm_timeout_seconds,omitempty"` // Per generation call

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // text | json
	Verbose   bool   `json:"verbose,omitempty"`
}

// Default returns a Config with every tunable set.
func Default() Config {
	temperature := DefaultTemperature
	return Config{
		Mode:              ModeSections,
		SearchProvider:    SearchBrave,
		ResultsPerSection: DefaultResultsPerSection,
		ResultsCombined:   DefaultResultsCombined,
		DomainCap:         DefaultDomainCap,
		PreferredDomains:  DefaultPreferredDomains(),
		ScrapeBudget:      DefaultScrapeBudget,
		DocumentBudget:    DefaultDocumentBudget,
		ContextBudget:     DefaultContextBudget,
		MaxSentences:      DefaultMaxSentences,
		Workers:           DefaultWorkers,
		RequestsPerSecond: DefaultRequestsPerSecond,
		TimeoutSeconds:    DefaultTimeoutSeconds,
		LLMProvider:       LLMOpenAI,
		Temperature:       &temperature,
		MaxTokens:         DefaultMaxTokens,
		LLMTimeoutSeconds: DefaultLLMTimeoutSeconds,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads an optional config file and fills unset values from Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	merged := cfg.MergeWithDefaults(Default())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.Mode {
	case "", ModeSections, ModeCombined:
	default:
		return fmt.Errorf("config error: 'mode' must be %q or %q, got %q", ModeSections, ModeCombined, c.Mode)
	}

	switch c.SearchProvider {
	case "", SearchBrave, SearchGoogle:
	default:
		return fmt.Errorf("config error: unknown 'search_provider' %q", c.SearchProvider)
	}

	switch c.LLMProvider {
	case "", LLMOpenAI, LLMGemini:
	default:
		return fmt.Errorf("config error: unknown 'llm_provider' %q", c.LLMProvider)
	}

	// Validate numeric ranges
	nonNegative := map[string]int{
		"results_per_section": c.ResultsPerSection,
		"results_combined":    c.ResultsCombined,
		"domain_cap":          c.DomainCap,
		"scrape_budget":       c.ScrapeBudget,
		"document_budget":     c.DocumentBudget,
		"context_budget":      c.ContextBudget,
		"max_sentences":       c.MaxSentences,
		"workers":             c.Workers,
		"timeout_seconds":     c.TimeoutSeconds,
		"max_tokens":          c.MaxTokens,
		"llm_timeout_seconds": c.LLMTimeoutSeconds,
	}
	for name, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}
	if c.Workers > 8 {
		return fmt.Errorf("config error: 'workers' must be at most 8")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("config error: 'requests_per_second' must be non-negative")
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 0.3) {
		return fmt.Errorf("config error: 'temperature' must be between 0 and 0.3")
	}

	// Validate file paths exist (if specified)
	if c.SectionsFile != "" {
		if _, err := os.Stat(c.SectionsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: sections file not found: %s", c.SectionsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.SectionsFile == "" {
		result.SectionsFile = defaults.SectionsFile
	}
	if result.SearchProvider == "" {
		result.SearchProvider = defaults.SearchProvider
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.LLMModel == "" {
		result.LLMModel = defaults.LLMModel
	}
	if result.LLMBaseURL == "" {
		result.LLMBaseURL = defaults.LLMBaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Int fields: use default if zero
	mergeInt(&result.ResultsPerSection, defaults.ResultsPerSection)
	mergeInt(&result.ResultsCombined, defaults.ResultsCombined)
	mergeInt(&result.DomainCap, defaults.DomainCap)
	mergeInt(&result.ScrapeBudget, defaults.ScrapeBudget)
	mergeInt(&result.DocumentBudget, defaults.DocumentBudget)
	mergeInt(&result.ContextBudget, defaults.ContextBudget)
	mergeInt(&result.MaxSentences, defaults.MaxSentences)
	mergeInt(&result.Workers, defaults.Workers)
	mergeInt(&result.TimeoutSeconds, defaults.TimeoutSeconds)
	mergeInt(&result.MaxTokens, defaults.MaxTokens)
	mergeInt(&result.LLMTimeoutSeconds, defaults.LLMTimeoutSeconds)

	if result.RequestsPerSecond == 0 {
		result.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if result.Temperature == nil && defaults.Temperature != nil {
		t := *defaults.Temperature
		result.Temperature = &t
	}
	if result.PreferredDomains == nil {
		result.PreferredDomains = append([]string(nil), defaults.PreferredDomains...)
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}

// Timeout returns the per-call HTTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LLMTimeout returns the per-call generation timeout. Generation runs longer
// than search or page fetches, so it has its own setting.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return DefaultLLMTimeoutSeconds * time.Second
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// TemperatureValue returns the configured sampling temperature.
func (c *Config) TemperatureValue() float64 {
	if c.Temperature == nil {
		return DefaultTemperature
	}
	return *c.Temperature
}

// Model returns the configured model or the provider default.
func (c *Config) Model() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	if c.LLMProvider == LLMGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// LoadSections reads an ordered sections file and validates it against the
// embedded sections schema. Labels must be unique.
func LoadSections(path string) ([]types.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sections file %s: %w", path, err)
	}

	if err := schemas.Validate(schemas.SectionsSchema, data); err != nil {
		return nil, fmt.Errorf("invalid sections file %s: %w", path, err)
	}

	var sections []types.Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("failed to parse sections JSON: %w", err)
	}

	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		key := strings.ToLower(strings.TrimSpace(s.Label))
		if seen[key] {
			return nil, fmt.Errorf("invalid sections file %s: duplicate label %q", path, s.Label)
		}
		seen[key] = true
	}

	return sections, nil
}
