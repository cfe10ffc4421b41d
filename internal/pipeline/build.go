package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/company-brief/internal/collect"
	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/fetch"
	"github.com/jonathan/company-brief/internal/llm"
	"github.com/jonathan/company-brief/internal/query"
	"github.com/jonathan/company-brief/internal/search"
	"github.com/jonathan/company-brief/internal/synth"
	"github.com/jonathan/company-brief/internal/types"
)

// FromConfig wires a Pipeline from configuration and resolved secrets.
// The returned close function releases the LLM client.
func FromConfig(ctx context.Context, cfg config.Config, secrets config.Secrets, log logrus.FieldLogger) (*Pipeline, func() error, error) {
	var sections []types.Section
	if cfg.SectionsFile != "" {
		loaded, err := config.LoadSections(cfg.SectionsFile)
		if err != nil {
			return nil, nil, err
		}
		sections = loaded
	}

	searcher, err := search.New(ctx, cfg, secrets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search client: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.FromAppConfig(cfg), secrets.LLMAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	var scraper collect.PageScraper
	if !cfg.DisableScrape {
		scraper = fetch.NewScraper(fetch.ScraperConfig{
			Timeout:    cfg.Timeout(),
			Budget:     cfg.ScrapeBudget,
			UseBrowser: cfg.UseBrowser,
		}, log)
	}

	p := New(Deps{
		Collector:      collect.New(searcher, scraper, collect.OptionsFromConfig(cfg), log),
		Synthesizer:    synth.New(client, log),
		Builder:        query.NewBuilder(sections),
		Mode:           Mode(cfg.Mode),
		DocumentBudget: cfg.DocumentBudget,
		Logger:         log,
	})

	log.WithFields(logrus.Fields{
		"mode":   cfg.Mode,
		"search": cfg.SearchProvider,
		"llm":    client.Model(),
	}).Info("pipeline ready")

	return p, client.Close, nil
}
