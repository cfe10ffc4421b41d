// Package collect gathers raw source text for each report section: web
// search, domain filtering, page scraping and sentence dedup.
package collect

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/fetch"
	"github.com/jonathan/company-brief/internal/query"
	"github.com/jonathan/company-brief/internal/search"
	"github.com/jonathan/company-brief/internal/types"
)

// PageScraper returns cleaned page text, or "" when the page cannot be used.
type PageScraper interface {
	Scrape(ctx context.Context, url string) string
}

// Options controls collection. Zero values disable the matching limit.
type Options struct {
	ResultsPerSection int
	ResultsCombined   int
	DomainCap         int
	PreferredDomains  []string
	FilterSections    bool // apply PreferredDomains in sections mode
	DisableScrape     bool // use search snippets instead of page text
	ContextBudget     int
	MaxSentences      int
	Workers           int
	RequestsPerSecond float64
}

// OptionsFromConfig maps config tunables onto collector options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		ResultsPerSection: cfg.ResultsPerSection,
		ResultsCombined:   cfg.ResultsCombined,
		DomainCap:         cfg.DomainCap,
		PreferredDomains:  cfg.PreferredDomains,
		FilterSections:    cfg.FilterSections,
		DisableScrape:     cfg.DisableScrape,
		ContextBudget:     cfg.ContextBudget,
		MaxSentences:      cfg.MaxSentences,
		Workers:           cfg.Workers,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

// Collector runs searches and scrapes for a report.
type Collector struct {
	searcher search.Searcher
	scraper  PageScraper
	opts     Options
	limiter  *rate.Limiter
	log      logrus.FieldLogger
}

// New creates a Collector. scraper may be nil when scraping is disabled.
func New(searcher search.Searcher, scraper PageScraper, opts Options, log logrus.FieldLogger) *Collector {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Collector{
		searcher: searcher,
		scraper:  scraper,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, opts.Workers),
		log:      log,
	}
}

// SectionsResult is the output of per-section collection.
type SectionsResult struct {
	Context types.SectionContext
	Sources []types.SearchResult // filtered results, section order, duplicates across sections removed
}

// CollectSections collects raw text for every query. Sections run
// concurrently, bounded by Options.Workers; the returned context keeps the
// query order. Only cancellation of ctx returns an error.
func (c *Collector) CollectSections(ctx context.Context, queries []query.Query) (*SectionsResult, error) {
	contexts := make(types.SectionContext, len(queries))
	sources := make([][]types.SearchResult, len(queries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, q := range queries {
		g.Go(func() error {
			text, results, err := c.collectSection(gCtx, q)
			if err != nil {
				return err
			}
			// Each goroutine owns index i.
			contexts[i] = types.SectionText{Label: q.Label, Text: text}
			sources[i] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SectionsResult{Context: contexts, Sources: mergeSources(sources)}, nil
}

func (c *Collector) collectSection(ctx context.Context, q query.Query) (string, []types.SearchResult, error) {
	log := c.log.WithField("section", q.Label)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}
	results := search.Soft(ctx, c.searcher, q.Text, c.opts.ResultsPerSection, log)

	var preferred []string
	if c.opts.FilterSections {
		preferred = c.opts.PreferredDomains
	}
	results = FilterByDomain(results, preferred, c.opts.DomainCap)

	texts := make([]string, 0, len(results))
	for _, r := range results {
		text, err := c.sourceText(ctx, r)
		if err != nil {
			return "", nil, err
		}
		if text != "" {
			texts = append(texts, text)
		}
	}

	raw := DedupeSentences(strings.Join(texts, " "), c.opts.MaxSentences)
	raw = fetch.Truncate(raw, c.opts.ContextBudget)

	log.WithFields(logrus.Fields{
		"sources": len(results),
		"chars":   len(raw),
	}).Debug("section collected")

	return raw, results, nil
}

// sourceText returns the scraped page text for r, or its snippet when
// scraping is disabled or the page yields nothing.
func (c *Collector) sourceText(ctx context.Context, r types.SearchResult) (string, error) {
	if c.opts.DisableScrape || c.scraper == nil {
		return strings.TrimSpace(r.Snippet), nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	if text := c.scraper.Scrape(ctx, r.URL); text != "" {
		return text, nil
	}
	return strings.TrimSpace(r.Snippet), nil
}

// CombinedResult is the output of single-query collection.
type CombinedResult struct {
	Sources []types.SearchResult
	Context string
}

// CollectCombined runs one query, keeps preferred-domain results and builds
// the snippet context.
func (c *Collector) CollectCombined(ctx context.Context, q string) (*CombinedResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	results := search.Soft(ctx, c.searcher, q, c.opts.ResultsCombined, c.log)
	filtered := FilterByDomain(results, c.opts.PreferredDomains, c.opts.DomainCap)

	c.log.WithFields(logrus.Fields{
		"results":  len(results),
		"filtered": len(filtered),
	}).Debug("combined collection complete")

	return &CombinedResult{
		Sources: filtered,
		Context: BuildSnippetContext(filtered),
	}, nil
}

func mergeSources(perSection [][]types.SearchResult) []types.SearchResult {
	seen := make(map[string]bool)
	var merged []types.SearchResult
	for _, results := range perSection {
		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			merged = append(merged, r)
		}
	}
	return merged
}
