package fetch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Scraper fetches a page and returns its cleaned paragraph text.
// Every failure is soft: Scrape returns an empty string and logs why.
type Scraper struct {
	opts       *Options
	budget     int
	useBrowser bool
	render     RenderFunc
	log        logrus.FieldLogger
}

// ScraperConfig configures a Scraper.
type ScraperConfig struct {
	Timeout    time.Duration
	Budget     int  // max characters returned per page
	UseBrowser bool // render short pages with headless Chrome
}

// NewScraper creates a Scraper.
func NewScraper(cfg ScraperConfig, log logrus.FieldLogger) *Scraper {
	opts := DefaultOptions()
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	return &Scraper{
		opts:       opts,
		budget:     cfg.Budget,
		useBrowser: cfg.UseBrowser,
		render:     WithBrowser,
		log:        log,
	}
}

// WithRenderer replaces the browser renderer used for short pages.
func (s *Scraper) WithRenderer(render RenderFunc) *Scraper {
	s.render = render
	return s
}

// Scrape fetches url and returns cleaned paragraph text truncated to the
// character budget. Returns "" on timeout, non-success status, a detected
// challenge page, or unparseable HTML.
func (s *Scraper) Scrape(ctx context.Context, url string) string {
	log := s.log.WithField("url", url)

	result, err := URL(ctx, url, s.opts)
	if detected, source := DetectChallenge(result); detected {
		log.WithField("protection", source).Warn("challenge page detected, skipping")
		return ""
	}
	if err != nil {
		log.WithError(err).Warn("scrape failed")
		return ""
	}

	text, err := ExtractParagraphText(result.HTML)
	if err != nil {
		log.WithError(err).Warn("could not extract page text")
		return ""
	}

	if s.useBrowser && s.render != nil && ShouldUseBrowser(text) {
		if rendered := s.renderText(ctx, url, log); len(rendered) > len(text) {
			text = rendered
		}
	}

	return Truncate(text, s.budget)
}

func (s *Scraper) renderText(ctx context.Context, url string, log logrus.FieldLogger) string {
	log.Debug("page text too short, rendering with browser")
	html, err := s.render(ctx, url, s.opts.Timeout)
	if err != nil {
		log.WithError(err).Warn("browser fallback failed")
		return ""
	}
	if detected, source := DetectChallenge(&Result{URL: url, HTML: html, StatusCode: 200}); detected {
		log.WithField("protection", source).Warn("challenge page after rendering, skipping")
		return ""
	}
	text, err := ExtractParagraphText(html)
	if err != nil {
		return ""
	}
	return text
}
