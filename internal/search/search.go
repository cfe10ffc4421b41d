// Package search provides web search clients for source collection.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/types"
)

// Searcher runs one web search and returns results in provider rank order.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]types.SearchResult, error)
}

// APIError is returned when a search provider answers with a non-success status.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s search api error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// New creates the Searcher selected by cfg.SearchProvider.
func New(ctx context.Context, cfg config.Config, secrets config.Secrets) (Searcher, error) {
	switch cfg.SearchProvider {
	case config.SearchGoogle:
		return NewGoogleClient(ctx, secrets.SearchAPIKey, secrets.SearchEngineID, cfg.Timeout())
	case "", config.SearchBrave:
		return NewBraveClient(secrets.SearchAPIKey, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
	}
}

// Soft runs a search and converts any failure into an empty result set.
// Failures are logged and never abort the caller.
func Soft(ctx context.Context, s Searcher, query string, count int, log logrus.FieldLogger) []types.SearchResult {
	start := time.Now()
	results, err := s.Search(ctx, query, count)
	if err != nil {
		log.WithError(err).WithField("query", query).Warn("search failed, continuing without results")
		return []types.SearchResult{}
	}
	log.WithFields(logrus.Fields{
		"query":    query,
		"results":  len(results),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("search complete")
	return results
}
