package search

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/company-brief/internal/types"
)

// googleMaxResults is the Custom Search API page size limit.
const googleMaxResults = 10

// GoogleClient queries Google Programmable Search (Custom Search JSON API).
type GoogleClient struct {
	svc     *customsearch.Service
	cx      string
	timeout time.Duration
}

// Ensure GoogleClient implements Searcher
var _ Searcher = (*GoogleClient)(nil)

// NewGoogleClient creates a Custom Search client for the engine cx.
func NewGoogleClient(ctx context.Context, apiKey, cx string, timeout time.Duration, opts ...option.ClientOption) (*GoogleClient, error) {
	if cx == "" {
		return nil, fmt.Errorf("google search engine id (cx) is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleClient{svc: svc, cx: cx, timeout: timeout}, nil
}

// Search performs a single Custom Search request.
func (c *GoogleClient) Search(ctx context.Context, query string, count int) ([]types.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.svc.Cse.List().Cx(c.cx).Q(query).Context(ctx)
	if count > 0 {
		if count > googleMaxResults {
			count = googleMaxResults
		}
		call = call.Num(int64(count))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("google search failed: %w", err)
	}

	results := make([]types.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, types.NewSearchResult(item.Title, item.Link, item.Snippet))
	}
	return results, nil
}
