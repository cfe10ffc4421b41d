package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonathan/company-brief/internal/types"
)

// DefaultBraveURL is the Brave web search endpoint.
const DefaultBraveURL = "https://api.search.brave.com/res/v1/web/search"

// BraveClient queries the Brave Search API.
type BraveClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Ensure BraveClient implements Searcher
var _ Searcher = (*BraveClient)(nil)

// NewBraveClient creates a Brave client. A zero timeout uses 15 seconds.
func NewBraveClient(apiKey string, timeout time.Duration) *BraveClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BraveClient{
		apiKey:  apiKey,
		baseURL: DefaultBraveURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different endpoint.
func (c *BraveClient) WithBaseURL(baseURL string) *BraveClient {
	c.baseURL = baseURL
	return c
}

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Search performs a single web search request.
func (c *BraveClient) Search(ctx context.Context, query string, count int) ([]types.SearchResult, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	if count > 0 {
		q.Set("count", strconv.Itoa(count))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, &APIError{Provider: "brave", StatusCode: res.StatusCode, Body: string(body)}
	}

	var payload braveResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	results := make([]types.SearchResult, 0, len(payload.Web.Results))
	for _, r := range payload.Web.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, types.NewSearchResult(r.Title, r.URL, r.Description))
	}
	return results, nil
}
