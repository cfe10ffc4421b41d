package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/logging"
	"github.com/jonathan/company-brief/internal/types"
)

func TestBraveClient_Search(t *testing.T) {
	var gotQuery, gotCount, gotToken, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		gotToken = r.Header.Get("X-Subscription-Token")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"Acme raises Series A","url":"https://www.techcrunch.com/acme","description":"Acme raised $10M."},
			{"title":"no url","url":"","description":"skipped"},
			{"title":"Acme on Crunchbase","url":"https://crunchbase.com/organization/acme","description":"Profile."}
		]}}`))
	}))
	defer srv.Close()

	client := NewBraveClient("brave-key", time.Second).WithBaseURL(srv.URL)
	results, err := client.Search(context.Background(), "Acme Fintech EU", 5)
	require.NoError(t, err)

	assert.Equal(t, "Acme Fintech EU", gotQuery)
	assert.Equal(t, "5", gotCount)
	assert.Equal(t, "brave-key", gotToken)
	assert.Equal(t, "application/json", gotAccept)

	require.Len(t, results, 2)
	assert.Equal(t, "techcrunch.com", results[0].Domain)
	assert.Equal(t, "Acme raised $10M.", results[0].Snippet)
	assert.Equal(t, "crunchbase.com", results[1].Domain)
}

func TestBraveClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewBraveClient("k", time.Second).WithBaseURL(srv.URL)
	_, err := client.Search(context.Background(), "Acme", 5)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quota exceeded")
}

func TestBraveClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewBraveClient("k", time.Second).WithBaseURL(srv.URL)
	_, err := client.Search(context.Background(), "Acme", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response failed")
}

func TestGoogleClient_Search(t *testing.T) {
	var gotCx, gotNum, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCx = r.URL.Query().Get("cx")
		gotNum = r.URL.Query().Get("num")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"Acme - DealStreetAsia","link":"https://www.dealstreetasia.com/acme","snippet":"Acme closes round."}
		]}`))
	}))
	defer srv.Close()

	client, err := NewGoogleClient(context.Background(), "g-key", "engine", time.Second,
		option.WithEndpoint(srv.URL), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "Acme Fintech", 25)
	require.NoError(t, err)
	assert.Equal(t, "engine", gotCx)
	assert.Equal(t, "10", gotNum, "count is clamped to the API page size")
	assert.Equal(t, "Acme Fintech", gotQuery)

	require.Len(t, results, 1)
	assert.Equal(t, "dealstreetasia.com", results[0].Domain)
	assert.Equal(t, "Acme closes round.", results[0].Snippet)
}

func TestNewGoogleClient_RequiresEngineID(t *testing.T) {
	_, err := NewGoogleClient(context.Background(), "key", "", time.Second)
	assert.ErrorContains(t, err, "cx")
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := config.Default()
	s, err := New(context.Background(), cfg, config.Secrets{SearchAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &BraveClient{}, s)

	cfg.SearchProvider = "bing"
	_, err = New(context.Background(), cfg, config.Secrets{})
	assert.Error(t, err)
}

type failingSearcher struct{ calls int }

func (f *failingSearcher) Search(ctx context.Context, query string, count int) ([]types.SearchResult, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestSoft_FailureReturnsEmpty(t *testing.T) {
	s := &failingSearcher{}

	results := Soft(context.Background(), s, "Acme", 5, logging.Discard())
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 1, s.calls)
}

func TestSoft_UnreachableProvider(t *testing.T) {
	client := NewBraveClient("k", 200*time.Millisecond).WithBaseURL("http://127.0.0.1:1")

	results := Soft(context.Background(), client, "Acme", 5, logging.Discard())
	assert.Empty(t, results)
}
