package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-brief/internal/collect"
	"github.com/jonathan/company-brief/internal/logging"
	"github.com/jonathan/company-brief/internal/query"
	"github.com/jonathan/company-brief/internal/rendering"
	"github.com/jonathan/company-brief/internal/synth"
	"github.com/jonathan/company-brief/internal/types"
)

// stubSearcher returns the same results for every query.
type stubSearcher struct {
	mu      sync.Mutex
	results []types.SearchResult
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, q string, count int) ([]types.SearchResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	return s.results, s.err
}

// stubLLM counts calls and answers with fixed text.
type stubLLM struct {
	mu    sync.Mutex
	calls int
	text  string
	json  string
}

func (c *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.text, nil
}

func (c *stubLLM) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.json, nil
}

func (c *stubLLM) Model() string { return "stub" }
func (c *stubLLM) Close() error  { return nil }

func (c *stubLLM) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var acmeResults = []types.SearchResult{
	types.NewSearchResult("Acme raises Series A", "https://techcrunch.com/acme-series-a",
		"Acme raised a twelve million dollar Series A led by Example Ventures."),
	types.NewSearchResult("Acme profile", "https://www.crunchbase.com/organization/acme",
		"Acme is a Fintech company building payment rails for European merchants."),
}

func newTestPipeline(searcher *stubSearcher, client *stubLLM, mode Mode) *Pipeline {
	log := logging.Discard()
	opts := collect.Options{
		ResultsPerSection: 5,
		ResultsCombined:   10,
		DomainCap:         6,
		PreferredDomains:  []string{"crunchbase", "techcrunch"},
		DisableScrape:     true,
		ContextBudget:     3000,
		MaxSentences:      15,
		Workers:           2,
	}
	return New(Deps{
		Collector:   collect.New(searcher, nil, opts, log),
		Synthesizer: synth.New(client, log),
		Mode:        mode,
		Logger:      log,
	})
}

func acmeRequest() types.ReportRequest {
	return types.ReportRequest{Company: "Acme", Industry: "Fintech", Region: "EU"}
}

func TestRun_SectionsEndToEnd(t *testing.T) {
	client := &stubLLM{text: "Acme builds payment rails for merchants."}
	p := newTestPipeline(&stubSearcher{results: acmeResults}, client, ModeSections)
	pdfOpts := rendering.DefaultPDFOptions()
	pdfOpts.Uncompressed = true
	p.deps.PDF = pdfOpts

	report, err := p.Run(context.Background(), acmeRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "Research Report: Acme in the Fintech Industry in EU", report.Title)
	assert.True(t, strings.HasPrefix(string(report.PDF), "%PDF-"))
	assert.Equal(t, "Acme - Intro.pdf", report.PDFName)
	assert.Empty(t, report.ExportError)
	assert.NoError(t, ExportErr(report))
	assert.Contains(t, report.Text(), "Acme")
	assert.True(t, bytes.Contains(report.PDF, []byte("Acme")), "rendered PDF should carry the company name")
	assert.True(t, bytes.Contains(report.PDF, []byte("Business Overview")))
	assert.Len(t, report.Sources, 2)

	labels := query.NewBuilder(nil).Labels()
	assert.Equal(t, len(labels), client.count())
}

func TestRun_SectionOrderAndCount(t *testing.T) {
	p := newTestPipeline(&stubSearcher{results: acmeResults}, &stubLLM{text: "narrative"}, ModeSections)

	report, err := p.Run(context.Background(), acmeRequest())
	require.NoError(t, err)

	got := make([]string, len(report.Sections))
	for i, s := range report.Sections {
		got[i] = s.Label
	}
	assert.Equal(t, query.NewBuilder(nil).Labels(), got)
}

func TestRun_MissingInput(t *testing.T) {
	tests := []struct {
		name string
		req  types.ReportRequest
	}{
		{"Missing company", types.ReportRequest{Industry: "Fintech"}},
		{"Missing industry", types.ReportRequest{Company: "Acme"}},
		{"Whitespace only", types.ReportRequest{Company: "  ", Industry: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{results: acmeResults}
			client := &stubLLM{text: "x"}
			p := newTestPipeline(searcher, client, ModeSections)

			report, err := p.Run(context.Background(), tt.req)
			assert.Nil(t, report)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingInput)
			assert.Equal(t, KindMissingInput, KindOf(err))
			assert.Empty(t, searcher.queries)
			assert.Zero(t, client.count())

			var pe *Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "Please enter both company name and industry.", pe.UserMessage())
		})
	}
}

func TestRun_NoQualifyingSourcesSkipsLLM(t *testing.T) {
	for _, mode := range []Mode{ModeSections, ModeCombined} {
		t.Run(string(mode), func(t *testing.T) {
			client := &stubLLM{text: "x", json: `{"sections":[]}`}
			p := newTestPipeline(&stubSearcher{err: errors.New("upstream unavailable")}, client, mode)

			_, err := p.Run(context.Background(), acmeRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoQualifyingSources)
			assert.Zero(t, client.count())

			var pe *Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "Insufficient quality data found. Try broadening your search.", pe.UserMessage())
		})
	}
}

func TestRun_DocumentOnlyStillProducesReport(t *testing.T) {
	client := &stubLLM{text: "From the uploaded deck: Acme lends to merchants."}
	p := newTestPipeline(&stubSearcher{}, client, ModeSections)

	req := acmeRequest()
	req.Document = []byte("Acme provides working capital loans to small merchants across Europe.")
	req.DocumentName = "deck.txt"

	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, report.Sources)
	assert.Equal(t, len(report.Sections), client.count())
}

func TestRun_CombinedMode(t *testing.T) {
	labels := query.NewBuilder(nil).Labels()
	var parts []string
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf(`{"label":%q,"content":"Acme detail for %s."}`, label, label))
	}
	client := &stubLLM{json: `{"sections":[` + strings.Join(parts, ",") + `]}`}
	searcher := &stubSearcher{results: append([]types.SearchResult{
		types.NewSearchResult("Unrelated", "https://example.org/acme", "An unrelated page about another Acme."),
	}, acmeResults...)}
	p := newTestPipeline(searcher, client, ModeCombined)

	report, err := p.Run(context.Background(), acmeRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, client.count())
	assert.Len(t, searcher.queries, 1)
	require.Len(t, report.Sections, len(labels))
	for i, s := range report.Sections {
		assert.Equal(t, labels[i], s.Label)
		assert.Equal(t, "Acme detail for "+labels[i]+".", s.Text)
	}
	// Only preferred domains survive.
	assert.Len(t, report.Sources, 2)
}

func TestRun_ExportFailureKeepsReport(t *testing.T) {
	p := newTestPipeline(&stubSearcher{results: acmeResults}, &stubLLM{text: "Acme narrative."}, ModeSections)
	p.deps.PDF = &rendering.PDFOptions{FontFamily: "NoSuchFont", FontSize: 11, LineHeight: 6, Margin: 15}

	report, err := p.Run(context.Background(), acmeRequest())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Empty(t, report.PDF)
	assert.NotEmpty(t, report.ExportError)
	assert.ErrorIs(t, ExportErr(report), ErrExportFailure)
	assert.Len(t, report.Sections, len(query.NewBuilder(nil).Labels()))
}

func TestRun_ProgressEvents(t *testing.T) {
	p := newTestPipeline(&stubSearcher{results: acmeResults}, &stubLLM{text: "narrative"}, ModeSections)

	var steps []string
	var runIDs []string
	_, err := p.RunWithProgress(context.Background(), acmeRequest(), func(e ProgressEvent) {
		steps = append(steps, e.Step)
		runIDs = append(runIDs, e.RunID)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StepQuery, StepCollect, StepSynthesize, StepExport, StepComplete}, steps)
	for _, id := range runIDs {
		assert.Equal(t, runIDs[0], id)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	client := &stubLLM{text: "x"}
	p := newTestPipeline(&stubSearcher{results: acmeResults}, client, ModeSections)
	p.deps.Collector = collect.New(&stubSearcher{results: acmeResults}, nil, collect.Options{
		Workers:           1,
		RequestsPerSecond: 0.001,
	}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, acmeRequest())
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Zero(t, client.count())
}

func TestError_Formatting(t *testing.T) {
	err := &Error{Kind: KindNoQualifyingSources, Message: "nothing found"}
	assert.Equal(t, "pipeline no_qualifying_sources: nothing found", err.Error())

	cause := errors.New("boom")
	wrapped := &Error{Kind: KindInternal, Message: "collection interrupted", Cause: cause}
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, errors.Is(wrapped, ErrMissingInput))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
