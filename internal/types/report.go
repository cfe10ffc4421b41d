// Package types provides type definitions for the transient data that flows through
// a single report generation run. Nothing here is persisted between runs.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"net/url"
	"strings"
)

// ReportRequest is the user input for one report run.
// Region may be empty; Company and Industry may not.
type ReportRequest struct {
	Company      string `json:"company" validate:"required"`
	Industry     string `json:"industry" validate:"required"`
	Region       string `json:"region,omitempty"`
	Document     []byte `json:"-"`
	DocumentName string `json:"document_name,omitempty"`
}

// Normalize trims surrounding whitespace from the identifying fields.
func (r *ReportRequest) Normalize() {
	r.Company = strings.TrimSpace(r.Company)
	r.Industry = strings.TrimSpace(r.Industry)
	r.Region = strings.TrimSpace(r.Region)
}

// HasDocument reports whether an uploaded document was attached.
func (r *ReportRequest) HasDocument() bool {
	return len(r.Document) > 0
}

// Title returns the report title for the request.
func (r *ReportRequest) Title() string {
	if r.Region == "" {
		return fmt.Sprintf("Research Report: %s in the %s Industry", r.Company, r.Industry)
	}
	return fmt.Sprintf("Research Report: %s in the %s Industry in %s", r.Company, r.Industry, r.Region)
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
}

// NewSearchResult builds a SearchResult and derives its domain from the URL.
func NewSearchResult(title, rawURL, snippet string) SearchResult {
	return SearchResult{
		Title:   title,
		URL:     rawURL,
		Snippet: snippet,
		Domain:  NormalizeDomain(rawURL),
	}
}

// NormalizeDomain returns the lowercased host of a URL without port or leading "www.".
// Returns an empty string when no host can be determined.
func NormalizeDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Section is one entry of the ordered section set: a report heading plus the
// query template used to search for it.
type Section struct {
	Label         string `json:"label"`
	QueryTemplate string `json:"query_template"`
}

// SectionText pairs a section label with text (raw context or synthesized narrative).
type SectionText struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// SectionContext maps section labels to raw aggregated source text, in report order.
type SectionContext []SectionText

// SectionContent maps section labels to synthesized narrative text, in report order.
type SectionContent []SectionText

// Labels returns the section labels in order.
func (c SectionContext) Labels() []string {
	labels := make([]string, len(c))
	for i, s := range c {
		labels[i] = s.Label
	}
	return labels
}

// Get returns the text for a label and whether it was present.
func (c SectionContent) Get(label string) (string, bool) {
	for _, s := range c {
		if s.Label == label {
			return s.Text, true
		}
	}
	return "", false
}

// ReportDocument is the render input for the exporter.
type ReportDocument struct {
	Title    string
	Sections SectionContent
}

// Text renders the document as the plain text shown to the user.
func (d ReportDocument) Text() string {
	var sb strings.Builder
	sb.WriteString("**")
	sb.WriteString(d.Title)
	sb.WriteString("**\n\n")
	for _, s := range d.Sections {
		sb.WriteString("**")
		sb.WriteString(s.Label)
		sb.WriteString(":**\n")
		sb.WriteString(strings.TrimSpace(s.Text))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Report is the result of a successful pipeline run.
type Report struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Request     ReportRequest  `json:"request"`
	Sections    SectionContent `json:"sections"`
	Sources     []SearchResult `json:"sources"`
	PDF         []byte         `json:"-"`
	PDFName     string         `json:"pdf_name"`
	ExportError string         `json:"export_error,omitempty"`
}

// Document returns the renderable form of the report.
func (r *Report) Document() ReportDocument {
	return ReportDocument{Title: r.Title, Sections: r.Sections}
}

// Text returns the plain-text body of the report.
func (r *Report) Text() string {
	return r.Document().Text()
}
