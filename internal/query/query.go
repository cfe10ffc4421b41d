// Package query composes web search queries from a report request and the
// ordered section set.
package query

import (
	"strings"

	"github.com/jonathan/company-brief/internal/prompts"
	"github.com/jonathan/company-brief/internal/types"
)

// Query is one search query tied to the section it collects sources for.
type Query struct {
	Label string
	Text  string
}

// DefaultSections returns the fixed ordered section set used when no sections
// file is configured.
func DefaultSections() []types.Section {
	const base = "{{.Company}} {{.Industry}} {{.Region}} "
	return []types.Section{
		{Label: "Business Overview", QueryTemplate: base + "company overview founders headquarters"},
		{Label: "Key Products and Business Model", QueryTemplate: base + "products business model revenue"},
		{Label: "Financial and Operating Metrics", QueryTemplate: base + "revenue users growth metrics"},
		{Label: "Fundraising History", QueryTemplate: base + "funding round investors raised"},
		{Label: "Industry Outlook (Headwinds & Tailwinds)", QueryTemplate: "{{.Industry}} {{.Region}} industry outlook trends"},
		{Label: "Private Credit Use Case", QueryTemplate: base + "debt financing credit facility lending"},
		{Label: "Key Questions for Management", QueryTemplate: base + "risks challenges competition"},
	}
}

// Builder turns a request into search queries. It is pure and total.
type Builder struct {
	sections []types.Section
}

// NewBuilder creates a Builder over an ordered section set.
// A nil or empty set falls back to DefaultSections.
func NewBuilder(sections []types.Section) *Builder {
	if len(sections) == 0 {
		sections = DefaultSections()
	}
	return &Builder{sections: sections}
}

// Sections returns the ordered section set the builder uses.
func (b *Builder) Sections() []types.Section {
	return b.sections
}

// Labels returns the section labels in report order.
func (b *Builder) Labels() []string {
	labels := make([]string, len(b.sections))
	for i, s := range b.sections {
		labels[i] = s.Label
	}
	return labels
}

// Combined returns the single query "<company> <industry> <region>".
func (b *Builder) Combined(req types.ReportRequest) string {
	return collapse(req.Company + " " + req.Industry + " " + req.Region)
}

// PerSection returns one query per section, in section order.
func (b *Builder) PerSection(req types.ReportRequest) []Query {
	data := map[string]string{
		"Company":  req.Company,
		"Industry": req.Industry,
		"Region":   req.Region,
	}

	queries := make([]Query, len(b.sections))
	for i, s := range b.sections {
		tmpl := s.QueryTemplate
		if strings.TrimSpace(tmpl) == "" {
			tmpl = "{{.Company}} {{.Industry}} {{.Region}} " + s.Label
		}
		queries[i] = Query{Label: s.Label, Text: collapse(prompts.Format(tmpl, data))}
	}
	return queries
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
