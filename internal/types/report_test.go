package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"Simple URL", "https://techcrunch.com/2024/01/story", "techcrunch.com"},
		{"URL with www", "https://www.Crunchbase.com/organization/acme", "crunchbase.com"},
		{"URL with port", "http://news.example.com:8080/a", "news.example.com"},
		{"Subdomain kept", "https://blog.acme.io/post", "blog.acme.io"},
		{"URL without scheme", "yourstory.com/companies", "yourstory.com"},
		{"Empty URL", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDomain(tt.url))
		})
	}
}

func TestNewSearchResult_DerivesDomain(t *testing.T) {
	r := NewSearchResult("Acme raises", "https://www.techcrunch.com/acme", "Acme raised $10M")
	assert.Equal(t, "techcrunch.com", r.Domain)
	assert.Equal(t, "Acme raises", r.Title)
}

func TestReportRequest_Title(t *testing.T) {
	req := ReportRequest{Company: "Acme", Industry: "Fintech", Region: "EU"}
	assert.Equal(t, "Research Report: Acme in the Fintech Industry in EU", req.Title())

	req.Region = ""
	assert.Equal(t, "Research Report: Acme in the Fintech Industry", req.Title())
}

func TestReportRequest_Normalize(t *testing.T) {
	req := ReportRequest{Company: "  Acme ", Industry: "\tFintech\n", Region: " "}
	req.Normalize()
	assert.Equal(t, "Acme", req.Company)
	assert.Equal(t, "Fintech", req.Industry)
	assert.Equal(t, "", req.Region)
	assert.False(t, req.HasDocument())
}

func TestReportDocument_Text(t *testing.T) {
	doc := ReportDocument{
		Title: "Research Report: Acme",
		Sections: SectionContent{
			{Label: "Business Overview", Text: "Acme builds payments rails.\n"},
			{Label: "Fundraising History", Text: "Series A in 2023."},
		},
	}

	expected := "**Research Report: Acme**\n\n" +
		"**Business Overview:**\nAcme builds payments rails.\n\n" +
		"**Fundraising History:**\nSeries A in 2023.\n"
	assert.Equal(t, expected, doc.Text())
}

func TestSectionContent_Get(t *testing.T) {
	content := SectionContent{{Label: "A", Text: "one"}, {Label: "B", Text: "two"}}

	text, ok := content.Get("B")
	assert.True(t, ok)
	assert.Equal(t, "two", text)

	_, ok = content.Get("C")
	assert.False(t, ok)
}

func TestSectionContext_Labels(t *testing.T) {
	ctx := SectionContext{{Label: "A"}, {Label: "B"}, {Label: "C"}}
	assert.Equal(t, []string{"A", "B", "C"}, ctx.Labels())
}
