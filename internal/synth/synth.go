// Package synth turns collected source text into report narrative with a
// text-generation client.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/company-brief/internal/llm"
	"github.com/jonathan/company-brief/internal/prompts"
	"github.com/jonathan/company-brief/internal/schemas"
	"github.com/jonathan/company-brief/internal/types"
)

// NoDataMarker replaces a section when there is no source text to summarize.
const NoDataMarker = "no data available"

const promptFile = "report.json"

// CompanyContext identifies the subject of the report in prompts.
type CompanyContext struct {
	Company  string
	Industry string
	Region   string
}

// CompanyFrom builds a CompanyContext from a request.
func CompanyFrom(req types.ReportRequest) CompanyContext {
	return CompanyContext{Company: req.Company, Industry: req.Industry, Region: req.Region}
}

func (c CompanyContext) promptData() map[string]string {
	regionClause := ""
	if c.Region != "" {
		regionClause = " in " + c.Region
	}
	return map[string]string{
		"Company":      c.Company,
		"Industry":     c.Industry,
		"RegionClause": regionClause,
	}
}

// Synthesizer writes section narrative. Failures never abort a report: they
// become inline error text for the affected section.
type Synthesizer struct {
	client llm.Client
	log    logrus.FieldLogger
}

// New creates a Synthesizer.
func New(client llm.Client, log logrus.FieldLogger) *Synthesizer {
	return &Synthesizer{client: client, log: log}
}

// InlineError formats a generation failure for display in place of a section.
func InlineError(label string, err error) string {
	return fmt.Sprintf("[Error generating %s: %v]", label, err)
}

// Summarize writes one section from raw source text. Empty raw text returns
// NoDataMarker without calling the client.
func (s *Synthesizer) Summarize(ctx context.Context, label, raw string, company CompanyContext) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoDataMarker
	}

	data := company.promptData()
	data["Section"] = label
	data["Context"] = raw

	prompt, err := prompts.Render(promptFile, "section-summary", data)
	if err != nil {
		return InlineError(label, err)
	}

	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.log.WithError(err).WithField("section", label).Warn("section generation failed")
		return InlineError(label, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return NoDataMarker
	}
	return text
}

// SummarizeSections summarizes every section in order.
func (s *Synthesizer) SummarizeSections(ctx context.Context, sections types.SectionContext, company CompanyContext) types.SectionContent {
	content := make(types.SectionContent, len(sections))
	for i, sec := range sections {
		content[i] = types.SectionText{
			Label: sec.Label,
			Text:  s.Summarize(ctx, sec.Label, sec.Text, company),
		}
	}
	return content
}

type combinedResponse struct {
	Sections []struct {
		Label   string `json:"label"`
		Content string `json:"content"`
	} `json:"sections"`
}

// SummarizeCombined writes every section with a single generation call over
// one shared context. The response is mapped back onto labels in order;
// labels the model left out get NoDataMarker.
func (s *Synthesizer) SummarizeCombined(ctx context.Context, labels []string, sourceContext string, company CompanyContext) types.SectionContent {
	content := make(types.SectionContent, len(labels))
	for i, label := range labels {
		content[i] = types.SectionText{Label: label, Text: NoDataMarker}
	}
	if len(labels) == 0 || strings.TrimSpace(sourceContext) == "" {
		return content
	}

	data := company.promptData()
	data["Context"] = strings.TrimSpace(sourceContext)
	data["SectionList"] = numberedList(labels)

	prompt, err := prompts.Render(promptFile, "combined-report-json", data)
	if err == nil {
		var raw string
		raw, err = s.client.GenerateJSON(ctx, prompt)
		if err == nil {
			return s.mapCombined(content, raw)
		}
	}

	s.log.WithError(err).Warn("combined generation failed")
	for i := range content {
		content[i].Text = InlineError(content[i].Label, err)
	}
	return content
}

func (s *Synthesizer) mapCombined(content types.SectionContent, raw string) types.SectionContent {
	raw = llm.CleanJSONBlock(raw)

	var parsed combinedResponse
	if err := schemas.Validate(schemas.CombinedReportSchema, []byte(raw)); err != nil {
		s.log.WithError(err).Warn("combined response failed schema validation, using raw text")
		return fallbackContent(content, raw)
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fallbackContent(content, raw)
	}

	byLabel := make(map[string]string, len(parsed.Sections))
	for _, sec := range parsed.Sections {
		key := normalizeLabel(sec.Label)
		if _, dup := byLabel[key]; !dup {
			byLabel[key] = strings.TrimSpace(sec.Content)
		}
	}

	for i := range content {
		if text := byLabel[normalizeLabel(content[i].Label)]; text != "" {
			content[i].Text = text
		}
	}
	return content
}

// fallbackContent places unusable output in the first section so the text is
// not lost.
func fallbackContent(content types.SectionContent, raw string) types.SectionContent {
	if raw = strings.TrimSpace(raw); raw != "" && len(content) > 0 {
		content[0].Text = raw
	}
	return content
}

func normalizeLabel(label string) string {
	label = strings.TrimSpace(label)
	// Tolerate "1. Business Overview" and "Business Overview:"
	label = strings.TrimLeft(label, "0123456789. ")
	label = strings.TrimRight(label, ": ")
	return strings.ToLower(label)
}

func numberedList(labels []string) string {
	lines := make([]string, len(labels))
	for i, label := range labels {
		lines[i] = fmt.Sprintf("%d. %s", i+1, label)
	}
	return strings.Join(lines, "\n")
}
