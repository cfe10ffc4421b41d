// Package pipeline orchestrates one report run: query, collect, synthesize, export.
// Runs are stateless; nothing is kept between calls to Run.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/company-brief/internal/collect"
	"github.com/jonathan/company-brief/internal/config"
	"github.com/jonathan/company-brief/internal/document"
	"github.com/jonathan/company-brief/internal/query"
	"github.com/jonathan/company-brief/internal/rendering"
	"github.com/jonathan/company-brief/internal/synth"
	"github.com/jonathan/company-brief/internal/types"
)

// Mode selects how sources are collected and summarized.
type Mode string

const (
	// ModeSections searches, scrapes and summarizes each section on its own.
	ModeSections Mode = config.ModeSections
	// ModeCombined runs one query and makes a single generation call.
	ModeCombined Mode = config.ModeCombined
)

// Step names reported through ProgressCallback.
const (
	StepQuery      = "query"
	StepCollect    = "collect"
	StepSynthesize = "synthesize"
	StepExport     = "export"
	StepComplete   = "complete"
)

// Step categories.
const (
	CategoryResearch  = "research"
	CategorySynthesis = "synthesis"
	CategoryOutput    = "output"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Collector gathers raw source text.
type Collector interface {
	CollectSections(ctx context.Context, queries []query.Query) (*collect.SectionsResult, error)
	CollectCombined(ctx context.Context, q string) (*collect.CombinedResult, error)
}

// Synthesizer turns raw source text into section narrative.
type Synthesizer interface {
	SummarizeSections(ctx context.Context, sections types.SectionContext, company synth.CompanyContext) types.SectionContent
	SummarizeCombined(ctx context.Context, labels []string, sourceContext string, company synth.CompanyContext) types.SectionContent
}

// Deps holds the components a Pipeline runs.
type Deps struct {
	Collector      Collector
	Synthesizer    Synthesizer
	Builder        *query.Builder // nil uses the default sections
	Mode           Mode           // empty means ModeSections
	DocumentBudget int            // max characters kept from an uploaded document
	PDF            *rendering.PDFOptions
	Logger         logrus.FieldLogger
}

// Pipeline produces reports.
type Pipeline struct {
	deps     Deps
	validate *validator.Validate
	log      logrus.FieldLogger
}

// New creates a Pipeline.
func New(deps Deps) *Pipeline {
	if deps.Builder == nil {
		deps.Builder = query.NewBuilder(nil)
	}
	if deps.Mode == "" {
		deps.Mode = ModeSections
	}
	if deps.PDF == nil {
		deps.PDF = rendering.DefaultPDFOptions()
	}
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{deps: deps, validate: validator.New(), log: log}
}

// Mode returns the collection mode.
func (p *Pipeline) Mode() Mode {
	return p.deps.Mode
}

// Run produces a report for req.
func (p *Pipeline) Run(ctx context.Context, req types.ReportRequest) (*types.Report, error) {
	return p.RunWithProgress(ctx, req, nil)
}

// RunWithProgress produces a report for req, reporting each stage to onProgress.
//
// A nil error always comes with a report. A failed PDF export does not fail
// the run: the report carries ExportError and ExportErr returns it.
func (p *Pipeline) RunWithProgress(ctx context.Context, req types.ReportRequest, onProgress ProgressCallback) (*types.Report, error) {
	req.Normalize()
	if err := p.validateRequest(req); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	emit := func(step, category, message string, content any) {
		if onProgress != nil {
			onProgress(ProgressEvent{Step: step, Category: category, Message: message, RunID: runID, Content: content})
		}
	}
	log := p.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"company": req.Company,
		"mode":    p.deps.Mode,
	})

	docText := ""
	if req.HasDocument() {
		docText = document.ExtractText(req.Document, p.deps.DocumentBudget)
		if docText == "" {
			log.WithField("document", req.DocumentName).Warn("uploaded document yielded no text, ignoring")
		}
	}

	company := synth.CompanyFrom(req)
	var (
		content types.SectionContent
		sources []types.SearchResult
		err     error
	)
	switch p.deps.Mode {
	case ModeCombined:
		content, sources, err = p.runCombined(ctx, req, company, docText, emit)
	default:
		content, sources, err = p.runSections(ctx, req, company, docText, emit)
	}
	if err != nil {
		log.WithError(err).Warn("report run stopped")
		return nil, err
	}

	report := &types.Report{
		ID:       runID,
		Title:    req.Title(),
		Request:  req,
		Sections: content,
		Sources:  sources,
	}

	pdf, err := rendering.RenderPDFBytes(report.Document(), p.deps.PDF)
	if err != nil {
		log.WithError(err).Error("pdf export failed")
		report.ExportError = err.Error()
		emit(StepExport, CategoryOutput, "PDF export failed", report.ExportError)
	} else {
		report.PDF = pdf
		report.PDFName = rendering.FileName(req.Company)
		emit(StepExport, CategoryOutput, fmt.Sprintf("Rendered %s", report.PDFName), nil)
	}

	log.WithFields(logrus.Fields{
		"sections": len(report.Sections),
		"sources":  len(report.Sources),
	}).Info("report complete")
	emit(StepComplete, CategoryOutput, "Report complete", report)

	return report, nil
}

func (p *Pipeline) runSections(ctx context.Context, req types.ReportRequest, company synth.CompanyContext, docText string, emit func(string, string, string, any)) (types.SectionContent, []types.SearchResult, error) {
	queries := p.deps.Builder.PerSection(req)
	emit(StepQuery, CategoryResearch, fmt.Sprintf("Built %d section queries", len(queries)), queries)

	res, err := p.deps.Collector.CollectSections(ctx, queries)
	if err != nil {
		return nil, nil, &Error{Kind: KindInternal, Message: "collection interrupted", Cause: err}
	}
	emit(StepCollect, CategoryResearch, fmt.Sprintf("Collected %d sources", len(res.Sources)), res.Sources)

	if len(collect.Qualifying(res.Sources)) == 0 && docText == "" {
		return nil, nil, &Error{Kind: KindNoQualifyingSources, Message: "no usable sources for any section"}
	}

	sections := collect.AppendDocument(res.Context, docText)
	emit(StepSynthesize, CategorySynthesis, fmt.Sprintf("Summarizing %d sections", len(sections)), nil)
	return p.deps.Synthesizer.SummarizeSections(ctx, sections, company), res.Sources, nil
}

func (p *Pipeline) runCombined(ctx context.Context, req types.ReportRequest, company synth.CompanyContext, docText string, emit func(string, string, string, any)) (types.SectionContent, []types.SearchResult, error) {
	q := p.deps.Builder.Combined(req)
	emit(StepQuery, CategoryResearch, "Built combined query", q)

	res, err := p.deps.Collector.CollectCombined(ctx, q)
	if err != nil {
		return nil, nil, &Error{Kind: KindInternal, Message: "collection interrupted", Cause: err}
	}
	emit(StepCollect, CategoryResearch, fmt.Sprintf("Collected %d sources", len(res.Sources)), res.Sources)

	if len(collect.Qualifying(res.Sources)) == 0 && docText == "" {
		return nil, nil, &Error{Kind: KindNoQualifyingSources, Message: "no results from preferred domains"}
	}

	sourceContext := res.Context
	if docText != "" {
		sourceContext = strings.TrimSpace(sourceContext + "\n---\nUPLOADED DOCUMENT:\n" + docText)
	}

	labels := p.deps.Builder.Labels()
	emit(StepSynthesize, CategorySynthesis, fmt.Sprintf("Writing %d sections in one pass", len(labels)), nil)
	return p.deps.Synthesizer.SummarizeCombined(ctx, labels, sourceContext, company), res.Sources, nil
}

func (p *Pipeline) validateRequest(req types.ReportRequest) error {
	err := p.validate.Struct(req)
	if err == nil {
		return nil
	}

	var missing []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
	}
	return &Error{
		Kind:    KindMissingInput,
		Message: "Please enter both company name and industry.",
		Cause:   fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
	}
}

// ExportErr returns a KindExportFailure error when the report's PDF could not
// be rendered, nil otherwise.
func ExportErr(report *types.Report) error {
	if report == nil || report.ExportError == "" {
		return nil
	}
	return &Error{Kind: KindExportFailure, Message: report.ExportError}
}
