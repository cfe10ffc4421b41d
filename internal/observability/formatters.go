// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/company-brief/internal/pipeline"
	"github.com/jonathan/company-brief/internal/synth"
	"github.com/jonathan/company-brief/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintReport writes the report body as the user sees it.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}
	fmt.Fprint(p.out, report.Text())
}

// PrintSources outputs a boxed summary of the sources behind a report.
func (p *Printer) PrintSources(sources []types.SearchResult) {
	if len(sources) == 0 {
		p.printBox("Sources", "No web sources used")
		return
	}

	var sb strings.Builder
	count := min(len(sources), maxItemsToShow)
	for _, s := range sources[:count] {
		sb.WriteString(fmt.Sprintf("• %s\n", s.Domain))
		if s.Title != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", s.Title))
		}
	}
	if len(sources) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(sources)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("Sources (%d)", len(sources)), sb.String())
}

// PrintSummary outputs run metadata: sections written, empty sections,
// generation errors and the PDF outcome.
func (p *Printer) PrintSummary(report *types.Report) {
	if report == nil {
		return
	}

	var empty, failed int
	for _, s := range report.Sections {
		switch {
		case strings.HasPrefix(s.Text, "[Error generating"):
			failed++
		case strings.TrimSpace(s.Text) == synth.NoDataMarker:
			empty++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Report ID: %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("Sections:  %d (%d without data, %d failed)\n", len(report.Sections), empty, failed))
	sb.WriteString(fmt.Sprintf("Sources:   %d\n", len(report.Sources)))
	if report.ExportError != "" {
		sb.WriteString(fmt.Sprintf("PDF:       failed (%s)\n", report.ExportError))
	} else {
		sb.WriteString(fmt.Sprintf("PDF:       %s (%d bytes)\n", report.PDFName, len(report.PDF)))
	}

	p.printBox(report.Title, sb.String())
}

// PrintProgress writes one line per pipeline event.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", event.Step, event.Message)
}
