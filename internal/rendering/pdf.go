package rendering

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/company-brief/internal/types"
)

// PDFOptions controls page layout.
type PDFOptions struct {
	FontFamily   string
	FontSize     float64 // body font size in points
	LineHeight   float64 // body line height in mm
	Margin       float64 // page margin and page-break trigger in mm
	Author       string
	Uncompressed bool
}

// DefaultPDFOptions returns the standard layout.
func DefaultPDFOptions() *PDFOptions {
	return &PDFOptions{
		FontFamily: "Helvetica",
		FontSize:   11,
		LineHeight: 6,
		Margin:     15,
		Author:     "company-brief",
	}
}

// RenderPDF writes doc to w as an A4 PDF: a title block followed by one
// heading and body per section, in order. Every body line becomes its own
// wrapped paragraph and pages break automatically.
func RenderPDF(doc types.ReportDocument, w io.Writer, opts *PDFOptions) error {
	if opts == nil {
		opts = DefaultPDFOptions()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	pdf.SetAutoPageBreak(true, opts.Margin)
	pdf.SetCompression(!opts.Uncompressed)
	pdf.SetTitle(doc.Title, false)
	pdf.SetAuthor(opts.Author, false)
	pdf.SetCreator("company-brief", false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(EscapePDFText(s)) }

	pdf.AddPage()

	pdf.SetFont(opts.FontFamily, "B", opts.FontSize+5)
	pdf.MultiCell(0, opts.LineHeight+2, text(doc.Title), "", "L", false)
	pdf.Ln(opts.LineHeight)

	for _, section := range doc.Sections {
		pdf.SetFont(opts.FontFamily, "B", opts.FontSize+1)
		pdf.MultiCell(0, opts.LineHeight+1, text(section.Label), "", "L", false)
		pdf.Ln(1)

		pdf.SetFont(opts.FontFamily, "", opts.FontSize)
		for _, line := range strings.Split(strings.TrimSpace(section.Text), "\n") {
			line = strings.TrimRight(line, " \t\r")
			if line == "" {
				pdf.Ln(opts.LineHeight / 2)
				continue
			}
			pdf.MultiCell(0, opts.LineHeight, text(line), "", "L", false)
		}
		pdf.Ln(opts.LineHeight / 2)
	}

	if err := pdf.Error(); err != nil {
		return &RenderError{Message: "failed to lay out document", Cause: err}
	}
	if err := pdf.Output(w); err != nil {
		return &RenderError{Message: "failed to write PDF", Cause: err}
	}
	return nil
}

// RenderPDFBytes renders doc into memory.
func RenderPDFBytes(doc types.ReportDocument, opts *PDFOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderPDF(doc, &buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders doc to path. A partially written file is removed on failure.
func WriteFile(doc types.ReportDocument, path string, opts *PDFOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return &RenderError{Message: fmt.Sprintf("failed to create %s", path), Cause: err}
	}

	renderErr := RenderPDF(doc, f, opts)
	closeErr := f.Close()
	if renderErr == nil && closeErr != nil {
		renderErr = &RenderError{Message: fmt.Sprintf("failed to close %s", path), Cause: closeErr}
	}
	if renderErr != nil {
		_ = os.Remove(path)
		return renderErr
	}
	return nil
}

// FileName returns the download name for a company's report,
// "<company> - Intro.pdf", with path separators and control characters removed.
func FileName(company string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':', r == '"', r < 0x20, r == 0x7f:
			return -1
		}
		return r
	}, company)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "Company"
	}
	return name + " - Intro.pdf"
}
