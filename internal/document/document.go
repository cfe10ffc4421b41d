// Package document extracts plain text from an uploaded research document.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/company-brief/internal/fetch"
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with a PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic)
}

// ExtractText returns cleaned document text truncated to budget characters.
// PDFs are read page by page; other uploads are treated as UTF-8 text.
// Any parse failure yields an empty string.
func ExtractText(data []byte, budget int) string {
	text, err := Extract(data)
	if err != nil {
		return ""
	}
	return fetch.Truncate(text, budget)
}

// Extract returns the full cleaned text of a document or the parse error.
func Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if IsPDF(data) {
		return extractPDF(data)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is neither PDF nor UTF-8 text")
	}
	return fetch.CleanText(string(data)), nil
}

func extractPDF(data []byte) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}

	return fetch.CleanText(strings.Join(pages, " ")), nil
}
