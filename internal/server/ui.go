package server

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"
	"net/http"

	"github.com/jonathan/company-brief/internal/pipeline"
	"github.com/jonathan/company-brief/internal/types"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData feeds templates/index.html.
type pageData struct {
	Company  string
	Industry string
	Region   string
	Warning  string
	Error    string
	Report   *types.Report
	PDFLink  template.URL
}

// handleIndex serves the empty form.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{})
}

// handleIndexSubmit runs the pipeline for a form submission and re-renders
// the page with the report, a warning or an error.
func (s *Server) handleIndexSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseReportRequest(w, r)
	data := pageData{Company: req.Company, Industry: req.Industry, Region: req.Region}
	if err != nil {
		data.Error = errorBody(err).Message
		s.renderPage(w, HTTPStatus(err), data)
		return
	}

	report, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.requestLog(r).WithError(err).Warn("form report failed")
		var pe *pipeline.Error
		switch {
		case errors.As(err, &pe) && pe.Kind == pipeline.KindMissingInput:
			data.Warning = pe.UserMessage()
		default:
			data.Error = errorBody(err).Message
		}
		s.renderPage(w, HTTPStatus(err), data)
		return
	}

	data.Report = report
	if len(report.PDF) > 0 {
		// PDF bytes come from our renderer, so the data URI is trusted.
		data.PDFLink = template.URL("data:application/pdf;base64," + base64.StdEncoding.EncodeToString(report.PDF))
	}
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.log.WithError(err).Error("failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
