package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/company-brief/internal/pipeline"
	"github.com/jonathan/company-brief/internal/server/middleware"
	"github.com/jonathan/company-brief/internal/types"
)

// ReportRequest is the JSON body accepted by the report endpoints.
// Multipart forms use the same field names with the file under "document".
type ReportRequest struct {
	Company        string `json:"company"`
	Industry       string `json:"industry"`
	Region         string `json:"region,omitempty"`
	DocumentBase64 string `json:"document_base64,omitempty"`
	DocumentName   string `json:"document_name,omitempty"`
}

// ReportResponse is the JSON form of a finished report.
type ReportResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Sections    types.SectionContent `json:"sections"`
	Sources     []types.SearchResult `json:"sources"`
	Text        string               `json:"text"`
	PDFName     string               `json:"pdf_name,omitempty"`
	PDFBase64   string               `json:"pdf_base64,omitempty"`
	ExportError string               `json:"export_error,omitempty"`
}

func newReportResponse(report *types.Report) ReportResponse {
	resp := ReportResponse{
		ID:          report.ID,
		Title:       report.Title,
		Sections:    report.Sections,
		Sources:     report.Sources,
		Text:        report.Text(),
		PDFName:     report.PDFName,
		ExportError: report.ExportError,
	}
	if len(report.PDF) > 0 {
		resp.PDFBase64 = base64.StdEncoding.EncodeToString(report.PDF)
	}
	return resp
}

// parseReportRequest reads a JSON, multipart or urlencoded report request.
func (s *Server) parseReportRequest(w http.ResponseWriter, r *http.Request) (types.ReportRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return s.parseForm(r)
	default:
		var body ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return types.ReportRequest{}, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
		}
		req := types.ReportRequest{
			Company:      body.Company,
			Industry:     body.Industry,
			Region:       body.Region,
			DocumentName: body.DocumentName,
		}
		if body.DocumentBase64 != "" {
			doc, err := base64.StdEncoding.DecodeString(body.DocumentBase64)
			if err != nil {
				return types.ReportRequest{}, &ErrValidation{Field: "document_base64", Message: "not valid base64"}
			}
			req.Document = doc
		}
		return req, nil
	}
}

func (s *Server) parseForm(r *http.Request) (types.ReportRequest, error) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return types.ReportRequest{}, &ErrValidation{Field: "document", Message: err.Error()}
	}

	req := types.ReportRequest{
		Company:  r.FormValue("company"),
		Industry: r.FormValue("industry"),
		Region:   r.FormValue("region"),
	}

	file, header, err := r.FormFile("document")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return req, nil
	case err != nil:
		return types.ReportRequest{}, &ErrValidation{Field: "document", Message: err.Error()}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return types.ReportRequest{}, &ErrValidation{Field: "document", Message: "failed to read upload"}
	}
	req.Document = data
	req.DocumentName = header.Filename
	return req, nil
}

func (s *Server) requestLog(r *http.Request) logrus.FieldLogger {
	return s.log.WithField("request_id", middleware.GetRequestID(r))
}

// handleCreateReport runs the pipeline and returns the report as JSON.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseReportRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	report, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.requestLog(r).WithError(err).Warn("report failed")
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, newReportResponse(report))
}

// handleReportPDF runs the pipeline and returns the PDF as an attachment.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseReportRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	report, err := s.runner.Run(r.Context(), req)
	if err == nil {
		err = pipeline.ExportErr(report)
	}
	if err != nil {
		s.requestLog(r).WithError(err).Warn("report pdf failed")
		s.errorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.PDFName}))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(report.PDF)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.PDF); err != nil {
		s.requestLog(r).WithError(err).Warn("failed to write pdf")
	}
}

// handleReportStream runs the pipeline and streams progress via SSE,
// finishing with a complete or error event.
func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseReportRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	log := s.requestLog(r)
	report, err := s.runner.RunWithProgress(r.Context(), req, func(event pipeline.ProgressEvent) {
		if event.Step == pipeline.StepComplete {
			return
		}
		if err := sse.WriteEvent(eventStep, event); err != nil {
			log.WithError(err).Debug("failed to write progress event")
		}
	})
	if err != nil {
		log.WithError(err).Warn("streamed report failed")
		sse.WriteError(errorBody(err))
		return
	}

	sse.WriteComplete(newReportResponse(report))
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Warn("failed to encode JSON response")
	}
}

// errorResponse writes err as a JSON error with its mapped status.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		err = &ErrValidation{Field: "document", Message: fmt.Sprintf("upload exceeds %d bytes", maxBytes.Limit)}
	}
	s.jsonResponse(w, HTTPStatus(err), errorBody(err))
}
