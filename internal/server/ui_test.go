package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/company-brief/internal/pipeline"
)

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIndex_RendersForm(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `name="company"`)
	assert.Contains(t, body, `name="industry"`)
	assert.Contains(t, body, `name="region"`)
	assert.Contains(t, body, `type="file"`)
	assert.Contains(t, body, "Generate Report")
}

func TestIndex_UnknownPath(t *testing.T) {
	h := newTestServer(t, &fakeRunner{}, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndexSubmit_ShowsReport(t *testing.T) {
	h := newTestServer(t, &fakeRunner{report: acmeReport()}, nil)
	w := postForm(h, url.Values{"company": {"Acme"}, "industry": {"Fintech"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Research Report: Acme in the Fintech Industry")
	assert.Contains(t, body, "Business Overview")
	assert.Contains(t, body, "Acme builds payment rails.")
	assert.Contains(t, body, `href="data:application/pdf;base64,`)
	assert.Contains(t, body, "Download Acme - Intro.pdf")
	assert.Contains(t, body, `value="Acme"`)
}

func TestIndexSubmit_MissingInputWarning(t *testing.T) {
	h := newTestServer(t, &fakeRunner{err: &pipeline.Error{
		Kind:    pipeline.KindMissingInput,
		Message: "Please enter both company name and industry.",
	}}, nil)
	w := postForm(h, url.Values{"company": {"Acme"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `class="warning"`)
	assert.Contains(t, w.Body.String(), "Please enter both company name and industry.")
}

func TestIndexSubmit_NoSourcesIsError(t *testing.T) {
	h := newTestServer(t, &fakeRunner{err: &pipeline.Error{Kind: pipeline.KindNoQualifyingSources}}, nil)
	w := postForm(h, url.Values{"company": {"Acme"}, "industry": {"Fintech"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<p class="error">Insufficient quality data found. Try broadening your search.</p>`)
	assert.NotContains(t, body, `class="warning"`)
}

func TestIndexSubmit_ExportErrorKindIsError(t *testing.T) {
	h := newTestServer(t, &fakeRunner{err: &pipeline.Error{Kind: pipeline.KindExportFailure}}, nil)
	w := postForm(h, url.Values{"company": {"Acme"}, "industry": {"Fintech"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<p class="error">The report was generated but the PDF could not be created.</p>`)
	assert.NotContains(t, body, `class="warning"`)
}

func TestIndexSubmit_ExportFailureStillShowsText(t *testing.T) {
	report := acmeReport()
	report.PDF = nil
	report.ExportError = "undefined font"

	h := newTestServer(t, &fakeRunner{report: report}, nil)
	w := postForm(h, url.Values{"company": {"Acme"}, "industry": {"Fintech"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Acme builds payment rails.")
	assert.Contains(t, body, "PDF export failed: undefined font")
	assert.NotContains(t, body, "data:application/pdf")
}

func TestIndexSubmit_EscapesInput(t *testing.T) {
	h := newTestServer(t, &fakeRunner{err: &pipeline.Error{Kind: pipeline.KindNoQualifyingSources}}, nil)
	w := postForm(h, url.Values{"company": {`<script>alert(1)</script>`}, "industry": {"Fintech"}})

	assert.NotContains(t, w.Body.String(), "<script>alert(1)</script>")
}
