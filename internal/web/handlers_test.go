package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"Unbewohnte/BiasLens/internal/analysis"
	"Unbewohnte/BiasLens/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

type fakeService struct {
	analyzeResult *analysis.Result
	analyzeErr    error
	lastRequest   service.Request

	historyRecords []analysis.Record
	historyErr     error
	lastLimit      int
	lastSentiment  string

	record    *analysis.Record
	recordErr error
}

func (f *fakeService) Analyze(ctx context.Context, req service.Request) (*analysis.Result, error) {
	f.lastRequest = req
	return f.analyzeResult, f.analyzeErr
}

func (f *fakeService) ListHistory(limit int, sentimentFilter string) ([]analysis.Record, error) {
	f.lastLimit = limit
	f.lastSentiment = sentimentFilter
	return f.historyRecords, f.historyErr
}

func (f *fakeService) GetByID(id int64) (*analysis.Record, error) {
	return f.record, f.recordErr
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		FullText:       "the full article text",
		Summary:        "A concise *summary* of the article.",
		SentimentLabel: "NEGATIVE",
		SentimentScore: 0.82,
		BiasScore:      85,
		BiasLabel:      "likely negatively biased (anti)",
		SourceType:     analysis.SourceURL,
		SourceInput:    "https://example.com/article",
		Language:       "eng",
		TextLength:     1200,
		RecordID:       7,
	}
}

func sampleRecord() *analysis.Record {
	return &analysis.Record{
		ID:             7,
		CreatedAt:      "2026-08-30T10:00:00Z",
		SourceType:     analysis.SourceURL,
		SourceInput:    "https://example.com/article",
		Summary:        "A concise summary.",
		SentimentLabel: "NEGATIVE",
		SentimentScore: 0.82,
		BiasScore:      85,
		BiasLabel:      "likely negatively biased (anti)",
	}
}

func newTestServer(t *testing.T, svc Service) *Server {
	t.Helper()
	srv, err := NewServer(svc, 0, "")
	require.NoError(t, err)
	return srv
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "input_type")
}

func TestAnalyzeFormSuccess(t *testing.T) {
	svc := &fakeService{analyzeResult: sampleResult()}
	srv := newTestServer(t, svc)

	form := url.Values{
		"input_type": {"url"},
		"url":        {"https://example.com/article"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "85/100")
	assert.Contains(t, rec.Body.String(), "<em>summary</em>")
	assert.Equal(t, analysis.SourceURL, svc.lastRequest.SourceType)
	assert.Equal(t, "https://example.com/article", svc.lastRequest.SourceInput)
}

func TestAnalyzeFormValidationError(t *testing.T) {
	svc := &fakeService{analyzeErr: &service.ValidationError{Reason: "text too short"}}
	srv := newTestServer(t, svc)

	form := url.Values{
		"input_type": {"text"},
		"raw_text":   {"tiny"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "text too short")
	assert.Equal(t, "tiny", svc.lastRequest.SourceInput)
}

func TestHistoryPage(t *testing.T) {
	svc := &fakeService{historyRecords: []analysis.Record{*sampleRecord()}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/history?sentiment=NEGATIVE", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://example.com/article")
	assert.Equal(t, service.HistoryWindow, svc.lastLimit)
	assert.Equal(t, "NEGATIVE", svc.lastSentiment)
}

func TestAnalysisPage(t *testing.T) {
	svc := &fakeService{record: sampleRecord()}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/analysis/7", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analysis #7")
}

func TestAnalysisPageNotFound(t *testing.T) {
	svc := &fakeService{recordErr: service.ErrNotFound}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/analysis/404", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisPageRejectsNonNumericID(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/analysis/abc", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIAnalyze(t *testing.T) {
	svc := &fakeService{analyzeResult: sampleResult()}
	srv := newTestServer(t, svc)

	body := `{"input_type": "url", "url": "https://example.com/article"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string          `json:"status"`
		Result analysis.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(85), resp.Result.BiasScore)
	assert.Equal(t, int64(7), resp.Result.RecordID)
}

func TestAPIAnalyzeDefaultsToURL(t *testing.T) {
	svc := &fakeService{analyzeResult: sampleResult()}
	srv := newTestServer(t, svc)

	body := `{"url": "https://example.com/article"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analysis.SourceURL, svc.lastRequest.SourceType)
}

func TestAPIAnalyzeValidationError(t *testing.T) {
	svc := &fakeService{analyzeErr: &service.ValidationError{Reason: "please provide a URL"}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"input_type":"url"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "please provide a URL")
}

func TestAPIAnalyzeUpstreamError(t *testing.T) {
	svc := &fakeService{analyzeErr: &service.UpstreamError{
		Op:  "summarize",
		Err: errors.New("model not loaded"),
	}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"input_type":"text","raw_text":"x"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// internal detail must not leak to the client
	assert.NotContains(t, rec.Body.String(), "model not loaded")
}

func TestAPIAnalyzeMalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIHistory(t *testing.T) {
	svc := &fakeService{historyRecords: []analysis.Record{*sampleRecord()}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=5&sentiment=negative", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, svc.lastLimit)
	assert.Equal(t, "negative", svc.lastSentiment)

	var resp struct {
		Status string            `json:"status"`
		Items  []analysis.Record `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(7), resp.Items[0].ID)
}

func TestAPIHistoryDefaultsAndClamps(t *testing.T) {
	svc := &fakeService{}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, svc.lastLimit)

	req = httptest.NewRequest(http.MethodGet, "/api/history?limit=9999", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.HistoryWindow, svc.lastLimit)

	// empty result encodes as [], not null
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestAPIHistoryBadLimit(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=zero", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadXLSX(t *testing.T) {
	svc := &fakeService{historyRecords: []analysis.Record{*sampleRecord()}}
	srv := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/download/xlsx", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	file, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, file.Sheets)
}

func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("plain **bold** text")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>bold</strong>")
}
