package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BTBurke/westgard/internal/testutil"
	"github.com/BTBurke/westgard/pkg/ingest"
	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) ReportError(err error) {
	m.Called(err)
}

func workbook(t *testing.T) []byte {
	return testutil.Workbook(t, map[string][][]interface{}{
		ingest.SheetData: {
			{"Date", "Glucose", "Sodium"},
			{"2024-01-01", 100, 140},
			{"2024-01-02", 101, 141},
			{"2024-01-03", 99, 139},
			{"2024-01-04", 100, 140},
			{"2024-01-05", 112, 140},
		},
		ingest.SheetHistorical:    {{"Glucose", "Sodium"}, {100, 140}, {2, 1}},
		ingest.SheetSpecification: {{"Glucose", "Sodium"}, {100, 140}, {3, 0}},
	})
}

func upload(t *testing.T, file []byte, fields map[string][]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if file != nil {
		fw, err := mw.CreateFormFile("file", "qc.xlsx")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/charts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestServer(t *testing.T, sheets http.HandlerFunc) (*Server, *mockReporter) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	var opts []ingest.SheetsOption
	opts = append(opts, ingest.WithSheetsLogger(logger), ingest.WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1)
	}))
	if sheets != nil {
		upstream := httptest.NewServer(sheets)
		t.Cleanup(upstream.Close)
		opts = append(opts, ingest.WithBaseURL(upstream.URL))
	}
	client, err := ingest.NewSheetsClient(opts...)
	require.NoError(t, err)

	rep := &mockReporter{}
	return New(Config{Loader: ingest.NewLoader(client, logger), Reporter: rep, Logger: logger}), rep
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var h Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 0, h.Analyses)
	assert.Len(t, h.Hourly, 1)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestHealthCountsAnalyses(t *testing.T) {
	s, _ := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, serve(s, upload(t, workbook(t), map[string][]string{"limits": {"historical"}})).Code)
	require.Equal(t, http.StatusOK, serve(s, upload(t, workbook(t), map[string][]string{"parameter": {"Sodium"}})).Code)
	require.Equal(t, http.StatusBadRequest, serve(s, upload(t, nil, nil)).Code)

	var h Health
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, 2, h.Analyses)
	assert.Equal(t, 1, h.Flagged)
	assert.Equal(t, 2, h.Hourly[len(h.Hourly)-1].Value)
}

func TestCharts(t *testing.T) {
	s, rep := newTestServer(t, nil)
	rec := serve(s, upload(t, workbook(t), map[string][]string{
		"parameter": {"Glucose", "Sodium"},
		"limits":    {"historical"},
		"rule":      {"1-3s", "R-4s"},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RequestID string `json:"request_id"`
		Rows      int    `json:"rows"`
		Results   []struct {
			Parameter  string           `json:"parameter"`
			Violations map[string][]int `json:"violations"`
			Chart      struct {
				Title  string `json:"title"`
				Traces []struct {
					Name string `json:"name"`
				} `json:"traces"`
			} `json:"chart"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), resp.RequestID)
	assert.Equal(t, 5, resp.Rows)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Glucose", resp.Results[0].Parameter)
	assert.Equal(t, []int{4}, resp.Results[0].Violations["1-3s"])
	assert.Equal(t, []int{3, 4}, resp.Results[0].Violations["R-4s"])
	assert.Len(t, resp.Results[0].Violations, 2)
	assert.Len(t, resp.Results[0].Chart.Traces, 3)
	assert.Equal(t, "Sodium", resp.Results[1].Parameter)
	rep.AssertNotCalled(t, "ReportError", mock.Anything)
}

func TestChartsErrors(t *testing.T) {
	tt := []struct {
		name   string
		file   []byte
		fields map[string][]string
		status int
	}{
		{name: "no file", status: http.StatusBadRequest},
		{name: "unknown rule", file: []byte("x"), fields: map[string][]string{"rule": {"3-1s"}}, status: http.StatusBadRequest},
		{name: "unknown limits", file: []byte("x"), fields: map[string][]string{"limits": {"median"}}, status: http.StatusBadRequest},
		{name: "not a workbook", file: []byte("Date,Glucose\n"), status: http.StatusUnprocessableEntity},
		{name: "unknown parameter", fields: map[string][]string{"parameter": {"Potassium"}}, status: http.StatusNotFound},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, rep := newTestServer(t, nil)
			file := tc.file
			if file == nil && tc.status != http.StatusBadRequest {
				file = workbook(t)
			}
			rec := serve(s, upload(t, file, tc.fields))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())

			var e ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.NotEmpty(t, e.Error)
			assert.Equal(t, rec.Header().Get(RequestIDHeader), e.RequestID)
			rep.AssertNotCalled(t, "ReportError", mock.Anything)
		})
	}
}

func TestChartsWarning(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := serve(s, upload(t, workbook(t), map[string][]string{"parameter": {"Sodium"}, "limits": {"specification"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "standard deviation is zero or missing")
	assert.NotContains(t, rec.Body.String(), `"chart"`)
}

var sheetCSV = map[string]string{
	ingest.SheetData:          "\"Date\",\"Glucose\"\n\"d1\",\"100\"\n\"d2\",\"107\"\n",
	ingest.SheetHistorical:    "\"Glucose\"\n\"100\"\n\"2\"\n",
	ingest.SheetSpecification: "\"Glucose\"\n\"100\"\n\"3\"\n",
}

func sheetsRequest(t *testing.T, body SheetRequest) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/sheets", bytes.NewReader(b))
}

func TestSheets(t *testing.T) {
	s, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sheetCSV[r.URL.Query().Get("sheet")]))
	})
	rec := serve(s, sheetsRequest(t, SheetRequest{
		URL:    "https://docs.google.com/spreadsheets/d/abc123/edit",
		Limits: "historical",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []int{1}, resp.Results[0].Violations.Indices("1-3s"))
}

func TestSheetsErrors(t *testing.T) {
	tt := []struct {
		name     string
		upstream int
		body     string
		status   int
		reported bool
	}{
		{name: "invalid json", body: "{", status: http.StatusBadRequest},
		{name: "invalid url", body: `{"url":"https://example.com/sheet"}`, status: http.StatusBadRequest},
		{name: "unknown rule", body: `{"url":"https://docs.google.com/spreadsheets/d/abc","rules":["8-x"]}`, status: http.StatusBadRequest},
		{name: "not public", upstream: http.StatusForbidden, body: `{"url":"https://docs.google.com/spreadsheets/d/abc"}`, status: http.StatusBadRequest},
		{name: "upstream down", upstream: http.StatusBadGateway, body: `{"url":"https://docs.google.com/spreadsheets/d/abc"}`, status: http.StatusBadGateway, reported: true},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, rep := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.upstream)
			})
			if tc.reported {
				rep.On("ReportError", mock.Anything).Return()
			}
			req := httptest.NewRequest(http.MethodPost, "/api/sheets", strings.NewReader(tc.body))
			rec := serve(s, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.reported {
				rep.AssertCalled(t, "ReportError", mock.Anything)
			} else {
				rep.AssertNotCalled(t, "ReportError", mock.Anything)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	s, rep := newTestServer(t, nil)
	rep.On("ReportError", mock.Anything).Return()

	h := s.requestID(s.recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	rep.AssertNumberOfCalls(t, "ReportError", 1)
}
