package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/BTBurke/westgard"
	"github.com/BTBurke/westgard/pkg/ingest"
	"github.com/BTBurke/westgard/pkg/metric"
	"github.com/BTBurke/westgard/pkg/rules"
	"github.com/BTBurke/westgard/pkg/stat"
)

// SheetRequest is the body of POST /api/sheets
type SheetRequest struct {
	URL        string   `json:"url"`
	Parameters []string `json:"parameters"`
	Limits     string   `json:"limits"`
	Rules      []string `json:"rules"`
	Refresh    bool     `json:"refresh"`
}

// Response is the body of a successful analysis
type Response struct {
	RequestID  string            `json:"request_id"`
	DateColumn string            `json:"date_column"`
	Rows       int               `json:"rows"`
	Results    []westgard.Result `json:"results"`
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

var errBadRequest = errors.New("bad request")

// Health is the body of GET /healthz
type Health struct {
	Status   string          `json:"status"`
	Analyses int             `json:"analyses"`
	Flagged  int             `json:"flagged"`
	Hourly   []metric.Window `json:"hourly"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hourly := append(s.recent.History(), s.recent.Current())
	writeJSON(w, http.StatusOK, Health{
		Status:   "ok",
		Analyses: s.analyses.Value(),
		Flagged:  s.flagged.Value(),
		Hourly:   hourly,
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.fail(w, r, fmt.Errorf("%w: could not read upload: %v", errBadRequest, err))
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: a workbook must be uploaded in the form field 'file'", errBadRequest))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: could not read upload: %v", errBadRequest, err))
		return
	}

	limits := ""
	if v := r.MultipartForm.Value["limits"]; len(v) > 0 {
		limits = v[0]
	}
	req, err := request(r.MultipartForm.Value["parameter"], limits, r.MultipartForm.Value["rule"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ds, err := s.loader.Workbook(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.analyze(w, r, ds, req)
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	var body SheetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}
	if _, err := ingest.SheetID(body.URL); err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := request(body.Parameters, body.Limits, body.Rules)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ds, err := s.loader.Sheet(r.Context(), body.URL, body.Refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.analyze(w, r, ds, req)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, ds *ingest.Dataset, req westgard.Request) {
	results, err := westgard.Analyze(r.Context(), ds, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.analyses.Add(1)
	s.recent.Add(1)
	if westgard.Flagged(results) > 0 {
		s.flagged.Add(1)
	}
	writeJSON(w, http.StatusOK, Response{
		RequestID:  RequestID(r.Context()),
		DateColumn: ds.DateColumn,
		Rows:       ds.Rows(),
		Results:    results,
	})
}

// request validates the form or JSON fields of an analysis
func request(parameters []string, limits string, ids []string) (westgard.Request, error) {
	req := westgard.Request{Parameters: parameters, Limits: stat.FromData}
	if limits != "" {
		source, err := stat.ParseSource(limits)
		if err != nil {
			return req, err
		}
		req.Limits = source
	}
	for _, id := range ids {
		rule, err := rules.ParseRule(id)
		if err != nil {
			return req, err
		}
		req.Rules = append(req.Rules, rule)
	}
	return req, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
		s.errors.ReportError(err)
	} else {
		s.logger.Debug("request rejected", "id", RequestID(r.Context()), "status", status, "error", err)
	}
	writeError(w, r, status, err)
}

func statusFor(err error) int {
	var fe *ingest.FetchError
	switch {
	case errors.As(err, &fe):
		if fe.Status >= 400 && fe.Status < 500 {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.Is(err, ingest.ErrUnknownParameter):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, ingest.ErrInvalidSheetURL),
		errors.Is(err, rules.ErrUnknownRule),
		errors.Is(err, stat.ErrUnknownSource):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrUnreadableWorkbook),
		errors.Is(err, ingest.ErrMissingSheets),
		errors.Is(err, ingest.ErrMalformedData),
		errors.Is(err, ingest.ErrMalformedLimits):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, ErrorResponse{RequestID: RequestID(r.Context()), Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
