// Package http serves the figaro chart pipeline over HTTP. The adapter
// exposes dataset upload, chart generation, question answering, prompt
// enhancement, and session history endpoints, and maps pipeline errors
// to JSON error responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/figaro-dev/figaro/pkg/api"
	"github.com/figaro-dev/figaro/pkg/dataset"
	"github.com/figaro-dev/figaro/pkg/observability"
	"github.com/figaro-dev/figaro/pkg/pipeline"
	"github.com/figaro-dev/figaro/pkg/qa"
	"github.com/figaro-dev/figaro/pkg/session"
	"github.com/figaro-dev/figaro/pkg/transport"
)

// Adapter serves the chart API over HTTP. It routes requests to the
// pipeline, the question answerer, and the session store, and serializes
// figures, answers, and structured errors.
type Adapter struct {
	pipeline *pipeline.Pipeline
	answerer *qa.Answerer
	sessions session.Store
	datasets *Registry
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout int // seconds
	RegistrySize    int
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxBodySize:     10 << 20, // 10 MB
		ShutdownTimeout: 30,
		RegistrySize:    1000,
	}
}

// NewAdapter creates an HTTP adapter. The session store is optional;
// when nil, session endpoints return an error indicating the operation
// is not available.
func NewAdapter(p *pipeline.Pipeline, answerer *qa.Answerer, sessions session.Store, cfg Config) *Adapter {
	a := &Adapter{
		pipeline: p,
		answerer: answerer,
		sessions: sessions,
		datasets: NewRegistry(cfg.RegistrySize),
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /v1/datasets", a.handleUploadDataset)
	a.mux.HandleFunc("GET /v1/datasets/{id}", a.handleGetDataset)
	a.mux.HandleFunc("POST /v1/charts", a.handleCreateChart)
	a.mux.HandleFunc("POST /v1/answers", a.handleCreateAnswer)
	a.mux.HandleFunc("POST /v1/prompts/enhance", a.handleEnhancePrompt)
	a.mux.HandleFunc("GET /v1/sessions/{id}/history", a.handleListHistory)
	a.mux.HandleFunc("POST /v1/sessions/{id}/feedback", a.handleAddFeedback)
	a.mux.HandleFunc("GET /v1/sessions/{id}/feedback", a.handleListFeedback)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	a.mux.HandleFunc("GET /readyz", a.handleHealth)

	return a
}

// Handler returns the http.Handler for this adapter, wrapped with request
// metrics. Use this to integrate with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return observability.MetricsMiddleware(a.mux)
}

// Datasets returns the adapter's dataset registry, allowing callers to
// preload datasets at startup.
func (a *Adapter) Datasets() *Registry {
	return a.datasets
}

// uploadDatasetResponse describes a stored dataset.
type uploadDatasetResponse struct {
	ID      string   `json:"id"`
	Columns []string `json:"columns"`
	NumRows int      `json:"num_rows"`
}

// createChartRequest is the body of POST /v1/charts.
type createChartRequest struct {
	DatasetID string `json:"dataset_id"`
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// createChartResponse carries the generated figure.
type createChartResponse struct {
	Figure *api.Figure `json:"figure"`
}

// createAnswerRequest is the body of POST /v1/answers.
type createAnswerRequest struct {
	Question  string `json:"question"`
	TableName string `json:"table_name,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// createAnswerResponse carries the model's answer text.
type createAnswerResponse struct {
	Answer string `json:"answer"`
}

// enhancePromptRequest is the body of POST /v1/prompts/enhance.
type enhancePromptRequest struct {
	DatasetID string `json:"dataset_id"`
	Query     string `json:"query"`
}

// enhancePromptResponse carries the rewritten prompt.
type enhancePromptResponse struct {
	Prompt string `json:"prompt"`
}

// addFeedbackRequest is the body of POST /v1/sessions/{id}/feedback.
type addFeedbackRequest struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

// handleUploadDataset handles POST /v1/datasets. The request body is raw
// CSV with a header row.
func (a *Adapter) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "text/csv") {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be text/csv"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	ds, err := dataset.ReadCSV(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteChartError(w, api.NewInvalidRequestError("body", "invalid CSV: "+err.Error()))
		return
	}

	id := a.datasets.Put(ds)
	writeJSON(w, http.StatusCreated, uploadDatasetResponse{
		ID:      id,
		Columns: ds.Columns(),
		NumRows: ds.NumRows(),
	})
}

// handleGetDataset handles GET /v1/datasets/{id}.
func (a *Adapter) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ds, ok := a.datasets.Get(id)
	if !ok {
		transport.WriteChartError(w, api.NewNotFoundError("dataset "+id+" not found"))
		return
	}
	writeJSON(w, http.StatusOK, uploadDatasetResponse{
		ID:      id,
		Columns: ds.Columns(),
		NumRows: ds.NumRows(),
	})
}

// handleCreateChart handles POST /v1/charts.
func (a *Adapter) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var req createChartRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if err := api.ValidateQuery(req.Query); err != nil {
		a.writeError(w, err)
		return
	}

	ds, ok := a.datasets.Get(req.DatasetID)
	if !ok {
		transport.WriteChartError(w, api.NewNotFoundError("dataset "+req.DatasetID+" not found"))
		return
	}

	fig, err := a.pipeline.GenerateChart(r.Context(), req.Query, ds)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.recordHistory(r, req.SessionID, session.KindChart, req.Query)
	writeJSON(w, http.StatusOK, createChartResponse{Figure: fig})
}

// handleCreateAnswer handles POST /v1/answers.
func (a *Adapter) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	var req createAnswerRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if err := api.ValidateQuery(req.Question); err != nil {
		a.writeError(w, err)
		return
	}

	answer, err := a.answerer.Answer(r.Context(), req.Question, req.TableName)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.recordHistory(r, req.SessionID, session.KindQA, req.Question)
	writeJSON(w, http.StatusOK, createAnswerResponse{Answer: answer})
}

// handleEnhancePrompt handles POST /v1/prompts/enhance.
func (a *Adapter) handleEnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req enhancePromptRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if err := api.ValidateQuery(req.Query); err != nil {
		a.writeError(w, err)
		return
	}

	ds, ok := a.datasets.Get(req.DatasetID)
	if !ok {
		transport.WriteChartError(w, api.NewNotFoundError("dataset "+req.DatasetID+" not found"))
		return
	}

	prompt, err := a.pipeline.EnhancePrompt(r.Context(), req.Query, ds)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enhancePromptResponse{Prompt: prompt})
}

// handleListHistory handles GET /v1/sessions/{id}/history.
func (a *Adapter) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		a.writeSessionsUnavailable(w)
		return
	}

	entries, err := a.sessions.ListHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []session.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// handleAddFeedback handles POST /v1/sessions/{id}/feedback.
func (a *Adapter) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		a.writeSessionsUnavailable(w)
		return
	}

	var req addFeedbackRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	kind := session.PromptKind(req.Kind)
	if kind != session.KindQA && kind != session.KindChart {
		transport.WriteChartError(w, api.NewInvalidRequestError("kind", "kind must be \"qa\" or \"chart\""))
		return
	}
	if req.Value == "" {
		transport.WriteChartError(w, api.NewInvalidRequestError("value", "value must not be empty"))
		return
	}

	entry := session.NewFeedbackEntry(kind, req.Text, req.Value)
	if err := a.sessions.AddFeedback(r.Context(), r.PathValue("id"), entry); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleListFeedback handles GET /v1/sessions/{id}/feedback.
func (a *Adapter) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		a.writeSessionsUnavailable(w)
		return
	}

	entries, err := a.sessions.ListFeedback(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []session.FeedbackEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": entries})
}

// handleHealth handles GET /healthz and GET /readyz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON validates the Content-Type, enforces the body size limit,
// and decodes the request body. On failure it writes an error response
// and returns false.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteChartError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// recordHistory appends a prompt to the session history when a session ID
// was supplied and a store is configured. History failures do not fail the
// request.
func (a *Adapter) recordHistory(r *http.Request, sessionID string, kind session.PromptKind, text string) {
	if a.sessions == nil || sessionID == "" {
		return
	}
	_ = a.sessions.AppendHistory(r.Context(), sessionID, session.NewHistoryEntry(kind, text))
}

// writeError maps pipeline and store errors to JSON error responses.
func (a *Adapter) writeError(w http.ResponseWriter, err error) {
	var chartErr *api.ChartError
	if errors.As(err, &chartErr) {
		transport.WriteChartError(w, chartErr)
		return
	}
	if errors.Is(err, session.ErrNotFound) {
		transport.WriteChartError(w, api.NewNotFoundError(err.Error()))
		return
	}
	transport.WriteChartError(w, api.NewInternalError(err.Error()))
}

func (a *Adapter) writeSessionsUnavailable(w http.ResponseWriter) {
	transport.WriteErrorResponse(w,
		api.NewInvalidRequestError("", "session storage is not available (no store configured)"),
		http.StatusNotImplemented,
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
