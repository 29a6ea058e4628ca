// Package api exposes the chart engine over HTTP.
//
// The API manages chart sessions: a caller creates a chart from a spec,
// pushes rows into its streaming buffer, and pulls the compiled
// renderer-ready configuration. Named specs can be saved to and loaded from
// the configured store.
//
// # Routes
//
//	POST   /v1/charts            create a chart session from a spec
//	GET    /v1/charts/{id}       compiled configuration for the session
//	POST   /v1/charts/{id}/rows  append (or replace) rows
//	DELETE /v1/charts/{id}/rows  clear the buffer
//	DELETE /v1/charts/{id}       destroy the session
//	GET    /v1/specs             list stored spec names
//	GET    /v1/specs/{name}      fetch a stored spec
//	PUT    /v1/specs/{name}      store a spec
//	DELETE /v1/specs/{name}      delete a stored spec
//	GET    /healthz              liveness probe
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/chartflow/chartflow/pkg/engine"
	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Server hosts chart sessions and the spec store over HTTP.
type Server struct {
	store  store.Store
	logger *log.Logger

	mu     sync.RWMutex
	charts map[string]*engine.Chart
}

// NewServer creates an API server. A nil store disables the /v1/specs
// routes' persistence (an in-memory store is used instead).
func NewServer(st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		store:  st,
		logger: logger,
		charts: make(map[string]*engine.Chart),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/charts", s.handleCreateChart)
		r.Get("/charts/{id}", s.handleChartConfig)
		r.Post("/charts/{id}/rows", s.handlePushRows)
		r.Delete("/charts/{id}/rows", s.handleClearRows)
		r.Delete("/charts/{id}", s.handleDeleteChart)

		r.Get("/specs", s.handleListSpecs)
		r.Get("/specs/{name}", s.handleGetSpec)
		r.Put("/specs/{name}", s.handlePutSpec)
		r.Delete("/specs/{name}", s.handleDeleteSpec)
	})

	return r
}

// Close destroys all chart sessions and the store.
func (s *Server) Close() error {
	s.mu.Lock()
	for id, c := range s.charts {
		_ = c.Close()
		delete(s.charts, id)
	}
	s.mu.Unlock()
	return s.store.Close()
}

// =============================================================================
// Chart Session Handlers
// =============================================================================

type createChartRequest struct {
	// Spec is the inline chart spec. Exactly one of Spec or SpecName must
	// be set.
	Spec *spec.Spec `json:"spec,omitempty"`

	// SpecName loads a stored spec instead.
	SpecName string `json:"specName,omitempty"`
}

type createChartResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var req createChartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sp := req.Spec
	if sp == nil {
		if req.SpecName == "" {
			respondError(w, errors.New(errors.ErrCodeInvalidSpec, "spec or specName is required"))
			return
		}
		stored, err := s.store.Get(r.Context(), req.SpecName)
		if err != nil {
			respondError(w, err)
			return
		}
		sp = stored
	}

	chart, err := engine.NewChart(sp, nil, s.logger)
	if err != nil {
		respondError(w, err)
		return
	}
	// Session keys are opaque to clients; the chart's own ID stays internal.
	id := uuid.NewString()

	s.mu.Lock()
	s.charts[id] = chart
	s.mu.Unlock()

	s.logger.Info("chart session created", "id", id, "marks", len(sp.Marks))
	respondJSON(w, http.StatusCreated, createChartResponse{ID: id})
}

func (s *Server) handleChartConfig(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.chart(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, errors.New(errors.ErrCodeChartNotFound, "no chart session %q", chi.URLParam(r, "id")))
		return
	}

	cfg, err := chart.Config()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

type pushRowsRequest struct {
	Rows []any `json:"rows"`

	// Mode overrides the spec's streaming update mode for this push:
	// "append" or "replace". Empty follows the spec.
	Mode string `json:"mode,omitempty"`
}

type pushRowsResponse struct {
	Buffered int `json:"buffered"`
}

func (s *Server) handlePushRows(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.chart(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, errors.New(errors.ErrCodeChartNotFound, "no chart session %q", chi.URLParam(r, "id")))
		return
	}

	var req pushRowsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = chart.Spec().Streaming.UpdateMode()
	}

	var err error
	switch mode {
	case spec.UpdateReplace:
		err = chart.Replace(req.Rows)
	case spec.UpdateAppend:
		err = chart.Append(req.Rows)
	default:
		err = errors.New(errors.ErrCodeInvalidStreaming, "unknown update mode %q", mode)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pushRowsResponse{Buffered: chart.Len()})
}

func (s *Server) handleClearRows(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.chart(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, errors.New(errors.ErrCodeChartNotFound, "no chart session %q", chi.URLParam(r, "id")))
		return
	}
	chart.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	chart, ok := s.charts[id]
	if ok {
		delete(s.charts, id)
	}
	s.mu.Unlock()

	if !ok {
		respondError(w, errors.New(errors.ErrCodeChartNotFound, "no chart session %q", id))
		return
	}
	if err := chart.Close(); err != nil {
		s.logger.Warn("chart close failed", "id", id, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) chart(id string) (*engine.Chart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chart, ok := s.charts[id]
	return chart, ok
}

// =============================================================================
// Spec Store Handlers
// =============================================================================

func (s *Server) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"specs": names})
}

func (s *Server) handleGetSpec(w http.ResponseWriter, r *http.Request) {
	sp, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sp)
}

func (s *Server) handlePutSpec(w http.ResponseWriter, r *http.Request) {
	var sp spec.Spec
	if err := decodeJSON(r, &sp); err != nil {
		respondError(w, err)
		return
	}
	if err := sp.Validate(); err != nil {
		respondError(w, err)
		return
	}
	if err := s.store.Set(r.Context(), chi.URLParam(r, "name"), &sp); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSpec(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// JSON Helpers
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read request body")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse request body")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	respondJSON(w, statusFor(code), errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

// statusFor maps structured error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeSpecNotFound, errors.ErrCodeChartNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidSpec, errors.ErrCodeInvalidTemporalMode,
		errors.ErrCodeInvalidStreaming, errors.ErrCodeInvalidTheme,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidRows,
		errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
