// Package chi exposes the retrieval engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/preload"
	"github.com/lakshaychetal/astrologyfinalrk/internal/usecase/retrieval"
)

// Error codes returned in the JSON error envelope.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeCorpusUnavailable = "corpus_unavailable"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

// retriever is the retrieval surface the server consumes (ISP).
type retriever interface {
	Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// preloader is the cache warmup surface the server consumes.
type preloader interface {
	Preload(factors map[string]string) int
	Status(ctx context.Context, factors map[string]string) preload.Coverage
}

// pinger reports backend liveness.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server handles the HTTP API.
type Server struct {
	retrieval retriever
	preload   preloader
	db        pinger
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(r retriever, p preloader, db pinger, logger *zap.Logger) *Server {
	return &Server{retrieval: r, preload: p, db: db, logger: logger}
}

// Routes registers the API routes on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/retrieve", s.handleRetrieve)
	r.Post("/v1/preload", s.handlePreload)
	r.Post("/v1/preload/status", s.handlePreloadStatus)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type retrieveRequest struct {
	Question     string            `json:"question"`
	Intent       string            `json:"intent"`
	ChartFactors map[string]string `json:"chart_factors"`
	TopK         int               `json:"top_k"`
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}

	result, err := s.retrieval.Retrieve(r.Context(), retrieval.Request{
		Question:     req.Question,
		Intent:       req.Intent,
		ChartFactors: req.ChartFactors,
		TopK:         req.TopK,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type preloadRequest struct {
	ChartFactors map[string]string `json:"chart_factors"`
}

type preloadResponse struct {
	Submitted int `json:"submitted"`
}

func (s *Server) handlePreload(w http.ResponseWriter, r *http.Request) {
	var req preloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.ChartFactors) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "chart_factors is required")
		return
	}

	submitted := s.preload.Preload(req.ChartFactors)
	writeJSON(w, http.StatusAccepted, preloadResponse{Submitted: submitted})
}

func (s *Server) handlePreloadStatus(w http.ResponseWriter, r *http.Request) {
	var req preloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.preload.Status(r.Context(), req.ChartFactors))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	checks := map[string]string{}
	if err := s.db.Ping(r.Context()); err != nil {
		checks["redis"] = "down"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["redis"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCorpusUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeCorpusUnavailable, domain.ErrCorpusUnavailable.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeEmbeddingProvider, domain.ErrEmbeddingProviderError.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, codeInternalError, "retrieval timed out")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
