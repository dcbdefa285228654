package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/domain"
	agentuc "github.com/lumenlearn/lumen/internal/usecase/agent"
	healthuc "github.com/lumenlearn/lumen/internal/usecase/health"
	ingestuc "github.com/lumenlearn/lumen/internal/usecase/ingest"
)

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeRateLimited      = "rate_limited"
	codeRetrievalDown    = "retrieval_unavailable"
	codeProviderError    = "llm_provider_error"
	codeInternalError    = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the orchestration engine over HTTP.
type Server struct {
	agent         *agentuc.Orchestrator
	ingest        *ingestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	agent *agentuc.Orchestrator,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		agent:  agent,
		ingest: ingest,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrRetrievalUnavailable, http.StatusBadGateway, codeRetrievalDown),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrInvalidArguments, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Mount attaches all routes to the router.
func (s *Server) Mount(r chi.Router) {
	r.Post("/v1/agent/sessions", s.RunSession)
	r.Post("/v1/documents", s.IngestDocument)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type runSessionRequest struct {
	LearnerID   string               `json:"learner_id"`
	Utterance   string               `json:"utterance"`
	Origin      string               `json:"origin,omitempty"`
	Quiz        *agentuc.QuizContext `json:"quiz,omitempty"`
	DurationSec int                  `json:"duration_sec,omitempty"`
}

// RunSession handles POST /v1/agent/sessions.
func (s *Server) RunSession(w http.ResponseWriter, r *http.Request) {
	var req runSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.LearnerID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "learner_id is required")
		return
	}
	if req.Utterance == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "utterance is required")
		return
	}
	if req.Quiz != nil && req.Quiz.ExpectedAnswer == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "quiz.expected_answer is required")
		return
	}

	origin := req.Origin
	if origin == "" {
		origin = r.RemoteAddr
	}

	result := s.agent.Run(r.Context(), agentuc.RunRequest{
		LearnerID:   req.LearnerID,
		Origin:      origin,
		Utterance:   req.Utterance,
		Quiz:        req.Quiz,
		DurationSec: req.DurationSec,
	})

	writeJSON(w, http.StatusOK, result)
}

type ingestRequest struct {
	ID        string            `json:"id,omitempty"`
	SourceURI string            `json:"source_uri,omitempty"`
	Text      string            `json:"text"`
	Tags      map[string]string `json:"tags,omitempty"`
}

type ingestResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
}

// IngestDocument handles POST /v1/documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "text is required")
		return
	}

	id, chunks, err := s.ingest.Ingest(r.Context(), domain.Document{
		ID:        req.ID,
		SourceURI: req.SourceURI,
		Text:      req.Text,
		Tags:      req.Tags,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{DocumentID: id, Chunks: chunks})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRateLimited,
		domain.ErrRetrievalUnavailable,
		domain.ErrCompletionProviderError,
		domain.ErrInvalidArguments,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
