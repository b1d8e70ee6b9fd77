package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/domain"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	"github.com/kailas-cloud/strindex/internal/logger"
	"github.com/kailas-cloud/strindex/internal/metrics"
	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/strindex/internal/usecase/record"
)

// maxBodyBytes bounds a create request body.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Options configures the router.
type Options struct {
	// APIKeys enables bearer auth when non-empty.
	APIKeys []string
	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler
}

// Server serves the strings API over chi.
type Server struct {
	records       *recorduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(records *recorduc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		records: records,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMissingValue, http.StatusBadRequest, CodeMissingField, "missing 'value' field"),
		sentinelHandler(domain.ErrValueNotString, http.StatusUnprocessableEntity, CodeInvalidType,
			"'value' must be a string"),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, CodeInvalidFilter, ""),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeBadRequest, "invalid request"),
		parseErrorHandler,
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeConflict, "string already exists"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound, "string not found"),
	}
	return s
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler(opts Options) http.Handler {
	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Post("/strings", s.CreateString)
	r.Get("/strings", s.ListStrings)
	r.Get("/strings/filter-by-natural-language", s.FilterByNaturalLanguage)
	r.Get("/strings/{"+paramStringValue+"}", s.GetString)
	r.Delete("/strings/{"+paramStringValue+"}", s.DeleteString)

	return r
}

// CreateString handles POST /strings.
func (s *Server) CreateString(w http.ResponseWriter, r *http.Request) {
	var req CreateStringRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}

	value, err := domrec.ParseValue(req.Value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rec, err := s.records.Create(r.Context(), value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordToAPI(&rec))
}

// GetString handles GET /strings/{string_value}.
func (s *Server) GetString(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.Get(r.Context(), pathValue(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToAPI(&rec))
}

// ListStrings handles GET /strings.
func (s *Server) ListStrings(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.records.List(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Data:           recordsToAPI(res.Records),
		Count:          res.Count,
		FiltersApplied: res.Filters,
	})
}

// FilterByNaturalLanguage handles GET /strings/filter-by-natural-language.
func (s *Server) FilterByNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	phrase, err := bindPhrase(r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.records.ListByPhrase(r.Context(), phrase)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PhraseResponse{
		Data:  recordsToAPI(res.Records),
		Count: res.Count,
		InterpretedQuery: InterpretedQuery{
			Original:      res.Original,
			ParsedFilters: res.Parsed,
		},
	})
}

// DeleteString handles DELETE /strings/{string_value}.
func (s *Server) DeleteString(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Delete(r.Context(), pathValue(r)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// An empty message reports the detail the error carries ahead of the sentinel.
func sentinelHandler(sentinel error, status int, code ErrorCode, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := message
		if msg == "" {
			msg = strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
		}
		writeError(w, status, code, msg)
		return true
	}
}

// parseErrorHandler reports the reason a phrase was rejected.
func parseErrorHandler(w http.ResponseWriter, err error) bool {
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeParseError, pe.Reason)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("request rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
