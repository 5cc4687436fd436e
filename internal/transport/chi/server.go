package chi

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/domain"
	logpkg "github.com/kailas-cloud/playmatch/internal/logger"
	healthuc "github.com/kailas-cloud/playmatch/internal/usecase/health"
	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the playmatch HTTP API.
type Server struct {
	matches       matchService
	similarity    similarityService
	usage         usageService
	health        healthService
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	matches matchService,
	similarity similarityService,
	usage usageService,
	health healthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		matches:    matches,
		similarity: similarity,
		usage:      usage,
		health:     health,
		validate:   newValidator(),
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, CodeConflict),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, CodeQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable, CodeEmbeddingUnavailable),
		sentinelHandler(domain.ErrStorage, http.StatusServiceUnavailable, CodeStorageUnavailable),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/accounts/{accountID}/matches", s.MatchForAccount)
		r.Post("/matches", s.Match)
		r.Post("/cache/invalidate", s.InvalidateCache)
		r.Delete("/cache", s.ClearCache)
		r.Get("/cache/stats", s.CacheStats)
		r.Post("/semantic/similarity", s.Similarity)
		r.Get("/usage", s.GetUsage)
	})
}

// MatchForAccount handles POST /v1/accounts/{accountID}/matches.
func (s *Server) MatchForAccount(w http.ResponseWriter, r *http.Request) {
	var accountID string
	err := runtime.BindStyledParameterWithOptions("simple", "accountID", gochi.URLParam(r, "accountID"), &accountID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter accountID: "+err.Error())
		return
	}
	if strings.TrimSpace(accountID) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "accountID is required")
		return
	}
	s.match(w, r, accountID)
}

// Match handles POST /v1/matches. Anonymous requests use the memory tier only.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	s.match(w, r, "")
}

func (s *Server) match(w http.ResponseWriter, r *http.Request, accountID string) {
	var req MatchRequest
	if !s.decode(w, r, &req) {
		return
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	}

	res, err := s.matches.GetOrComputeMatches(r.Context(), req.toCacheRequest(accountID, jobID))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logpkg.AddFields(r.Context(),
		zap.String("job_id", jobID),
		zap.String("account_id", accountID),
		zap.Int("songs", res.Stats.Total),
		zap.Int("cached", res.Stats.Cached),
		zap.Int("failed", res.Stats.Failed),
	)
	writeJSON(w, http.StatusOK, matchResponse(jobID, res))
}

// InvalidateCache handles POST /v1/cache/invalidate.
func (s *Server) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if !s.decode(w, r, &req) {
		return
	}
	n := s.matches.InvalidateForPlaylists(req.PlaylistIDs)
	writeJSON(w, http.StatusOK, InvalidateResponse{Removed: n})
}

// ClearCache handles DELETE /v1/cache.
func (s *Server) ClearCache(w http.ResponseWriter, _ *http.Request) {
	n := s.matches.InvalidateAll()
	writeJSON(w, http.StatusOK, InvalidateResponse{Removed: n})
}

// CacheStats handles GET /v1/cache/stats.
func (s *Server) CacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.matches.Stats())
}

// Similarity handles POST /v1/semantic/similarity.
func (s *Server) Similarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if !s.decode(w, r, &req) {
		return
	}

	threshold := s.similarity.Threshold()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	score := s.similarity.Similarity(ctx, req.A, req.B)
	similar := s.similarity.AreSimilar(ctx, req.A, req.B, threshold)

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SimilarityResponse{
		Similarity: score,
		Threshold:  threshold,
		Similar:    similar,
	})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter period: "+err.Error())
		return
	}
	var p string
	if raw != nil {
		p = *raw
	}
	period, err := usageuc.ParsePeriod(p)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, usageResponse(s.usage.GetReport(r.Context(), period)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body. It writes the error response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Namespace()+" is required")
		case "min", "max", "gt", "gte", "lt", "lte":
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fe.Namespace()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrRateLimited,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrEmbeddingUnavailable,
		domain.ErrStorage,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logpkg.AddFields(r.Context(), zap.NamedError("error", err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
