package chi

import (
	"time"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
	healthuc "github.com/kailas-cloud/playmatch/internal/usecase/health"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 32 << 20

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeNotFound             ErrorCode = "not_found"
	CodeConflict             ErrorCode = "conflict"
	CodeRateLimited          ErrorCode = "rate_limited"
	CodeQuotaExceeded        ErrorCode = "embedding_quota_exceeded"
	CodeProviderError        ErrorCode = "embedding_provider_error"
	CodeEmbeddingUnavailable ErrorCode = "embedding_unavailable"
	CodeStorageUnavailable   ErrorCode = "storage_unavailable"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MatchRequest is the body of the match endpoints.
type MatchRequest struct {
	JobID      string                  `json:"job_id" validate:"omitempty,max=128,printascii"`
	Songs      []match.Song            `json:"songs" validate:"required,min=1,max=1000"`
	Playlists  []match.PlaylistProfile `json:"playlists" validate:"required,min=1,max=500"`
	Embeddings map[string][]float32    `json:"embeddings,omitempty"`
}

// MatchResponse carries the ranked matches of a batch.
type MatchResponse struct {
	JobID   string                    `json:"job_id"`
	Matches map[string][]match.Result `json:"matches"`
	Failed  []string                  `json:"failed"`
	Stats   match.Stats               `json:"stats"`
}

// InvalidateRequest lists playlists whose cached matches must be dropped.
type InvalidateRequest struct {
	PlaylistIDs []string `json:"playlist_ids" validate:"required,min=1,dive,required"`
}

// InvalidateResponse reports how many memory entries were removed.
type InvalidateResponse struct {
	Removed int `json:"removed"`
}

// SimilarityRequest compares two labels.
type SimilarityRequest struct {
	A         string   `json:"a" validate:"required,max=512"`
	B         string   `json:"b" validate:"required,max=512"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// SimilarityResponse is the cosine similarity and the thresholded verdict.
type SimilarityResponse struct {
	Similarity float64 `json:"similarity"`
	Threshold  float64 `json:"threshold"`
	Similar    bool    `json:"similar"`
}

// UsageResponse is the token usage of one budget period.
// Limit and Remaining are -1 when the budget is unlimited.
type UsageResponse struct {
	Period        string    `json:"period"`
	PeriodStartAt time.Time `json:"period_start_at"`
	PeriodEndAt   time.Time `json:"period_end_at"`
	TokensUsed    int64     `json:"tokens_used"`
	TokensLimit   int64     `json:"tokens_limit"`
	Remaining     int64     `json:"tokens_remaining"`
	IsExhausted   bool      `json:"is_exhausted"`
}

// HealthResponse is the aggregated health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func matchResponse(jobID string, res match.BatchResult) MatchResponse {
	failed := res.Failed
	if failed == nil {
		failed = []string{}
	}
	matches := res.Matches
	if matches == nil {
		matches = map[string][]match.Result{}
	}
	return MatchResponse{JobID: jobID, Matches: matches, Failed: failed, Stats: res.Stats}
}

func (r MatchRequest) toCacheRequest(accountID, jobID string) matchcache.Request {
	return matchcache.Request{
		AccountID:  accountID,
		JobID:      jobID,
		Songs:      r.Songs,
		Profiles:   r.Playlists,
		Embeddings: r.Embeddings,
	}
}

func usageResponse(r usageuc.Report) UsageResponse {
	return UsageResponse{
		Period:        string(r.Period),
		PeriodStartAt: r.PeriodStart,
		PeriodEndAt:   r.PeriodEnd,
		TokensUsed:    r.TokensUsed,
		TokensLimit:   r.Limit,
		Remaining:     r.Remaining,
		IsExhausted:   r.Exhausted,
	}
}

func healthResponse(r healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(r.Status), Checks: checks}
}
