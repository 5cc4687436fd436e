package domain

import "errors"

// Domain sentinel errors. Wrap with fmt.Errorf("...: %w", err) and check with errors.Is.
var (
	// ErrInvalidInput marks a data error: a required scoring input is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompute marks an unexpected failure inside scoring.
	ErrCompute = errors.New("compute failed")
	// ErrStorage marks a persistent-store I/O failure.
	ErrStorage = errors.New("storage failure")
	// ErrConflict marks a uniqueness violation in the persistent store.
	ErrConflict = errors.New("already exists")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")

	ErrEmbeddingProviderError = errors.New("embedding provider error")
	ErrRateLimited            = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded is returned when the token budget rejects a request.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token budget exceeded")
	// ErrEmbeddingUnavailable is returned while the embedding circuit breaker is open.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
