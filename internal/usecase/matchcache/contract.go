package matchcache

import (
	"context"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
)

// Matcher computes matches on a cache miss.
type Matcher interface {
	Config() match.Config
	MatchBatch(
		ctx context.Context,
		songs []match.Song,
		profiles []match.PlaylistProfile,
		embeddings map[string][]float32,
		opts matching.BatchOptions,
	) match.BatchResult
}

// Store is the persistent tier.
type Store interface {
	// GetContextByHash returns (nil, nil) when no context exists for the account and hash.
	GetContextByHash(ctx context.Context, hash, accountID string) (*match.Context, error)
	// GetResultsForSongs returns persisted results keyed by song ID. Songs without results are absent.
	GetResultsForSongs(ctx context.Context, contextID string, songIDs []string) (map[string][]match.Result, error)
	// CreateContext assigns an ID and stores c. It returns domain.ErrConflict when
	// a context with the same account and hash exists.
	CreateContext(ctx context.Context, c match.Context) (match.Context, error)
	// InsertResults stores results under contextID. It returns domain.ErrConflict
	// when results for the context were already stored.
	InsertResults(ctx context.Context, contextID string, results []match.Result) error
}

// ModelVersioner reports the version of the embedding model bundle currently in use.
type ModelVersioner interface {
	ModelVersion(ctx context.Context) (string, error)
}

// StaticModelVersion is a fixed model version.
type StaticModelVersion string

// ModelVersion returns v.
func (v StaticModelVersion) ModelVersion(context.Context) (string, error) {
	return string(v), nil
}
