package chi

import (
	"context"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
	healthuc "github.com/kailas-cloud/playmatch/internal/usecase/health"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
)

// matchService is the cached matching surface used by the handlers.
type matchService interface {
	GetOrComputeMatches(ctx context.Context, req matchcache.Request) (match.BatchResult, error)
	InvalidateForPlaylists(playlistIDs []string) int
	InvalidateAll() int
	Stats() matchcache.Stats
}

// similarityService compares free-text labels.
type similarityService interface {
	Similarity(ctx context.Context, a, b string) float64
	AreSimilar(ctx context.Context, a, b string, threshold float64) bool
	Threshold() float64
}

// usageService reports embedding token usage.
type usageService interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// healthService aggregates component checks.
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}
