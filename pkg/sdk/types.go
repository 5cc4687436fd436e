package playmatch

import (
	"github.com/kailas-cloud/playmatch/internal/domain/match"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
)

// Input types.
type (
	Song            = match.Song
	AudioFeatures   = match.AudioFeatures
	SongAnalysis    = match.SongAnalysis
	PlaylistProfile = match.PlaylistProfile
	RecentSong      = match.RecentSong
)

// Scoring configuration.
type (
	MatchConfig  = match.Config
	Weights      = match.Weights
	AudioWeights = match.AudioWeights
)

// Output types.
type (
	Result       = match.Result
	ScoreFactors = match.ScoreFactors
	BatchResult  = match.BatchResult
	BatchStats   = match.Stats
	CacheStats   = matchcache.Stats
	Hashes       = matchcache.Hashes
)

// MatchRequest is one matching call. An empty AccountID skips the persistent tier.
type MatchRequest = matchcache.Request

// DefaultMatchConfig returns the stock scoring configuration.
func DefaultMatchConfig() MatchConfig {
	return match.DefaultConfig()
}

// Float returns a pointer to v for AudioFeatures literals.
func Float(v float64) *float64 {
	return match.Float(v)
}
