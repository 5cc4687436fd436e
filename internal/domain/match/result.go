package match

import "time"

// ScoreFactors holds the six per-factor scores, each in [0,1].
type ScoreFactors struct {
	Vector   float64 `json:"vector"`
	Genre    float64 `json:"genre"`
	Audio    float64 `json:"audio"`
	Semantic float64 `json:"semantic"`
	Context  float64 `json:"context"`
	Flow     float64 `json:"flow"`
}

// Result is the score of one song against one playlist.
// Rank is 1-based and stays 0 until the result list is sorted and filtered.
type Result struct {
	SongID     string       `json:"song_id"`
	PlaylistID string       `json:"playlist_id"`
	Score      float64      `json:"score"`
	Rank       int          `json:"rank"`
	Factors    ScoreFactors `json:"factors"`
	Confidence float64      `json:"confidence"`
	FromCache  bool         `json:"from_cache"`
}

// DataAvailability records which data sources are present for a song/playlist pair.
type DataAvailability struct {
	HasEmbedding     bool `json:"has_embedding"`
	HasGenres        bool `json:"has_genres"`
	HasAudioFeatures bool `json:"has_audio_features"`
	HasAnalysis      bool `json:"has_analysis"`
	HasRecentSongs   bool `json:"has_recent_songs"`
}

// availabilitySignals is the number of tracked availability flags.
const availabilitySignals = 5

// Count returns the number of available signals.
func (a DataAvailability) Count() int {
	n := 0
	for _, ok := range [...]bool{a.HasEmbedding, a.HasGenres, a.HasAudioFeatures, a.HasAnalysis, a.HasRecentSongs} {
		if ok {
			n++
		}
	}
	return n
}

// Confidence is the fraction of available signals.
func (a DataAvailability) Confidence() float64 {
	return float64(a.Count()) / availabilitySignals
}

// Stats summarizes a batch run.
type Stats struct {
	Total    int `json:"total"`
	Matched  int `json:"matched"`
	Cached   int `json:"cached"`
	Computed int `json:"computed"`
	Failed   int `json:"failed"`
}

// BatchResult maps song IDs to their ranked results.
type BatchResult struct {
	Matches map[string][]Result `json:"matches"`
	Failed  []string            `json:"failed"`
	Stats   Stats               `json:"stats"`
}

// CachedEntry is one memory-tier cache entry.
type CachedEntry struct {
	ContextHash string
	Matches     map[string][]Result
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Valid reports whether the entry has not expired at now.
func (e CachedEntry) Valid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Context is the persisted key of a cached matching run.
type Context struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	ContextHash     string    `json:"context_hash"`
	SongSetHash     string    `json:"song_set_hash"`
	PlaylistSetHash string    `json:"playlist_set_hash"`
	ConfigHash      string    `json:"config_hash"`
	ModelVersion    string    `json:"model_version"`
	Weights         Weights   `json:"weights"`
	SongCount       int       `json:"song_count"`
	PlaylistCount   int       `json:"playlist_count"`
	CreatedAt       time.Time `json:"created_at"`
}
