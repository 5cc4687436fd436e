package matchcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

// Hashes are the component fingerprints of a matching context.
type Hashes struct {
	SongSet      string
	PlaylistSet  string
	Config       string
	ModelVersion string
	Context      string
}

// scoringConfig is the subset of match.Config that changes results stored in the cache.
type scoringConfig struct {
	Weights           match.Weights      `json:"weights"`
	AudioWeights      match.AudioWeights `json:"audio_weights"`
	MinScoreThreshold float64            `json:"min_score_threshold"`
}

// ContextHash fingerprints a matching request. It does not depend on the
// order of songs or profiles.
func ContextHash(
	songs []match.Song, profiles []match.PlaylistProfile, cfg match.Config, modelVersion string,
) (Hashes, error) {
	cfgJSON, err := json.Marshal(scoringConfig{
		Weights:           cfg.Weights,
		AudioWeights:      cfg.AudioWeights,
		MinScoreThreshold: cfg.MinScoreThreshold,
	})
	if err != nil {
		return Hashes{}, fmt.Errorf("marshal scoring config: %w", err)
	}

	h := Hashes{
		SongSet:      songSetHash(songs),
		PlaylistSet:  playlistSetHash(profiles),
		Config:       sum(string(cfgJSON)),
		ModelVersion: sum(modelVersion),
	}
	h.Context = sum(strings.Join([]string{h.SongSet, h.PlaylistSet, h.Config, h.ModelVersion}, ":"))
	return h, nil
}

func songSetHash(songs []match.Song) string {
	lines := make([]string, len(songs))
	for i, s := range songs {
		lines[i] = strings.Join([]string{
			s.ID,
			s.Name,
			strings.Join(s.Artists, ","),
			strings.Join(s.Genres, ","),
		}, "|")
	}
	slices.Sort(lines)
	return sum(strings.Join(lines, "\n"))
}

func playlistSetHash(profiles []match.PlaylistProfile) string {
	lines := make([]string, len(profiles))
	for i, p := range profiles {
		genres := slices.Sorted(maps.Keys(p.GenreDistribution))
		features := slices.Sorted(maps.Keys(p.AudioCentroid))
		lines[i] = strings.Join([]string{
			p.PlaylistID,
			strings.Join(genres, ","),
			strings.Join(features, ","),
		}, "|")
	}
	slices.Sort(lines)
	return sum(strings.Join(lines, "\n"))
}

func sum(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
