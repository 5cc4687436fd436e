package matching

import (
	"context"
	"sync"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

// --- Mocks ---

type recordingSink struct {
	mu       sync.Mutex
	items    []ItemEvent
	progress []ProgressEvent
	jobIDs   map[string]int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{jobIDs: make(map[string]int)}
}

func (s *recordingSink) EmitItem(_ context.Context, jobID string, ev ItemEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, ev)
	s.jobIDs[jobID]++
}

func (s *recordingSink) EmitProgress(_ context.Context, jobID string, ev ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = append(s.progress, ev)
	s.jobIDs[jobID]++
}

// --- Fixtures ---

func fullSong(id string) match.Song {
	return match.Song{
		ID:      id,
		Name:    "Song " + id,
		Artists: []string{"The Band"},
		Genres:  []string{"Indie Rock", "dream pop", "shoegaze"},
		Features: &match.AudioFeatures{
			Energy:           match.Float(0.8),
			Valence:          match.Float(0.6),
			Danceability:     match.Float(0.5),
			Acousticness:     match.Float(0.2),
			Instrumentalness: match.Float(0.1),
			Speechiness:      match.Float(0.05),
			Liveness:         match.Float(0.1),
			Tempo:            match.Float(120),
			Loudness:         match.Float(-7),
		},
		Analysis: &match.SongAnalysis{
			Mood:     "happy",
			Themes:   []string{"summer love", "road trip"},
			Contexts: map[string]float64{"driving": 0.8, "party": 0.5},
		},
	}
}

func matchingProfile(id string) match.PlaylistProfile {
	return match.PlaylistProfile{
		PlaylistID: id,
		Embedding:  []float32{1, 0.5, 0.2},
		AudioCentroid: map[string]float64{
			"energy": 0.8, "valence": 0.6, "danceability": 0.5, "acousticness": 0.2,
			"instrumentalness": 0.1, "speechiness": 0.05, "liveness": 0.1, "tempo": 120, "loudness": -7,
		},
		GenreDistribution: map[string]int{"indie rock": 5, "dream pop": 3, "shoegaze": 2},
		Themes:            []string{"love", "road"},
		Contexts:          map[string]float64{"driving": 0.9},
		RecentSongs: []match.RecentSong{
			{Mood: "happy", Energy: match.Float(0.8), Valence: match.Float(0.6)},
		},
	}
}

func unrelatedProfile(id string) match.PlaylistProfile {
	return match.PlaylistProfile{
		PlaylistID:        id,
		GenreDistribution: map[string]int{"baroque": 4},
	}
}

func songEmbeddings(ids ...string) map[string][]float32 {
	out := make(map[string][]float32, len(ids))
	for _, id := range ids {
		out[id] = []float32{1, 0.5, 0.2}
	}
	return out
}
