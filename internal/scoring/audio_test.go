package scoring

import (
	"math"
	"testing"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

func fullFeatures() *match.AudioFeatures {
	return &match.AudioFeatures{
		Energy:           match.Float(0.8),
		Valence:          match.Float(0.6),
		Danceability:     match.Float(0.7),
		Acousticness:     match.Float(0.1),
		Instrumentalness: match.Float(0.0),
		Speechiness:      match.Float(0.05),
		Liveness:         match.Float(0.2),
		Tempo:            match.Float(124),
		Loudness:         match.Float(-6),
	}
}

func centroidOf(f *match.AudioFeatures) map[string]float64 {
	c := make(map[string]float64)
	for _, name := range match.FeatureNames {
		if v, ok := f.Get(name); ok {
			c[name] = v
		}
	}
	return c
}

func TestAudioScore_IdenticalUniformIsOne(t *testing.T) {
	f := fullFeatures()
	got := AudioScore(f, centroidOf(f), match.UniformAudioWeights(1))
	if got != 1.0 {
		t.Errorf("expected exactly 1.0, got %v", got)
	}
}

func TestAudioScore_Zero(t *testing.T) {
	f := fullFeatures()

	t.Run("empty centroid", func(t *testing.T) {
		if got := AudioScore(f, nil, match.DefaultAudioWeights()); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("all weights zero", func(t *testing.T) {
		if got := AudioScore(f, centroidOf(f), match.UniformAudioWeights(0)); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("nil features", func(t *testing.T) {
		if got := AudioScore(nil, centroidOf(f), match.DefaultAudioWeights()); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("no shared features", func(t *testing.T) {
		song := &match.AudioFeatures{Energy: match.Float(0.5)}
		if got := AudioScore(song, map[string]float64{"tempo": 120}, match.DefaultAudioWeights()); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}

func TestAudioScore_RangeNormalization(t *testing.T) {
	tests := []struct {
		name     string
		song     *match.AudioFeatures
		centroid map[string]float64
	}{
		{
			name:     "tempo diff of 100 BPM",
			song:     &match.AudioFeatures{Tempo: match.Float(180)},
			centroid: map[string]float64{match.FeatureTempo: 80},
		},
		{
			name:     "loudness diff of 60 dB",
			song:     &match.AudioFeatures{Loudness: match.Float(-60)},
			centroid: map[string]float64{match.FeatureLoudness: 0},
		},
		{
			name:     "tempo diff beyond range",
			song:     &match.AudioFeatures{Tempo: match.Float(200)},
			centroid: map[string]float64{match.FeatureTempo: 60},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AudioScore(tt.song, tt.centroid, match.DefaultAudioWeights()); got != 0 {
				t.Errorf("expected 0, got %v", got)
			}
		})
	}
}

func TestAudioScore_WeightedMean(t *testing.T) {
	song := &match.AudioFeatures{Energy: match.Float(1.0), Tempo: match.Float(120)}
	centroid := map[string]float64{match.FeatureEnergy: 0.5, match.FeatureTempo: 120}
	weights := match.AudioWeights{Energy: 1, Tempo: 3}

	// energy contributes 1*0.5, tempo 3*1.0
	want := (0.5 + 3.0) / 4.0
	if got := AudioScore(song, centroid, weights); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAudioScore_PartialCentroid(t *testing.T) {
	f := fullFeatures()
	centroid := map[string]float64{match.FeatureEnergy: 0.8}
	if got := AudioScore(f, centroid, match.DefaultAudioWeights()); got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}
