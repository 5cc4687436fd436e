package scoring

import (
	"math"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

// Normalization ranges for the two features that are not unit-scaled.
const (
	tempoRangeBPM   = 100.0
	loudnessRangeDB = 60.0
)

// AudioScore compares song features with a playlist centroid.
// Each feature present on both sides with a non-zero weight contributes
// weight*max(0, 1-diff); the result is the weighted mean, or 0 when nothing contributed.
func AudioScore(features *match.AudioFeatures, centroid map[string]float64, weights match.AudioWeights) float64 {
	if features == nil || len(centroid) == 0 {
		return 0
	}

	var score, total float64
	for _, name := range match.FeatureNames {
		w := weights.Get(name)
		if w == 0 {
			continue
		}
		songVal, ok := features.Get(name)
		if !ok {
			continue
		}
		centroidVal, ok := centroid[name]
		if !ok {
			continue
		}

		diff := math.Abs(songVal - centroidVal)
		switch name {
		case match.FeatureTempo:
			diff /= tempoRangeBPM
		case match.FeatureLoudness:
			diff /= loudnessRangeDB
		}

		score += w * math.Max(0, 1-diff)
		total += w
	}

	if total == 0 {
		return 0
	}
	return score / total
}
