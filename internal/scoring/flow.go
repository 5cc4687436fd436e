package scoring

import (
	"math"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

const (
	// flowWindow is how many of the most recent songs are considered.
	flowWindow = 3
	// flowNeutral is returned when there is nothing to compare against.
	flowNeutral = 0.5

	flowMoodWeight    = 0.5
	flowEnergyWeight  = 0.3
	flowValenceWeight = 0.2
)

// FlowScore rates how well a candidate continues the playlist's recent songs.
// Each of the last three entries is scored from whichever of mood, energy and valence
// are present on both sides, normalized by the weights used, and the entries are averaged.
func FlowScore(mood string, energy, valence *float64, recent []match.RecentSong) float64 {
	if len(recent) == 0 {
		return flowNeutral
	}
	if len(recent) > flowWindow {
		recent = recent[len(recent)-flowWindow:]
	}

	var total float64
	var counted int
	for _, prev := range recent {
		var score, weight float64

		if mood != "" && prev.Mood != "" {
			score += MoodTransitionScore(prev.Mood, mood) * flowMoodWeight
			weight += flowMoodWeight
		}
		if energy != nil && prev.Energy != nil {
			diff := math.Abs(*energy - *prev.Energy)
			score += math.Max(0, 1-diff*0.5) * flowEnergyWeight
			weight += flowEnergyWeight
		}
		if valence != nil && prev.Valence != nil {
			diff := math.Abs(*valence - *prev.Valence)
			score += math.Max(0, 1-diff*0.3) * flowValenceWeight
			weight += flowValenceWeight
		}

		if weight > 0 {
			total += score / weight
			counted++
		}
	}

	if counted == 0 {
		return flowNeutral
	}
	return total / float64(counted)
}
