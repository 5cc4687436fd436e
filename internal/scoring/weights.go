package scoring

import "github.com/kailas-cloud/playmatch/internal/domain/match"

// Share multipliers for the lower-importance factors during redistribution.
const (
	semanticShare = 0.5
	contextShare  = 0.5
	flowShare     = 0.25
)

// AdaptiveWeights zeroes the weights of factors whose data is unavailable and
// spreads the freed weight over the available ones. Semantic and context each get
// half a share and flow a quarter share. The result is not renormalized, so it
// can sum to slightly less than the defaults.
func AdaptiveWeights(defaults match.Weights, avail match.DataAvailability) match.Weights {
	w := defaults
	var pool float64
	available := 0

	if avail.HasEmbedding {
		available++
	} else {
		pool += w.Vector
		w.Vector = 0
	}
	if avail.HasGenres {
		available++
	} else {
		pool += w.Genre
		w.Genre = 0
	}
	if avail.HasAudioFeatures {
		available++
	} else {
		pool += w.Audio
		w.Audio = 0
	}
	if avail.HasAnalysis {
		available += 2
	} else {
		pool += w.Semantic + w.Context
		w.Semantic, w.Context = 0, 0
	}
	if avail.HasRecentSongs {
		available++
	} else {
		pool += w.Flow
		w.Flow = 0
	}

	if pool == 0 || available == 0 {
		return w
	}

	share := pool / float64(available)
	if avail.HasEmbedding {
		w.Vector += share
	}
	if avail.HasGenres {
		w.Genre += share
	}
	if avail.HasAudioFeatures {
		w.Audio += share
	}
	if avail.HasAnalysis {
		w.Semantic += share * semanticShare
		w.Context += share * contextShare
	}
	if avail.HasRecentSongs {
		w.Flow += share * flowShare
	}
	return w
}
