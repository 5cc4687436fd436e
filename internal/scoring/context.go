package scoring

import "math"

// ContextScore measures listening-context agreement. For every playlist context
// that the song also scores positively, min(song, playlist) is averaged; the mean is capped at 1.
func ContextScore(song, playlist map[string]float64) float64 {
	if len(song) == 0 || len(playlist) == 0 {
		return 0
	}

	var sum float64
	var matched int
	for key, playlistVal := range playlist {
		songVal, ok := song[key]
		if !ok || songVal <= 0 {
			continue
		}
		sum += math.Min(songVal, playlistVal)
		matched++
	}

	if matched == 0 {
		return 0
	}
	return math.Min(1, sum/float64(matched))
}
