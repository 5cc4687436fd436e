package scoring

import "math"

// DefaultThemeWeight is the score each matched song theme adds.
const DefaultThemeWeight = 0.25

// ThematicScore counts song themes that equal, contain or are contained by any
// playlist theme. Each song theme counts at most once.
func ThematicScore(songThemes, playlistThemes []string, perThemeWeight float64) float64 {
	if len(songThemes) == 0 || len(playlistThemes) == 0 {
		return 0
	}

	normalized := make([]string, 0, len(playlistThemes))
	for _, t := range playlistThemes {
		if n := Normalize(t); n != "" {
			normalized = append(normalized, n)
		}
	}

	matches := 0
	for _, t := range songThemes {
		st := Normalize(t)
		for _, pt := range normalized {
			if Overlaps(st, pt) {
				matches++
				break
			}
		}
	}

	return math.Min(1, float64(matches)*perThemeWeight)
}
