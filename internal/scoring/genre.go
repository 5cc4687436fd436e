package scoring

// GenreScore is the share of the playlist's genre distribution covered by the song's genres.
// A playlist genre is covered when any song genre equals, contains or is contained by it.
func GenreScore(songGenres []string, distribution map[string]int) float64 {
	if len(songGenres) == 0 || len(distribution) == 0 {
		return 0
	}

	normalized := make([]string, 0, len(songGenres))
	for _, g := range songGenres {
		if n := Normalize(g); n != "" {
			normalized = append(normalized, n)
		}
	}

	var matched, total int
	for genre, count := range distribution {
		if count <= 0 {
			continue
		}
		total += count
		pg := Normalize(genre)
		for _, sg := range normalized {
			if Overlaps(sg, pg) {
				matched += count
				break
			}
		}
	}

	if total == 0 {
		return 0
	}
	return clamp01(float64(matched) / float64(total))
}
