package match

// Audio feature names shared by songs, centroids and audio weights.
const (
	FeatureEnergy           = "energy"
	FeatureValence          = "valence"
	FeatureDanceability     = "danceability"
	FeatureAcousticness     = "acousticness"
	FeatureInstrumentalness = "instrumentalness"
	FeatureSpeechiness      = "speechiness"
	FeatureLiveness         = "liveness"
	FeatureTempo            = "tempo"
	FeatureLoudness         = "loudness"
)

// FeatureNames lists the nine audio features in a fixed order.
var FeatureNames = [...]string{
	FeatureEnergy,
	FeatureValence,
	FeatureDanceability,
	FeatureAcousticness,
	FeatureInstrumentalness,
	FeatureSpeechiness,
	FeatureLiveness,
	FeatureTempo,
	FeatureLoudness,
}

// AudioFeatures holds a song's audio analysis. A nil field means the value is unknown.
// Tempo is in BPM and loudness in dB; every other feature is unit-scaled.
type AudioFeatures struct {
	Energy           *float64 `json:"energy,omitempty"`
	Valence          *float64 `json:"valence,omitempty"`
	Danceability     *float64 `json:"danceability,omitempty"`
	Acousticness     *float64 `json:"acousticness,omitempty"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty"`
	Speechiness      *float64 `json:"speechiness,omitempty"`
	Liveness         *float64 `json:"liveness,omitempty"`
	Tempo            *float64 `json:"tempo,omitempty"`
	Loudness         *float64 `json:"loudness,omitempty"`
}

// Get returns the named feature and whether it is present.
func (f *AudioFeatures) Get(name string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	var p *float64
	switch name {
	case FeatureEnergy:
		p = f.Energy
	case FeatureValence:
		p = f.Valence
	case FeatureDanceability:
		p = f.Danceability
	case FeatureAcousticness:
		p = f.Acousticness
	case FeatureInstrumentalness:
		p = f.Instrumentalness
	case FeatureSpeechiness:
		p = f.Speechiness
	case FeatureLiveness:
		p = f.Liveness
	case FeatureTempo:
		p = f.Tempo
	case FeatureLoudness:
		p = f.Loudness
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Empty reports whether no feature is present.
func (f *AudioFeatures) Empty() bool {
	for _, name := range FeatureNames {
		if _, ok := f.Get(name); ok {
			return false
		}
	}
	return true
}

// SongAnalysis is the text-derived analysis attached to a song.
type SongAnalysis struct {
	Mood     string             `json:"mood,omitempty"`
	Themes   []string           `json:"themes,omitempty"`
	Contexts map[string]float64 `json:"contexts,omitempty"`
}

// Song is a candidate item to be placed into playlists.
type Song struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Artists  []string       `json:"artists,omitempty"`
	Genres   []string       `json:"genres,omitempty"`
	Features *AudioFeatures `json:"features,omitempty"`
	Analysis *SongAnalysis  `json:"analysis,omitempty"`
}

// RecentSong is one entry of a playlist's recent-songs window used for flow scoring.
type RecentSong struct {
	Mood    string   `json:"mood,omitempty"`
	Energy  *float64 `json:"energy,omitempty"`
	Valence *float64 `json:"valence,omitempty"`
}

// PlaylistProfile summarizes a destination playlist.
type PlaylistProfile struct {
	PlaylistID          string             `json:"playlist_id"`
	Embedding           []float32          `json:"embedding,omitempty"`
	AudioCentroid       map[string]float64 `json:"audio_centroid,omitempty"`
	GenreDistribution   map[string]int     `json:"genre_distribution,omitempty"`
	EmotionDistribution map[string]int     `json:"emotion_distribution,omitempty"`
	Themes              []string           `json:"themes,omitempty"`
	Contexts            map[string]float64 `json:"contexts,omitempty"`
	RecentSongs         []RecentSong       `json:"recent_songs,omitempty"`
	Method              string             `json:"method,omitempty"`
}

// Float returns a pointer to v. Handy for building AudioFeatures literals.
func Float(v float64) *float64 {
	return &v
}
