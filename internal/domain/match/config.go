package match

import "fmt"

// Weights are the six factor weights. They conventionally sum to 1.0; nothing enforces it.
type Weights struct {
	Vector   float64 `json:"vector" yaml:"vector"`
	Genre    float64 `json:"genre" yaml:"genre"`
	Audio    float64 `json:"audio" yaml:"audio"`
	Semantic float64 `json:"semantic" yaml:"semantic"`
	Context  float64 `json:"context" yaml:"context"`
	Flow     float64 `json:"flow" yaml:"flow"`
}

// DefaultWeights returns the stock factor weights.
func DefaultWeights() Weights {
	return Weights{
		Vector:   0.25,
		Genre:    0.15,
		Audio:    0.25,
		Semantic: 0.15,
		Context:  0.15,
		Flow:     0.05,
	}
}

// Apply returns the weighted sum of the factors.
func (w Weights) Apply(f ScoreFactors) float64 {
	return w.Vector*f.Vector +
		w.Genre*f.Genre +
		w.Audio*f.Audio +
		w.Semantic*f.Semantic +
		w.Context*f.Context +
		w.Flow*f.Flow
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Vector + w.Genre + w.Audio + w.Semantic + w.Context + w.Flow
}

// AudioWeights weight each audio feature inside the audio factor.
type AudioWeights struct {
	Energy           float64 `json:"energy" yaml:"energy"`
	Valence          float64 `json:"valence" yaml:"valence"`
	Danceability     float64 `json:"danceability" yaml:"danceability"`
	Acousticness     float64 `json:"acousticness" yaml:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness" yaml:"instrumentalness"`
	Speechiness      float64 `json:"speechiness" yaml:"speechiness"`
	Liveness         float64 `json:"liveness" yaml:"liveness"`
	Tempo            float64 `json:"tempo" yaml:"tempo"`
	Loudness         float64 `json:"loudness" yaml:"loudness"`
}

// DefaultAudioWeights returns the stock per-feature weights.
func DefaultAudioWeights() AudioWeights {
	return AudioWeights{
		Energy:           1.0,
		Valence:          1.0,
		Danceability:     0.8,
		Acousticness:     0.6,
		Instrumentalness: 0.5,
		Speechiness:      0.4,
		Liveness:         0.3,
		Tempo:            0.7,
		Loudness:         0.3,
	}
}

// UniformAudioWeights gives every feature weight w.
func UniformAudioWeights(w float64) AudioWeights {
	return AudioWeights{
		Energy: w, Valence: w, Danceability: w, Acousticness: w, Instrumentalness: w,
		Speechiness: w, Liveness: w, Tempo: w, Loudness: w,
	}
}

// Get returns the weight of the named feature, 0 for unknown names.
func (w AudioWeights) Get(name string) float64 {
	switch name {
	case FeatureEnergy:
		return w.Energy
	case FeatureValence:
		return w.Valence
	case FeatureDanceability:
		return w.Danceability
	case FeatureAcousticness:
		return w.Acousticness
	case FeatureInstrumentalness:
		return w.Instrumentalness
	case FeatureSpeechiness:
		return w.Speechiness
	case FeatureLiveness:
		return w.Liveness
	case FeatureTempo:
		return w.Tempo
	case FeatureLoudness:
		return w.Loudness
	}
	return 0
}

// Config is the scoring configuration of the matching engine.
type Config struct {
	Weights               Weights      `json:"weights" yaml:"weights"`
	AudioWeights          AudioWeights `json:"audio_weights" yaml:"audio_weights"`
	MinScoreThreshold     float64      `json:"min_score_threshold" yaml:"min_score_threshold"`
	MaxResultsPerSong     int          `json:"max_results_per_song" yaml:"max_results_per_song"`
	DeepAnalysisThreshold float64      `json:"deep_analysis_threshold" yaml:"deep_analysis_threshold"`
	// VetoThreshold is reserved. No scoring path reads it.
	VetoThreshold       float64 `json:"veto_threshold" yaml:"veto_threshold"`
	EnableVectorScoring bool    `json:"enable_vector_scoring" yaml:"enable_vector_scoring"`
}

// DefaultConfig returns the stock matching configuration.
func DefaultConfig() Config {
	return Config{
		Weights:               DefaultWeights(),
		AudioWeights:          DefaultAudioWeights(),
		MinScoreThreshold:     0.3,
		MaxResultsPerSong:     10,
		DeepAnalysisThreshold: 0.1,
		VetoThreshold:         0.2,
		EnableVectorScoring:   true,
	}
}

// Validate checks ranges. Weights must be non-negative.
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"vector": c.Weights.Vector, "genre": c.Weights.Genre, "audio": c.Weights.Audio,
		"semantic": c.Weights.Semantic, "context": c.Weights.Context, "flow": c.Weights.Flow,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, w)
		}
	}
	for _, name := range FeatureNames {
		if w := c.AudioWeights.Get(name); w < 0 {
			return fmt.Errorf("audio weight %s must be non-negative, got %v", name, w)
		}
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 1 {
		return fmt.Errorf("min_score_threshold must be in [0,1], got %v", c.MinScoreThreshold)
	}
	if c.MaxResultsPerSong <= 0 {
		return fmt.Errorf("max_results_per_song must be positive, got %d", c.MaxResultsPerSong)
	}
	if c.DeepAnalysisThreshold < 0 || c.DeepAnalysisThreshold > 1 {
		return fmt.Errorf("deep_analysis_threshold must be in [0,1], got %v", c.DeepAnalysisThreshold)
	}
	return nil
}
