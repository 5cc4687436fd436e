package domain

import "fmt"

// ModelConfig identifies the embedding model bundle that produced song and playlist vectors.
// Changing any field changes the match cache's model version.
type ModelConfig struct {
	Model         string
	Dimensions    int
	BundleVersion string
	// Instruction is prepended to short labels before embedding. Empty disables it.
	Instruction string
}

// DefaultModelConfig returns the stock embedding model settings.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:         "text-embedding-3-small",
		Dimensions:    1536,
		BundleVersion: "1",
		Instruction:   "",
	}
}

// Version is the model version string recorded with persisted match contexts.
func (c ModelConfig) Version() string {
	return fmt.Sprintf("%s/%d/%s", c.Model, c.Dimensions, c.BundleVersion)
}
