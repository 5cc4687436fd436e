package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

// matchInput is the file format read by match and hash. It mirrors the HTTP
// match request and adds optional scoring and model overrides.
type matchInput struct {
	Songs        []match.Song            `json:"songs"`
	Playlists    []match.PlaylistProfile `json:"playlists"`
	Embeddings   map[string][]float32    `json:"embeddings,omitempty"`
	Config       *match.Config           `json:"config,omitempty"`
	ModelVersion string                  `json:"model_version,omitempty"`
}

// scoringConfig returns the input's config over the defaults.
func (in matchInput) scoringConfig() (match.Config, error) {
	cfg := match.DefaultConfig()
	if in.Config != nil {
		cfg = *in.Config
	}
	if err := cfg.Validate(); err != nil {
		return match.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (in matchInput) modelVersion() string {
	if in.ModelVersion != "" {
		return in.ModelVersion
	}
	return domain.DefaultModelConfig().Version()
}

// readInput loads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (matchInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return matchInput{}, fmt.Errorf("read input: %w", err)
	}

	var in matchInput
	if err := json.Unmarshal(data, &in); err != nil {
		return matchInput{}, fmt.Errorf("parse input: %w", err)
	}
	if len(in.Songs) == 0 {
		return matchInput{}, fmt.Errorf("input has no songs")
	}
	if len(in.Playlists) == 0 {
		return matchInput{}, fmt.Errorf("input has no playlists")
	}
	return in, nil
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
