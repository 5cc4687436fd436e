package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
)

func newHashCommand() *cobra.Command {
	var (
		inputPath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the cache context hash of an input",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}
			cfg, err := in.scoringConfig()
			if err != nil {
				return err
			}

			h, err := matchcache.ContextHash(in.Songs, in.Playlists, cfg, in.modelVersion())
			if err != nil {
				return fmt.Errorf("hash: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, map[string]string{
					"context":       h.Context,
					"song_set":      h.SongSet,
					"playlist_set":  h.PlaylistSet,
					"config":        h.Config,
					"model_version": h.ModelVersion,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Component", "SHA-256"},
				[][]string{
					{"context", h.Context},
					{"song set", h.SongSet},
					{"playlist set", h.PlaylistSet},
					{"config", h.Config},
					{"model version", h.ModelVersion},
				},
				nil,
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input JSON file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print hashes as JSON")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
