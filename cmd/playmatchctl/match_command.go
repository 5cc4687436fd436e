package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
)

func newMatchCommand() *cobra.Command {
	var (
		inputPath string
		asJSON    bool
		top       int
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank songs against playlists and print the matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readInput(cmd, inputPath)
			if err != nil {
				return err
			}
			cfg, err := in.scoringConfig()
			if err != nil {
				return err
			}

			logger := zap.NewNop()
			if verbose {
				if logger, err = zap.NewDevelopment(); err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				defer func() { _ = logger.Sync() }()
			}

			engine := matching.New(cfg, logger).WithProgressSink(matching.NewLogProgressSink(logger))
			cache := matchcache.New(engine, nil, matchcache.StaticModelVersion(in.modelVersion()), logger)

			res, err := cache.GetOrComputeMatches(cmd.Context(), matchcache.Request{
				JobID:      uuid.NewString(),
				Songs:      in.Songs,
				Profiles:   in.Playlists,
				Embeddings: in.Embeddings,
			})
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderMatches(in.Songs, res, top))
			fmt.Fprintf(cmd.OutOrStdout(), "%d songs: %d matched, %d failed\n",
				res.Stats.Total, res.Stats.Matched, res.Stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input JSON file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the batch result as JSON")
	cmd.Flags().IntVar(&top, "top", 0, "Show at most N matches per song (0 = all)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log engine progress to stderr")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// renderMatches prints one row per kept match, songs in input order.
func renderMatches(songs []match.Song, res match.BatchResult, top int) string {
	headers := []string{"Song", "Rank", "Playlist", "Score", "Conf", "Vector", "Genre", "Audio", "Semantic", "Context", "Flow"}
	aligns := []columnAlignment{alignLeft, alignRight, alignLeft}
	for range len(headers) - len(aligns) {
		aligns = append(aligns, alignRight)
	}

	var rows [][]string
	for _, s := range songs {
		results := res.Matches[s.ID]
		if top > 0 && len(results) > top {
			results = results[:top]
		}
		for _, r := range results {
			rows = append(rows, []string{
				songLabel(s),
				strconv.Itoa(r.Rank),
				r.PlaylistID,
				score(r.Score),
				score(r.Confidence),
				score(r.Factors.Vector),
				score(r.Factors.Genre),
				score(r.Factors.Audio),
				score(r.Factors.Semantic),
				score(r.Factors.Context),
				score(r.Factors.Flow),
			})
		}
		if slices.Contains(res.Failed, s.ID) {
			rows = append(rows, []string{songLabel(s), "-", "(no match)"})
		}
	}
	return renderTable(headers, rows, aligns)
}

func songLabel(s match.Song) string {
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
