package matching

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
	"github.com/kailas-cloud/playmatch/internal/metrics"
	"github.com/kailas-cloud/playmatch/internal/scoring"
)

// progressEvery is the number of songs between aggregate progress snapshots.
const progressEvery = 10

// BatchOptions tune a single MatchBatch call.
type BatchOptions struct {
	// JobID keys progress events. Empty disables emission.
	JobID string
}

// Engine scores songs against playlist profiles. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	cfg      match.Config
	progress ProgressSink
	logger   *zap.Logger
}

// New creates an engine bound to cfg.
func New(cfg match.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// WithProgressSink configures where batch progress is reported.
func (e *Engine) WithProgressSink(sink ProgressSink) *Engine {
	e.progress = sink
	return e
}

// Config returns the scoring configuration the engine was built with.
func (e *Engine) Config() match.Config {
	return e.cfg
}

// Availability reports which data sources are present for a song/playlist pair.
func Availability(song match.Song, profile match.PlaylistProfile, songEmbedding []float32) match.DataAvailability {
	return match.DataAvailability{
		HasEmbedding:     len(songEmbedding) > 0 && len(profile.Embedding) > 0,
		HasGenres:        len(song.Genres) > 0 && len(profile.GenreDistribution) > 0,
		HasAudioFeatures: !song.Features.Empty() && len(profile.AudioCentroid) > 0,
		HasAnalysis:      song.Analysis != nil,
		HasRecentSongs:   len(profile.RecentSongs) > 0,
	}
}

// ScorePair computes the score of one song against one playlist.
// The result is unranked. Cheap factors are always computed; semantic, context and
// flow run only when the song has analysis and the cheap subtotal clears DeepAnalysisThreshold.
func (e *Engine) ScorePair(
	song match.Song, profile match.PlaylistProfile, songEmbedding []float32,
) (res match.Result, err error) {
	if song.ID == "" {
		return match.Result{}, fmt.Errorf("song id is empty: %w", domain.ErrInvalidInput)
	}
	if profile.PlaylistID == "" {
		return match.Result{}, fmt.Errorf("playlist id is empty: %w", domain.ErrInvalidInput)
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.MatchPairsScoredTotal.WithLabelValues("error").Inc()
			res = match.Result{}
			err = fmt.Errorf("score %s/%s: %v: %w", song.ID, profile.PlaylistID, r, domain.ErrCompute)
		}
	}()

	avail := Availability(song, profile, songEmbedding)
	weights := scoring.AdaptiveWeights(e.cfg.Weights, avail)

	var f match.ScoreFactors
	if e.cfg.EnableVectorScoring && avail.HasEmbedding {
		f.Vector = scoring.VectorScore(songEmbedding, profile.Embedding)
	}
	f.Genre = scoring.GenreScore(song.Genres, profile.GenreDistribution)
	f.Audio = scoring.AudioScore(song.Features, profile.AudioCentroid, e.cfg.AudioWeights)

	early := weights.Vector*f.Vector + weights.Genre*f.Genre + weights.Audio*f.Audio
	if avail.HasAnalysis && early > e.cfg.DeepAnalysisThreshold {
		metrics.MatchDeepAnalysisTotal.Inc()

		a := song.Analysis
		f.Semantic = scoring.ThematicScore(a.Themes, profile.Themes, scoring.DefaultThemeWeight)
		f.Context = scoring.ContextScore(a.Contexts, profile.Contexts)

		var energy, valence *float64
		if song.Features != nil {
			energy, valence = song.Features.Energy, song.Features.Valence
		}
		f.Flow = scoring.FlowScore(a.Mood, energy, valence, profile.RecentSongs)
	}

	score := weights.Apply(f)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		metrics.MatchPairsScoredTotal.WithLabelValues("error").Inc()
		return match.Result{}, fmt.Errorf("score %s/%s is not finite: %w",
			song.ID, profile.PlaylistID, domain.ErrCompute)
	}
	metrics.MatchPairsScoredTotal.WithLabelValues("ok").Inc()

	return match.Result{
		SongID:     song.ID,
		PlaylistID: profile.PlaylistID,
		Score:      min(1, max(0, score)),
		Factors:    f,
		Confidence: avail.Confidence(),
	}, nil
}

// MatchSong ranks profiles for one song. Pairs that fail to score are skipped.
// Results are sorted by score (ties keep profile order), filtered by
// MinScoreThreshold, capped at MaxResultsPerSong and ranked from 1.
func (e *Engine) MatchSong(
	song match.Song, profiles []match.PlaylistProfile, embeddings map[string][]float32,
) ([]match.Result, error) {
	if song.ID == "" {
		return nil, fmt.Errorf("song id is empty: %w", domain.ErrInvalidInput)
	}

	emb := embeddings[song.ID]
	results := make([]match.Result, 0, len(profiles))
	for _, p := range profiles {
		r, err := e.ScorePair(song, p, emb)
		if err != nil {
			e.logger.Debug("Pair skipped",
				zap.String("song_id", song.ID),
				zap.String("playlist_id", p.PlaylistID),
				zap.Error(err),
			)
			continue
		}
		results = append(results, r)
	}

	slices.SortStableFunc(results, func(a, b match.Result) int {
		return cmp.Compare(b.Score, a.Score)
	})

	kept := results[:0]
	for _, r := range results {
		if r.Score >= e.cfg.MinScoreThreshold {
			kept = append(kept, r)
		}
	}
	if e.cfg.MaxResultsPerSong > 0 && len(kept) > e.cfg.MaxResultsPerSong {
		kept = kept[:e.cfg.MaxResultsPerSong]
	}
	for i := range kept {
		kept[i].Rank = i + 1
	}
	return kept, nil
}

// MatchBatch matches every song in input order. A song that errors or keeps no
// match is recorded as failed and left out of Matches. The batch always runs to
// completion; ctx is only passed to the progress sink.
func (e *Engine) MatchBatch(
	ctx context.Context,
	songs []match.Song,
	profiles []match.PlaylistProfile,
	embeddings map[string][]float32,
	opts BatchOptions,
) match.BatchResult {
	out := match.BatchResult{Matches: make(map[string][]match.Result)}
	if len(songs) == 0 || len(profiles) == 0 {
		return out
	}

	start := time.Now()
	emit := opts.JobID != "" && e.progress != nil
	total := len(songs)
	var done, succeeded, failed int

	for i, song := range songs {
		if emit {
			e.progress.EmitItem(ctx, opts.JobID, ItemEvent{
				ItemID: song.ID, Status: ItemInProgress, Label: song.Name, Index: i,
			})
		}

		results, err := e.MatchSong(song, profiles, embeddings)
		status := ItemSucceeded
		switch {
		case err != nil:
			e.logger.Warn("Song match failed", zap.String("song_id", song.ID), zap.Error(err))
			status = ItemFailed
		case len(results) == 0:
			status = ItemFailed
		}

		done++
		if status == ItemSucceeded {
			succeeded++
			out.Matches[song.ID] = results
			metrics.MatchBatchSongsTotal.WithLabelValues("matched").Inc()
		} else {
			failed++
			out.Failed = append(out.Failed, song.ID)
			metrics.MatchBatchSongsTotal.WithLabelValues("failed").Inc()
		}

		if emit {
			e.progress.EmitItem(ctx, opts.JobID, ItemEvent{
				ItemID: song.ID, Status: status, Label: song.Name, Index: i,
			})
			if done%progressEvery == 0 || done == total {
				e.progress.EmitProgress(ctx, opts.JobID, ProgressEvent{
					Total: total, Done: done, Succeeded: succeeded, Failed: failed,
				})
			}
		}
	}

	out.Stats = match.Stats{
		Total:    total,
		Matched:  succeeded,
		Computed: done,
		Failed:   failed,
	}

	elapsed := time.Since(start)
	metrics.MatchBatchDuration.Observe(elapsed.Seconds())
	e.logger.Info("Batch matched",
		zap.String("job_id", opts.JobID),
		zap.Int("songs", total),
		zap.Int("playlists", len(profiles)),
		zap.Int("matched", succeeded),
		zap.Int("failed", failed),
		zap.Duration("duration", elapsed),
	)
	return out
}
