package matchcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
	"github.com/kailas-cloud/playmatch/internal/metrics"
	"github.com/kailas-cloud/playmatch/internal/ttlcache"
	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
)

// Memory tier defaults.
const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 100
)

// Request is one matching call.
type Request struct {
	// AccountID enables the persistent tier. Anonymous requests use memory only.
	AccountID string
	// JobID keys progress events when the engine runs.
	JobID      string
	Songs      []match.Song
	Profiles   []match.PlaylistProfile
	Embeddings map[string][]float32
}

// Stats are cache counters. Hits include memory and persistent hits.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// Cache serves matching results from memory, then the persistent store, then the engine.
type Cache struct {
	engine Matcher
	store  Store
	models ModelVersioner
	logger *zap.Logger
	now    func() time.Time

	mem *ttlcache.Cache[string, match.CachedEntry]
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	// syncMu guards reportedEvictions.
	syncMu            sync.Mutex
	reportedEvictions int64
}

// New creates a cache. store may be nil, which disables the persistent tier.
func New(engine Matcher, store Store, models ModelVersioner, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		engine: engine,
		store:  store,
		models: models,
		logger: logger,
		now:    time.Now,
	}
	return c.WithMemoryLimits(DefaultTTL, DefaultMaxEntries)
}

// WithMemoryLimits replaces the memory tier. Call before first use.
func (c *Cache) WithMemoryLimits(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c.ttl = ttl
	c.mem = ttlcache.New(ttl, maxEntries, ttlcache.WithClock[string, match.CachedEntry](func() time.Time {
		return c.now()
	}))
	return c
}

// GetOrComputeMatches returns matches for the request, computing them on a miss.
// Persistent read failures are returned; persistent write failures are only logged.
func (c *Cache) GetOrComputeMatches(ctx context.Context, req Request) (match.BatchResult, error) {
	if len(req.Songs) == 0 || len(req.Profiles) == 0 {
		return match.BatchResult{Matches: make(map[string][]match.Result)}, nil
	}

	version, err := c.models.ModelVersion(ctx)
	if err != nil {
		return match.BatchResult{}, fmt.Errorf("model version: %w", err)
	}
	cfg := c.engine.Config()
	hashes, err := ContextHash(req.Songs, req.Profiles, cfg, version)
	if err != nil {
		return match.BatchResult{}, err
	}

	if entry, ok := c.mem.Get(hashes.Context); ok {
		c.hits.Add(1)
		metrics.MatchCacheTotal.WithLabelValues("memory", "hit").Inc()
		c.syncMetrics()
		return cachedResult(req.Songs, entry.Matches), nil
	}
	metrics.MatchCacheTotal.WithLabelValues("memory", "miss").Inc()

	if req.AccountID != "" && c.store != nil {
		matches, found, err := c.lookupPersistent(ctx, req, hashes.Context)
		if err != nil {
			return match.BatchResult{}, err
		}
		if found {
			c.hits.Add(1)
			metrics.MatchCacheTotal.WithLabelValues("persistent", "hit").Inc()
			c.remember(hashes.Context, matches)
			return cachedResult(req.Songs, matches), nil
		}
		metrics.MatchCacheTotal.WithLabelValues("persistent", "miss").Inc()
	}

	c.misses.Add(1)
	res := c.engine.MatchBatch(ctx, req.Songs, req.Profiles, req.Embeddings, matching.BatchOptions{JobID: req.JobID})

	if req.AccountID != "" && c.store != nil {
		c.persist(ctx, req.AccountID, hashes, version, cfg, req, res)
	}
	c.remember(hashes.Context, res.Matches)
	return res, nil
}

// InvalidateForPlaylists drops memory entries whose matches reference any of the playlists.
// It returns the number of entries removed.
func (c *Cache) InvalidateForPlaylists(playlistIDs []string) int {
	if len(playlistIDs) == 0 {
		return 0
	}
	ids := make(map[string]struct{}, len(playlistIDs))
	for _, id := range playlistIDs {
		ids[id] = struct{}{}
	}

	n := c.mem.DeleteFunc(func(_ string, e match.CachedEntry) bool {
		for _, results := range e.Matches {
			for _, r := range results {
				if _, ok := ids[r.PlaylistID]; ok {
					return true
				}
			}
		}
		return false
	})
	c.syncMetrics()
	c.logger.Info("Match cache invalidated for playlists",
		zap.Strings("playlist_ids", playlistIDs), zap.Int("removed", n))
	return n
}

// InvalidateAll clears the memory tier and returns the number of entries removed.
func (c *Cache) InvalidateAll() int {
	n := c.mem.Clear()
	c.syncMetrics()
	c.logger.Info("Match cache cleared", zap.Int("removed", n))
	return n
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.mem.Evictions(),
		Size:      c.mem.Len(),
	}
}

func (c *Cache) lookupPersistent(
	ctx context.Context, req Request, hash string,
) (map[string][]match.Result, bool, error) {
	pc, err := c.store.GetContextByHash(ctx, hash, req.AccountID)
	if err != nil {
		return nil, false, fmt.Errorf("get match context: %w", err)
	}
	if pc == nil {
		return nil, false, nil
	}

	songIDs := uniqueSongIDs(req.Songs)
	stored, err := c.store.GetResultsForSongs(ctx, pc.ID, songIDs)
	if err != nil {
		return nil, false, fmt.Errorf("get match results: %w", err)
	}
	if len(stored) != len(songIDs) {
		c.logger.Debug("Partial persisted match set",
			zap.String("context_id", pc.ID),
			zap.Int("requested", len(songIDs)),
			zap.Int("stored", len(stored)),
		)
		return nil, false, nil
	}

	songs := make(map[string]match.Song, len(req.Songs))
	for _, s := range req.Songs {
		songs[s.ID] = s
	}
	profiles := make(map[string]match.PlaylistProfile, len(req.Profiles))
	for _, p := range req.Profiles {
		profiles[p.PlaylistID] = p
	}

	for songID, results := range stored {
		for i := range results {
			p, ok := profiles[results[i].PlaylistID]
			if !ok {
				continue
			}
			avail := matching.Availability(songs[songID], p, req.Embeddings[songID])
			results[i].Confidence = avail.Confidence()
		}
	}
	return stored, true, nil
}

func (c *Cache) persist(
	ctx context.Context,
	accountID string,
	h Hashes,
	version string,
	cfg match.Config,
	req Request,
	res match.BatchResult,
) {
	ctx = context.WithoutCancel(ctx)
	log := c.logger.With(zap.String("account_id", accountID), zap.String("context_hash", h.Context))

	pc, err := c.store.CreateContext(ctx, match.Context{
		AccountID:       accountID,
		ContextHash:     h.Context,
		SongSetHash:     h.SongSet,
		PlaylistSetHash: h.PlaylistSet,
		ConfigHash:      h.Config,
		ModelVersion:    version,
		Weights:         cfg.Weights,
		SongCount:       len(req.Songs),
		PlaylistCount:   len(req.Profiles),
		CreatedAt:       c.now().UTC(),
	})
	switch {
	case errors.Is(err, domain.ErrConflict):
		existing, gerr := c.store.GetContextByHash(ctx, h.Context, accountID)
		if gerr != nil || existing == nil {
			metrics.MatchPersistErrorsTotal.WithLabelValues("refetch_context").Inc()
			log.Warn("Failed to refetch match context after conflict", zap.Error(gerr))
			return
		}
		pc = *existing
	case err != nil:
		metrics.MatchPersistErrorsTotal.WithLabelValues("create_context").Inc()
		log.Warn("Failed to persist match context", zap.Error(err))
		return
	}

	rows := flatten(res.Matches)
	if len(rows) == 0 {
		return
	}
	err = c.store.InsertResults(ctx, pc.ID, rows)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		metrics.MatchPersistErrorsTotal.WithLabelValues("insert_results").Inc()
		log.Warn("Failed to persist match results", zap.String("context_id", pc.ID), zap.Error(err))
	}
}

func (c *Cache) remember(hash string, matches map[string][]match.Result) {
	now := c.now()
	c.mem.Set(hash, match.CachedEntry{
		ContextHash: hash,
		Matches:     cloneMatches(matches),
		CreatedAt:   now,
		ExpiresAt:   now.Add(c.ttl),
	})
	c.syncMetrics()
}

// syncMetrics pushes eviction and size changes to Prometheus.
func (c *Cache) syncMetrics() {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	ev := c.mem.Evictions()
	if d := ev - c.reportedEvictions; d > 0 {
		metrics.MatchCacheEvictionsTotal.Add(float64(d))
		c.reportedEvictions = ev
	}
	metrics.MatchCacheEntries.Set(float64(c.mem.Len()))
}

// cachedResult builds a batch result from cached matches, marking every result as cached.
func cachedResult(songs []match.Song, matches map[string][]match.Result) match.BatchResult {
	out := match.BatchResult{Matches: cloneMatches(matches)}
	for _, results := range out.Matches {
		for i := range results {
			results[i].FromCache = true
		}
	}

	ids := uniqueSongIDs(songs)
	for _, id := range ids {
		if _, ok := out.Matches[id]; !ok {
			out.Failed = append(out.Failed, id)
		}
	}
	out.Stats = match.Stats{
		Total:   len(ids),
		Matched: len(out.Matches),
		Cached:  len(out.Matches),
		Failed:  len(out.Failed),
	}
	return out
}

func cloneMatches(in map[string][]match.Result) map[string][]match.Result {
	out := make(map[string][]match.Result, len(in))
	for id, results := range in {
		out[id] = slices.Clone(results)
	}
	return out
}

// flatten returns all results ordered by song ID then rank.
func flatten(matches map[string][]match.Result) []match.Result {
	ids := make([]string, 0, len(matches))
	for id := range matches {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var rows []match.Result
	for _, id := range ids {
		rows = append(rows, matches[id]...)
	}
	return rows
}

func uniqueSongIDs(songs []match.Song) []string {
	seen := make(map[string]struct{}, len(songs))
	ids := make([]string, 0, len(songs))
	for _, s := range songs {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		ids = append(ids, s.ID)
	}
	return ids
}
