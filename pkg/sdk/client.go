package playmatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/playmatch/internal/db/redis"
	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/metrics"
	budgetrepo "github.com/kailas-cloud/playmatch/internal/repository/budget"
	"github.com/kailas-cloud/playmatch/internal/repository/embcache"
	"github.com/kailas-cloud/playmatch/internal/repository/matchstore"
	"github.com/kailas-cloud/playmatch/internal/repository/sqlitestore"
	embeddinguc "github.com/kailas-cloud/playmatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/playmatch/internal/usecase/health"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
	"github.com/kailas-cloud/playmatch/internal/usecase/semantic"
	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	sdkProvider             = "sdk"
)

// Internal interfaces, swapped for mocks in tests.
type matchUseCase interface {
	GetOrComputeMatches(ctx context.Context, req matchcache.Request) (BatchResult, error)
	InvalidateForPlaylists(playlistIDs []string) int
	InvalidateAll() int
	Stats() matchcache.Stats
}

type similarityUseCase interface {
	Similarity(ctx context.Context, a, b string) float64
	AreSimilar(ctx context.Context, a, b string, threshold float64) bool
}

type usageUseCase interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// Client is the playmatch SDK entry point. It is safe for concurrent use.
type Client struct {
	closers      []func()
	matchSvc     matchUseCase
	semanticSvc  similarityUseCase
	healthSvc    healthUseCase
	usageSvc     usageUseCase
	matchConfig  MatchConfig
	modelVersion string
	obs          *observer
}

// New creates a Client. Without WithRedis or WithSQLite results are cached
// in memory only. The provided context bounds the initial connection.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		matchConfig:  DefaultMatchConfig(),
		modelVersion: domain.DefaultModelConfig().Version(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.matchConfig.Validate(); err != nil {
		return nil, fmt.Errorf("playmatch: %w: %w", ErrInvalidInput, err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		matchConfig:  cfg.matchConfig,
		modelVersion: cfg.modelVersion,
		obs:          obs,
	}

	var (
		kv     *dbRedis.Store
		store  matchcache.Store
		pinger healthuc.DBPinger
	)
	switch cfg.driver {
	case "redis":
		kv, err = connectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, kv.Close)
		store = matchstore.New(kv)
		pinger = kv
	case "sqlite":
		sq, err := sqlitestore.Open(ctx, cfg.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("playmatch: open sqlite store: %w", err)
		}
		c.closers = append(c.closers, func() { _ = sq.Close() })
		store = sq
		pinger = sq
	case "":
	default:
		return nil, fmt.Errorf("playmatch: unknown driver %q", cfg.driver)
	}

	c.wire(ctx, cfg, kv, store, pinger)
	return c, nil
}

func connectRedis(ctx context.Context, cfg *clientConfig) (*dbRedis.Store, error) {
	if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
		return nil, errors.New("playmatch: redis address required")
	}
	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("playmatch: create redis store: %w", err)
	}
	if err := kv.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		kv.Close()
		return nil, fmt.Errorf("playmatch: redis not ready: %w", err)
	}
	return kv, nil
}

// wire builds the use cases. kv, store and pinger may be nil.
func (c *Client) wire(
	ctx context.Context, cfg *clientConfig, kv *dbRedis.Store, store matchcache.Store, pinger healthuc.DBPinger,
) {
	logger := zap.NewNop()

	var budget *embeddinguc.BudgetTracker
	if cfg.dailyTokens > 0 || cfg.monthlyTokens > 0 {
		action := embeddinguc.BudgetActionWarn
		if cfg.rejectOverrun {
			action = embeddinguc.BudgetActionReject
		}
		budget = embeddinguc.NewBudgetTracker(sdkProvider, cfg.dailyTokens, cfg.monthlyTokens, action, logger)
		if kv != nil {
			budget.WithStore(ctx, budgetrepo.New(kv))
		}
	}

	// Pass nil interfaces (not typed nil pointers) when a piece is missing.
	var (
		budgetChecker embeddinguc.BudgetChecker
		budgetReader  usageuc.BudgetReader
		embedder      domain.Embedder
	)
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	health := healthuc.New(pinger)
	if cfg.embedder != nil {
		var inner domain.Embedder = &embedderAdapter{inner: cfg.embedder}
		if kv != nil {
			inner = embcache.New(inner, kv, cfg.modelVersion, 0, metrics.EmbeddingCacheTotal, logger)
		}
		resilient := embeddinguc.NewResilientEmbedder(
			inner, sdkProvider, cfg.modelVersion, embeddinguc.Options{}, budgetChecker, logger,
		)
		embedder = resilient
		health = health.WithEmbedding(resilient)
	}
	c.healthSvc = health

	engine := matching.New(cfg.matchConfig, logger)
	c.matchSvc = matchcache.New(engine, store, matchcache.StaticModelVersion(cfg.modelVersion), logger).
		WithMemoryLimits(cfg.cacheTTL, cfg.cacheSize)
	c.semanticSvc = semantic.New(embedder, logger).WithThreshold(cfg.threshold)
	c.usageSvc = usageuc.New(budgetReader)
}

// Close releases all resources.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Match scores every song against every profile and returns ranked results per song.
// Repeated calls with the same songs, profiles and configuration are served from cache.
func (c *Client) Match(ctx context.Context, req MatchRequest) (res BatchResult, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("match", start, err,
			"songs", len(req.Songs), "playlists", len(req.Profiles), "cached", res.Stats.Cached)
	}()

	res, err = c.matchSvc.GetOrComputeMatches(ctx, req)
	if err != nil {
		return BatchResult{}, fmt.Errorf("match: %w", err)
	}
	c.obs.observeBatch(res.Stats)
	return res, nil
}

// Invalidate drops cached results that involve any of the given playlists.
// It returns the number of removed entries. Persisted results are unaffected
// because a changed playlist hashes to a new context.
func (c *Client) Invalidate(playlistIDs ...string) int {
	start := time.Now()
	n := c.matchSvc.InvalidateForPlaylists(playlistIDs)
	c.obs.observe("invalidate", start, nil, "playlists", len(playlistIDs), "removed", n)
	return n
}

// ClearCache empties the in-memory result cache.
func (c *Client) ClearCache() int {
	start := time.Now()
	n := c.matchSvc.InvalidateAll()
	c.obs.observe("clear_cache", start, nil, "removed", n)
	return n
}

// CacheStats returns the in-memory cache counters.
func (c *Client) CacheStats() CacheStats {
	return c.matchSvc.Stats()
}

// Similarity returns the semantic similarity of two labels in [0,1].
func (c *Client) Similarity(ctx context.Context, a, b string) float64 {
	start := time.Now()
	s := c.semanticSvc.Similarity(ctx, a, b)
	c.obs.observe("similarity", start, nil)
	return s
}

// AreSimilar compares two labels against threshold. A threshold <= 0 uses the default.
func (c *Client) AreSimilar(ctx context.Context, a, b string, threshold float64) bool {
	return c.semanticSvc.AreSimilar(ctx, a, b, threshold)
}

// Hash returns the content fingerprints the cache would use for songs and profiles.
func (c *Client) Hash(songs []Song, profiles []PlaylistProfile) (Hashes, error) {
	h, err := matchcache.ContextHash(songs, profiles, c.matchConfig, c.modelVersion)
	if err != nil {
		return Hashes{}, fmt.Errorf("hash: %w", err)
	}
	return h, nil
}
