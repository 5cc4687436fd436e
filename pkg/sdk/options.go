package playmatch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "redis", "sqlite" or "" (memory only)
	addrs      []string
	password   string
	sqlitePath string

	embedder     Embedder
	modelVersion string

	matchConfig MatchConfig
	cacheTTL    time.Duration
	cacheSize   int
	threshold   float64

	dailyTokens   int64
	monthlyTokens int64
	rejectOverrun bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis persists match contexts in Redis. Embeddings of labels and the
// token budget counters are stored there too.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSQLite persists match contexts in a SQLite file. ":memory:" keeps them
// for the life of the client.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.sqlitePath = path
	})
}

// WithEmbedder sets the text embedding provider used for semantic comparison
// of moods, themes and contexts.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithModelVersion sets the version string of the model bundle that produced
// the song and playlist vectors. Changing it invalidates persisted results.
// Defaults to the stock model.
func WithModelVersion(v string) Option {
	return optionFunc(func(c *clientConfig) {
		c.modelVersion = v
	})
}

// WithMatchConfig replaces the scoring configuration.
func WithMatchConfig(cfg MatchConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.matchConfig = cfg
	})
}

// WithCacheLimits sizes the in-memory result cache.
// Defaults: 1h TTL, 100 entries.
func WithCacheLimits(ttl time.Duration, maxEntries int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
		c.cacheSize = maxEntries
	})
}

// WithSemanticThreshold sets the default similarity threshold of AreSimilar.
func WithSemanticThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithTokenBudget caps embedding tokens per UTC day and month. Zero means no cap.
// With reject set, calls past the cap fail with ErrEmbeddingQuotaExceeded;
// otherwise they are logged and let through.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
		c.rejectOverrun = reject
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
