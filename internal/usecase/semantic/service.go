package semantic

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/scoring"
	"github.com/kailas-cloud/playmatch/internal/ttlcache"
)

// Defaults for the embedding cache and similarity threshold.
const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 1000
	DefaultThreshold  = 0.65
)

// Match is a candidate string with its similarity to a target.
type Match struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Matcher compares short free-text labels such as moods and themes.
// Exact and substring matches short-circuit; everything else is compared
// by embedding cosine similarity.
type Matcher struct {
	embed     domain.Embedder
	cache     *ttlcache.Cache[string, []float32]
	threshold float64
	logger    *zap.Logger
}

// New creates a matcher. embed may be nil, in which case only exact and
// substring matches succeed.
func New(embed domain.Embedder, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		embed:     embed,
		cache:     ttlcache.New[string, []float32](DefaultTTL, DefaultMaxEntries),
		threshold: DefaultThreshold,
		logger:    logger,
	}
}

// WithCacheLimits replaces the embedding cache. Call before first use.
func (m *Matcher) WithCacheLimits(ttl time.Duration, maxEntries int) *Matcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	m.cache = ttlcache.New[string, []float32](ttl, maxEntries)
	return m
}

// WithThreshold sets the default similarity threshold.
func (m *Matcher) WithThreshold(threshold float64) *Matcher {
	if threshold > 0 {
		m.threshold = threshold
	}
	return m
}

// Threshold returns the default similarity threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// AreSimilar reports whether a and b match. A threshold <= 0 uses the default.
func (m *Matcher) AreSimilar(ctx context.Context, a, b string, threshold float64) bool {
	na, nb := scoring.Normalize(a), scoring.Normalize(b)
	if scoring.Overlaps(na, nb) {
		return true
	}
	return m.similarity(ctx, na, nb) >= m.resolve(threshold)
}

// Similarity returns the cosine similarity of the embeddings of a and b.
// Equal strings score 1. It is 0 without an embedder or when an embedding fails.
func (m *Matcher) Similarity(ctx context.Context, a, b string) float64 {
	return m.similarity(ctx, scoring.Normalize(a), scoring.Normalize(b))
}

// FindSimilar returns the candidates that match target, most similar first.
// Exact and substring matches score 1.
func (m *Matcher) FindSimilar(ctx context.Context, target string, candidates []string, threshold float64) []Match {
	threshold = m.resolve(threshold)
	nt := scoring.Normalize(target)

	var out []Match
	for _, c := range candidates {
		nc := scoring.Normalize(c)
		score := 1.0
		if !scoring.Overlaps(nt, nc) {
			score = m.similarity(ctx, nt, nc)
		}
		if score >= threshold {
			out = append(out, Match{Text: c, Score: score})
		}
	}
	slices.SortStableFunc(out, func(a, b Match) int { return cmp.Compare(b.Score, a.Score) })
	return out
}

// CountMatches counts items of left that match at least one item of right.
func (m *Matcher) CountMatches(ctx context.Context, left, right []string, threshold float64) int {
	threshold = m.resolve(threshold)
	n := 0
	for _, l := range left {
		for _, r := range right {
			if m.AreSimilar(ctx, l, r, threshold) {
				n++
				break
			}
		}
	}
	return n
}

// SimilarityMatrix returns similarity[i][j] between left[i] and right[j].
// Missing embeddings are fetched in one batch first.
func (m *Matcher) SimilarityMatrix(ctx context.Context, left, right []string) [][]float64 {
	m.Warm(ctx, slices.Concat(left, right))

	out := make([][]float64, len(left))
	for i, l := range left {
		out[i] = make([]float64, len(right))
		for j, r := range right {
			out[i][j] = m.Similarity(ctx, l, r)
		}
	}
	return out
}

// Warm embeds every uncached text in one batch call. Failures are logged and
// leave the texts to be embedded individually later.
func (m *Matcher) Warm(ctx context.Context, texts []string) {
	if m.embed == nil {
		return
	}
	var missing []string
	seen := make(map[string]struct{})
	for _, t := range texts {
		n := scoring.Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := m.cache.Get(n); !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return
	}

	res, err := domain.BatchEmbed(ctx, m.embed, missing)
	if err != nil {
		m.logger.Debug("Batch embedding failed", zap.Int("texts", len(missing)), zap.Error(err))
		return
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	for i, vec := range res.Embeddings {
		if i < len(missing) && len(vec) > 0 {
			m.cache.Set(missing[i], vec)
		}
	}
}

func (m *Matcher) similarity(ctx context.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if m.embed == nil {
		return 0
	}
	va, ok := m.embedding(ctx, a)
	if !ok {
		return 0
	}
	vb, ok := m.embedding(ctx, b)
	if !ok {
		return 0
	}
	return scoring.CosineSimilarity(va, vb)
}

func (m *Matcher) embedding(ctx context.Context, text string) ([]float32, bool) {
	if vec, ok := m.cache.Get(text); ok {
		return vec, true
	}
	res, err := m.embed.Embed(ctx, text)
	if err != nil {
		m.logger.Debug("Embedding lookup failed", zap.String("text", text), zap.Error(err))
		return nil, false
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	if len(res.Embedding) == 0 {
		return nil, false
	}
	m.cache.Set(text, res.Embedding)
	return res.Embedding, true
}

func (m *Matcher) resolve(threshold float64) float64 {
	if threshold <= 0 {
		return m.threshold
	}
	return threshold
}
