package matchcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
)

// --- Mocks ---

// mockMatcher matches every song to the first profile unless batchFn is set.
type mockMatcher struct {
	cfg     match.Config
	batchFn func(songs []match.Song, profiles []match.PlaylistProfile) match.BatchResult
	calls   int
	jobIDs  []string
}

func newMockMatcher() *mockMatcher {
	return &mockMatcher{cfg: match.DefaultConfig()}
}

func (m *mockMatcher) Config() match.Config { return m.cfg }

func (m *mockMatcher) MatchBatch(
	_ context.Context, songs []match.Song, profiles []match.PlaylistProfile,
	_ map[string][]float32, opts matching.BatchOptions,
) match.BatchResult {
	m.calls++
	m.jobIDs = append(m.jobIDs, opts.JobID)
	if m.batchFn != nil {
		return m.batchFn(songs, profiles)
	}
	out := match.BatchResult{Matches: make(map[string][]match.Result)}
	for _, s := range songs {
		out.Matches[s.ID] = []match.Result{{
			SongID: s.ID, PlaylistID: profiles[0].PlaylistID, Score: 0.8, Rank: 1, Confidence: 0.2,
		}}
	}
	out.Stats = match.Stats{Total: len(songs), Matched: len(songs), Computed: len(songs)}
	return out
}

// mockStore implements Store with per-method function fields.
type mockStore struct {
	mu sync.Mutex

	getContextFn func(ctx context.Context, hash, accountID string) (*match.Context, error)
	getResultsFn func(ctx context.Context, contextID string, songIDs []string) (map[string][]match.Result, error)
	createFn     func(ctx context.Context, c match.Context) (match.Context, error)
	insertFn     func(ctx context.Context, contextID string, results []match.Result) error

	getContextCalls int
	created         []match.Context
	inserted        map[string][]match.Result
	ctxErrs         []error
}

func newMockStore() *mockStore {
	return &mockStore{inserted: make(map[string][]match.Result)}
}

func (m *mockStore) GetContextByHash(ctx context.Context, hash, accountID string) (*match.Context, error) {
	m.mu.Lock()
	m.getContextCalls++
	m.mu.Unlock()
	if m.getContextFn != nil {
		return m.getContextFn(ctx, hash, accountID)
	}
	return nil, nil
}

func (m *mockStore) GetResultsForSongs(
	ctx context.Context, contextID string, songIDs []string,
) (map[string][]match.Result, error) {
	if m.getResultsFn != nil {
		return m.getResultsFn(ctx, contextID, songIDs)
	}
	return map[string][]match.Result{}, nil
}

func (m *mockStore) CreateContext(ctx context.Context, c match.Context) (match.Context, error) {
	m.mu.Lock()
	m.created = append(m.created, c)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = "ctx-1"
	return c, nil
}

func (m *mockStore) InsertResults(ctx context.Context, contextID string, results []match.Result) error {
	m.mu.Lock()
	m.inserted[contextID] = append(m.inserted[contextID], results...)
	m.mu.Unlock()
	if m.insertFn != nil {
		return m.insertFn(ctx, contextID, results)
	}
	return nil
}

// --- Fixtures ---

func testSongs(ids ...string) []match.Song {
	songs := make([]match.Song, len(ids))
	for i, id := range ids {
		songs[i] = match.Song{
			ID:      id,
			Name:    "Song " + id,
			Artists: []string{"Artist"},
			Genres:  []string{"pop"},
			Features: &match.AudioFeatures{
				Energy: match.Float(0.5),
			},
		}
	}
	return songs
}

func testProfiles(ids ...string) []match.PlaylistProfile {
	profiles := make([]match.PlaylistProfile, len(ids))
	for i, id := range ids {
		profiles[i] = match.PlaylistProfile{
			PlaylistID:        id,
			GenreDistribution: map[string]int{"pop": 3, "rock": 1},
			AudioCentroid:     map[string]float64{"energy": 0.5},
		}
	}
	return profiles
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(engine Matcher, store Store) (*Cache, *testClock) {
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New(engine, store, StaticModelVersion("model-v1"), nil)
	c.now = clock.Now
	return c, clock
}
