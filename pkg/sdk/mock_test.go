package playmatch

import (
	"context"

	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
)

// --- Embedder mocks ---

type mockEmbedder struct {
	fn    func(ctx context.Context, text string) (EmbeddingResult, error)
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	m.calls++
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockHealthEmbedder struct {
	mockEmbedder
	healthErr error
}

func (m *mockHealthEmbedder) HealthCheck(context.Context) error {
	return m.healthErr
}

// vectors returns a fixed vector per text.
func vectors(byText map[string][]float32) *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		return EmbeddingResult{Embedding: byText[text], PromptTokens: 2, TotalTokens: 2}, nil
	}}
}

// --- matchUseCase mock ---

type mockMatchUC struct {
	getFn        func(ctx context.Context, req matchcache.Request) (BatchResult, error)
	invalidateFn func(playlistIDs []string) int
	clearFn      func() int
	stats        matchcache.Stats
}

func (m *mockMatchUC) GetOrComputeMatches(ctx context.Context, req matchcache.Request) (BatchResult, error) {
	return m.getFn(ctx, req)
}

func (m *mockMatchUC) InvalidateForPlaylists(playlistIDs []string) int {
	return m.invalidateFn(playlistIDs)
}

func (m *mockMatchUC) InvalidateAll() int {
	return m.clearFn()
}

func (m *mockMatchUC) Stats() matchcache.Stats {
	return m.stats
}

// --- Fixtures ---

func testSong(id string) Song {
	return Song{
		ID:     id,
		Name:   "Song " + id,
		Genres: []string{"indie rock"},
		Features: &AudioFeatures{
			Energy:  Float(0.7),
			Valence: Float(0.5),
		},
	}
}

func testProfile(id string) PlaylistProfile {
	return PlaylistProfile{
		PlaylistID:        id,
		Embedding:         []float32{1, 0, 0},
		AudioCentroid:     map[string]float64{"energy": 0.7, "valence": 0.5},
		GenreDistribution: map[string]int{"indie rock": 10},
	}
}

func testRequest(accountID string) MatchRequest {
	return MatchRequest{
		AccountID:  accountID,
		Songs:      []Song{testSong("s1"), testSong("s2")},
		Profiles:   []PlaylistProfile{testProfile("p1")},
		Embeddings: map[string][]float32{"s1": {1, 0, 0}, "s2": {1, 0, 0}},
	}
}
