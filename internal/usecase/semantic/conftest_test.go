package semantic

import (
	"context"
	"errors"

	"github.com/kailas-cloud/playmatch/internal/domain"
)

// --- Mocks ---

// mockEmbedder returns vectors from a fixed table keyed by text.
type mockEmbedder struct {
	vectors    map[string][]float32
	calls      map[string]int
	batchCalls int
	tokens     int
}

func newMockEmbedder(vectors map[string][]float32) *mockEmbedder {
	return &mockEmbedder{vectors: vectors, calls: make(map[string]int), tokens: 2}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls[text]++
	v, ok := m.vectors[text]
	if !ok {
		return domain.EmbeddingResult{}, errors.New("unknown text")
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: m.tokens}, nil
}

// mockBatchEmbedder adds a batch endpoint.
type mockBatchEmbedder struct {
	*mockEmbedder
}

func (m mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		out.Embeddings[i] = m.vectors[t]
		out.TotalTokens += m.tokens
	}
	return out, nil
}

func moodVectors() map[string][]float32 {
	return map[string][]float32{
		"happy":    {1, 0, 0},
		"joyful":   {0.9, 0.1, 0},
		"cheerful": {0.8, 0.3, 0},
		"sad":      {0, 1, 0},
		"angry":    {0, 0, 1},
	}
}
