package playmatch

import (
	"context"
	"errors"
	"testing"
)

func TestEmbedderAdapter(t *testing.T) {
	mock := vectors(map[string][]float32{"hello": {1, 2, 3}})

	adapter := &embedderAdapter{inner: mock}
	result, err := adapter.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", mock.calls)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	mock := &mockEmbedder{
		fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
			return EmbeddingResult{}, errors.New("provider down")
		},
	}

	adapter := &embedderAdapter{inner: mock}
	if _, err := adapter.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from adapter")
	}
	if _, err := adapter.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error from batch fallback")
	}
}

func TestEmbedderAdapter_BatchFallback(t *testing.T) {
	mock := vectors(map[string][]float32{"a": {1}, "b": {2}})

	res, err := (&embedderAdapter{inner: mock}).BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Errorf("expected one call per text, got %d", mock.calls)
	}
	if res.Embeddings[1][0] != 2 || res.TotalTokens != 4 {
		t.Errorf("unexpected batch result %+v", res)
	}
}

func TestEmbedderAdapter_BatchPassthrough(t *testing.T) {
	mock := &mockBatchEmbedder{
		batchFn: func(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
			out := BatchEmbeddingResult{TotalTokens: 9}
			for range texts {
				out.Embeddings = append(out.Embeddings, []float32{0.5})
			}
			return out, nil
		},
	}

	res, err := (&embedderAdapter{inner: mock}).BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 0 {
		t.Errorf("single Embed called %d times, want 0", mock.calls)
	}
	if len(res.Embeddings) != 3 || res.TotalTokens != 9 {
		t.Errorf("unexpected batch result %+v", res)
	}
}

func TestEmbedderAdapter_HealthCheck(t *testing.T) {
	if err := (&embedderAdapter{inner: vectors(nil)}).HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health probe must report healthy, got %v", err)
	}
	down := &mockHealthEmbedder{healthErr: errors.New("down")}
	if err := (&embedderAdapter{inner: down}).HealthCheck(context.Background()); err == nil {
		t.Error("expected health error to pass through")
	}
}
