package chi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/domain/match"
	healthuc "github.com/kailas-cloud/playmatch/internal/usecase/health"
	"github.com/kailas-cloud/playmatch/internal/usecase/matchcache"
	usageuc "github.com/kailas-cloud/playmatch/internal/usecase/usage"
)

// --- mock match service ---

type mockMatchService struct {
	getOrComputeFn func(ctx context.Context, req matchcache.Request) (match.BatchResult, error)
	invalidateFn   func(playlistIDs []string) int
	invalidateAll  func() int
	statsFn        func() matchcache.Stats
}

func (m *mockMatchService) GetOrComputeMatches(ctx context.Context, req matchcache.Request) (match.BatchResult, error) {
	if m.getOrComputeFn != nil {
		return m.getOrComputeFn(ctx, req)
	}
	return match.BatchResult{}, nil
}

func (m *mockMatchService) InvalidateForPlaylists(playlistIDs []string) int {
	if m.invalidateFn != nil {
		return m.invalidateFn(playlistIDs)
	}
	return 0
}

func (m *mockMatchService) InvalidateAll() int {
	if m.invalidateAll != nil {
		return m.invalidateAll()
	}
	return 0
}

func (m *mockMatchService) Stats() matchcache.Stats {
	if m.statsFn != nil {
		return m.statsFn()
	}
	return matchcache.Stats{}
}

// --- mock similarity service ---

type mockSimilarity struct {
	similarityFn func(ctx context.Context, a, b string) float64
	threshold    float64
}

func (m *mockSimilarity) Similarity(ctx context.Context, a, b string) float64 {
	if m.similarityFn != nil {
		return m.similarityFn(ctx, a, b)
	}
	return 0
}

// AreSimilar reuses similarityFn without the request context, so token usage is counted once.
func (m *mockSimilarity) AreSimilar(_ context.Context, a, b string, threshold float64) bool {
	return m.Similarity(context.Background(), a, b) >= threshold
}

func (m *mockSimilarity) Threshold() float64 {
	return m.threshold
}

// --- mock usage service ---

type mockUsage struct {
	reportFn func(period usageuc.Period) usageuc.Report
}

func (m *mockUsage) GetReport(_ context.Context, period usageuc.Period) usageuc.Report {
	if m.reportFn != nil {
		return m.reportFn(period)
	}
	return usageuc.Report{Period: period, Limit: -1, Remaining: -1}
}

// --- mock health service ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	return m.report
}

// --- helpers ---

type testDeps struct {
	matches    *mockMatchService
	similarity *mockSimilarity
	usage      *mockUsage
	health     *mockHealth
}

func newTestDeps() *testDeps {
	return &testDeps{
		matches:    &mockMatchService{},
		similarity: &mockSimilarity{threshold: 0.65},
		usage:      &mockUsage{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
}

func (d *testDeps) router(apiKeys ...string) http.Handler {
	s := NewServer(d.matches, d.similarity, d.usage, d.health, zap.NewNop())
	return NewRouter(s, apiKeys, zap.NewNop())
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func testMatchRequest() MatchRequest {
	return MatchRequest{
		Songs: []match.Song{{ID: "s1", Name: "Song One", Genres: []string{"rock"}}},
		Playlists: []match.PlaylistProfile{{
			PlaylistID:        "p1",
			GenreDistribution: map[string]int{"rock": 3},
		}},
	}
}
