package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "matches.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testContext() match.Context {
	return match.Context{
		AccountID:       "acct-1",
		ContextHash:     "abc123",
		SongSetHash:     "s",
		PlaylistSetHash: "p",
		ConfigHash:      "c",
		ModelVersion:    "m/1536/1",
		Weights:         match.DefaultWeights(),
		SongCount:       2,
		PlaylistCount:   2,
	}
}

func testResults() []match.Result {
	return []match.Result{
		{SongID: "s1", PlaylistID: "p2", Score: 0.5, Rank: 2, Confidence: 1},
		{SongID: "s1", PlaylistID: "p1", Score: 0.9, Rank: 1, Confidence: 1,
			Factors: match.ScoreFactors{Vector: 0.8, Genre: 1, Audio: 0.9}},
		{SongID: "s2", PlaylistID: "p2", Score: 0.7, Rank: 1, Confidence: 0.6},
	}
}

func TestCreateAndGetContext(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateContext(ctx, testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created.ID) != 26 {
		t.Errorf("expected ULID id, got %q", created.ID)
	}

	got, err := s.GetContextByHash(ctx, "abc123", "acct-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected context")
	}
	if got.ID != created.ID || got.Weights != match.DefaultWeights() || got.SongCount != 2 {
		t.Errorf("unexpected context %+v", got)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", created.CreatedAt, got.CreatedAt)
	}
}

func TestGetContextByHash_Absent(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetContextByHash(context.Background(), "abc123", "acct-1")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestCreateContext_Conflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateContext(ctx, testContext()); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateContext(ctx, testContext())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	other := testContext()
	other.AccountID = "acct-2"
	if _, err := s.CreateContext(ctx, other); err != nil {
		t.Fatalf("expected same hash under another account to succeed, got %v", err)
	}
}

func TestCreateContext_ConcurrentWritersOneWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, conflicts int
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateContext(ctx, testContext())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != 7 {
		t.Errorf("expected 1 win and 7 conflicts, got %d and %d", wins, conflicts)
	}
}

func TestInsertAndGetResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateContext(ctx, testContext())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InsertResults(ctx, c.ID, testResults()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetResultsForSongs(ctx, c.ID, []string{"s1", "s2", "s3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(got))
	}
	s1 := got["s1"]
	if len(s1) != 2 || s1[0].PlaylistID != "p1" || s1[1].PlaylistID != "p2" {
		t.Errorf("expected s1 rows in rank order, got %+v", s1)
	}
	if s1[0].Factors.Genre != 1 || s1[0].Factors.Vector != 0.8 {
		t.Errorf("expected factors round-trip, got %+v", s1[0].Factors)
	}
}

func TestInsertResults_ConflictRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateContext(ctx, testContext())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.InsertResults(ctx, c.ID, testResults()[:1]); err != nil {
		t.Fatal(err)
	}

	err = s.InsertResults(ctx, c.ID, testResults())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, err := s.GetResultsForSongs(ctx, c.ID, []string{"s1", "s2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got["s1"]) != 1 || len(got["s2"]) != 0 {
		t.Errorf("expected failed batch to be rolled back, got %+v", got)
	}
}

func TestInsertResults_UnknownContextIsNotConflict(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertResults(context.Background(), "missing", testResults())
	if err == nil {
		t.Fatal("expected foreign key error")
	}
	if errors.Is(err, domain.ErrConflict) {
		t.Error("foreign key failure must not be reported as conflict")
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}

func TestGetResultsForSongs_Empty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetResultsForSongs(context.Background(), "any", nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %v, %v", got, err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if _, err := s.CreateContext(context.Background(), testContext()); err != nil {
		t.Fatalf("create: %v", err)
	}
}
