package matchstore

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/playmatch/internal/db"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

// memStore emulates the Redis semantics the repo relies on.
type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	err   error
	mgets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mgets++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memStore) MSetNX(_ context.Context, items []db.KV) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, it := range items {
		if _, ok := m.data[it.Key]; ok {
			return false, nil
		}
	}
	for _, it := range items {
		m.data[it.Key] = it.Value
	}
	return true, nil
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
		{SongID: "s1", PlaylistID: "p1", Score: 0.9, Rank: 1, Confidence: 1},
		{SongID: "s1", PlaylistID: "p2", Score: 0.5, Rank: 2, Confidence: 1},
		{SongID: "s2", PlaylistID: "p2", Score: 0.7, Rank: 1, Confidence: 0.6},
	}
}
