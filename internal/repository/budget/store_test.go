package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/playmatch/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type mockStore struct {
	data    map[string][]byte
	getErr  error
	incrErr error
	incrs   map[string]int64
	expires []expireCall
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte), incrs: make(map[string]int64)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) error {
	if m.incrErr != nil {
		return m.incrErr
	}
	m.incrs[key] += val
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key: key, ttl: ttl, nx: nx})
	return nil
}

func TestIncrBy_SetsRetentionByPeriod(t *testing.T) {
	ms := newMockStore()
	s := New(ms)
	ctx := context.Background()

	if err := s.IncrBy(ctx, "playmatch:budget:openai:daily:2026-01-02", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IncrBy(ctx, "playmatch:budget:openai:monthly:2026-01", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ms.incrs["playmatch:budget:openai:daily:2026-01-02"] != 10 {
		t.Errorf("expected daily counter 10, got %d", ms.incrs["playmatch:budget:openai:daily:2026-01-02"])
	}
	if len(ms.expires) != 2 {
		t.Fatalf("expected 2 EXPIRE calls, got %d", len(ms.expires))
	}
	if ms.expires[0].ttl != DefaultDailyTTL || !ms.expires[0].nx {
		t.Errorf("unexpected daily expire %+v", ms.expires[0])
	}
	if ms.expires[1].ttl != DefaultMonthlyTTL {
		t.Errorf("unexpected monthly expire %+v", ms.expires[1])
	}
}

func TestIncrBy_ErrorSkipsExpire(t *testing.T) {
	ms := newMockStore()
	ms.incrErr = errors.New("down")

	if err := New(ms).IncrBy(context.Background(), "k:daily:x", 1); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.expires) != 0 {
		t.Errorf("expected no EXPIRE after failed INCRBY, got %d", len(ms.expires))
	}
}

func TestGet(t *testing.T) {
	ms := newMockStore()
	ms.data["k"] = []byte("42")
	ms.data["bad"] = []byte("x")
	s := New(ms)
	ctx := context.Background()

	if v, err := s.Get(ctx, "k"); err != nil || v != 42 {
		t.Errorf("expected 42, got %d, %v", v, err)
	}
	if v, err := s.Get(ctx, "missing"); err != nil || v != 0 {
		t.Errorf("expected 0 for missing key, got %d, %v", v, err)
	}
	if _, err := s.Get(ctx, "bad"); err == nil {
		t.Error("expected parse error")
	}
}

func TestWithRetention(t *testing.T) {
	ms := newMockStore()
	s := New(ms).WithRetention(time.Hour, 2*time.Hour)

	_ = s.IncrBy(context.Background(), "k:monthly:2026-01", 1)
	if ms.expires[0].ttl != 2*time.Hour {
		t.Errorf("expected custom monthly ttl, got %v", ms.expires[0].ttl)
	}
}
