package ttlcache

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration, maxEntries int) (*Cache[string, int], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(ttl, maxEntries, WithClock[string, int](clock.Now)), clock
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(time.Hour, 10)
	c.Set("a", 1)

	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%d, %v)", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)
	c.Set("a", 1)

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected entry before expiry")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected entry to expire at exactly ttl")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry removed, len=%d", c.Len())
	}
	if c.Evictions() != 1 {
		t.Errorf("expected 1 eviction, got %d", c.Evictions())
	}
}

func TestCache_EvictsOldestInserted(t *testing.T) {
	c, _ := newTestCache(time.Hour, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("a", 10)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest inserted entry evicted despite recent access")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b kept")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c kept")
	}
	if c.Evictions() != 1 {
		t.Errorf("expected 1 eviction, got %d", c.Evictions())
	}
}

func TestCache_DeleteFunc(t *testing.T) {
	c, _ := newTestCache(time.Hour, 0)
	c.Set("pl:1", 1)
	c.Set("pl:2", 2)
	c.Set("other", 3)

	n := c.DeleteFunc(func(k string, _ int) bool { return strings.HasPrefix(k, "pl:") })
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if c.Len() != 1 || c.Evictions() != 2 {
		t.Errorf("expected len 1 and 2 evictions, got %d and %d", c.Len(), c.Evictions())
	}

	// order must stay consistent after deletion
	c.Set("x", 4)
	if c.Len() != 2 {
		t.Errorf("expected len 2, got %d", c.Len())
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(time.Hour, 5)
	c.Set("a", 1)
	c.Set("b", 2)

	if n := c.Clear(); n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, len=%d", c.Len())
	}
	if c.Evictions() != 2 {
		t.Errorf("expected 2 evictions, got %d", c.Evictions())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int, int](time.Hour, 50)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := range 200 {
				c.Set(base*1000+j, j)
				c.Get(base*1000 + j)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("expected at most 50 entries, got %d", c.Len())
	}
}
