package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/playmatch/internal/db"
)

// Counter retention. Keys outlive their period so the usage report can read
// yesterday and last month.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

// store is the consumer interface for budget counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps token counters as Redis integers (INCRBY + EXPIRE NX).
type Store struct {
	store      store
	dailyTTL   time.Duration
	monthlyTTL time.Duration
}

// New creates a budget store with the default retention.
func New(s store) *Store {
	return &Store{store: s, dailyTTL: DefaultDailyTTL, monthlyTTL: DefaultMonthlyTTL}
}

// WithRetention overrides key TTLs.
func (s *Store) WithRetention(daily, monthly time.Duration) *Store {
	s.dailyTTL = daily
	s.monthlyTTL = monthly
	return s
}

// IncrBy increments the counter and arms its TTL on first write.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("incr budget %s: %w", key, err)
	}
	if err := s.store.Expire(ctx, key, s.retention(key), true); err != nil {
		return fmt.Errorf("expire budget %s: %w", key, err)
	}
	return nil
}

// Get returns the counter, 0 if the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get budget %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse budget %s: %w", key, err)
	}
	return val, nil
}

// retention picks the TTL from the period segment of {prefix}budget:{provider}:{period}:{date}.
func (s *Store) retention(key string) time.Duration {
	if strings.Contains(key, ":daily:") {
		return s.dailyTTL
	}
	return s.monthlyTTL
}
