package domain

import (
	"context"
	"time"
)

type embeddingUsageKey struct{}

// EmbeddingUsage accumulates embedding tokens spent while serving one request.
// The HTTP handler installs it, the semantic matcher adds to it, and the
// handler reports the total in a response header.
type EmbeddingUsage struct {
	TotalTokens int
	Used        bool // embedding was requested, even if a cache served it for 0 tokens
}

// NewContextWithUsage returns ctx carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector in ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records n tokens. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}

// BudgetWindow is token accounting for one budget period. Limit 0 means unlimited.
type BudgetWindow struct {
	Start time.Time
	Used  int64
	Limit int64
}

// BudgetSnapshot is a consistent view of both budget periods.
type BudgetSnapshot struct {
	Daily   BudgetWindow
	Monthly BudgetWindow
}
