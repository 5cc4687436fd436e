package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/metrics"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// BudgetChecker enforces the token budget.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Options configure rate limiting and the circuit breaker.
// Zero RPS disables the limiter.
type Options struct {
	RPS              float64
	Burst            int
	FailureThreshold uint32
	OpenTimeout      time.Duration
	MaxBatchSize     int
}

// DefaultOptions returns the stock provider protection settings.
func DefaultOptions() Options {
	return Options{
		RPS:              20,
		Burst:            5,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		MaxBatchSize:     DefaultMaxAPIBatchSize,
	}
}

// ResilientEmbedder guards an embedder with a token budget, a client-side rate
// limiter and a circuit breaker. It implements domain.Embedder,
// domain.BatchEmbedder and domain.HealthChecker.
type ResilientEmbedder struct {
	inner     domain.Embedder
	provider  string
	model     string
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[domain.BatchEmbeddingResult]
	budget    BudgetChecker
	batchSize int
	logger    *zap.Logger
}

// NewResilientEmbedder wraps inner. budget may be nil.
func NewResilientEmbedder(
	inner domain.Embedder, provider, model string,
	opts Options, budget BudgetChecker, logger *zap.Logger,
) *ResilientEmbedder {
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = DefaultOptions().FailureThreshold
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = DefaultOptions().OpenTimeout
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxAPIBatchSize
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), max(1, opts.Burst))
	}

	metrics.EmbeddingBreakerState.WithLabelValues(provider).Set(0)
	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[domain.BatchEmbeddingResult](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Embedding circuit breaker state change",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.EmbeddingBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
		// Cancelled callers and budget rejections say nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) ||
				errors.Is(err, domain.ErrEmbeddingQuotaExceeded)
		},
	})

	return &ResilientEmbedder{
		inner:     inner,
		provider:  provider,
		model:     model,
		limiter:   limiter,
		breaker:   breaker,
		budget:    budget,
		batchSize: opts.MaxBatchSize,
		logger:    logger,
	}
}

// Embed embeds one text through the guards.
func (r *ResilientEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := r.call(ctx, 1, func() (domain.BatchEmbeddingResult, error) {
		one, err := r.inner.Embed(ctx, text)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err //nolint:wrapcheck // wrapped by call
		}
		return domain.BatchEmbeddingResult{
			Embeddings:   [][]float32{one.Embedding},
			PromptTokens: one.PromptTokens,
			TotalTokens:  one.TotalTokens,
		}, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed splits texts into provider-sized chunks. The budget is re-checked per chunk.
func (r *ResilientEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for offset := 0; offset < len(texts); offset += r.batchSize {
		chunk := texts[offset:min(offset+r.batchSize, len(texts))]
		res, err := r.call(ctx, len(chunk), func() (domain.BatchEmbeddingResult, error) {
			return domain.BatchEmbed(ctx, r.inner, chunk)
		})
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk at %d: %w", offset, err)
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}

// HealthCheck fails fast while the breaker is open and otherwise delegates.
func (r *ResilientEmbedder) HealthCheck(ctx context.Context) error {
	if r.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", r.provider, domain.ErrEmbeddingUnavailable)
	}
	if hc, ok := r.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health: %w", err)
		}
	}
	return nil
}

// State returns the breaker state.
func (r *ResilientEmbedder) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ResilientEmbedder) call(
	ctx context.Context, size int, fn func() (domain.BatchEmbeddingResult, error),
) (domain.BatchEmbeddingResult, error) {
	if r.budget != nil {
		if err := r.budget.Check(ctx); err != nil {
			r.logger.Error("Budget exceeded",
				zap.String("provider", r.provider),
				zap.String("model", r.model),
				zap.Int("batch_size", size),
				zap.Error(err),
			)
			metrics.EmbeddingErrorsTotal.WithLabelValues(r.provider, r.model, "quota").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			metrics.EmbeddingErrorsTotal.WithLabelValues(r.provider, r.model, "rate_limited").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
		}
	}

	start := time.Now()
	res, err := r.breaker.Execute(fn)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.EmbeddingErrorsTotal.WithLabelValues(r.provider, r.model, "breaker_open").Inc()
			return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		r.logger.Error("Embedding request failed",
			zap.String("provider", r.provider),
			zap.String("model", r.model),
			zap.Int("batch_size", size),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if r.budget != nil && res.TotalTokens > 0 {
		r.budget.Record(int64(res.TotalTokens))
		remaining := metrics.EmbeddingBudgetTokensRemaining
		remaining.WithLabelValues(r.provider, "daily").Set(float64(r.budget.RemainingDaily()))
		remaining.WithLabelValues(r.provider, "monthly").Set(float64(r.budget.RemainingMonthly()))
	}

	r.logger.Debug("Embedding request completed",
		zap.String("provider", r.provider),
		zap.String("model", r.model),
		zap.Int("batch_size", size),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
