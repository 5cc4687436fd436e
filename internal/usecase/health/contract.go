package health

import "context"

// DBPinger checks persistent store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc adapts a plain function into a component check.
type CheckFunc func(ctx context.Context) error
