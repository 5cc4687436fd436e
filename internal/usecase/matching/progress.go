package matching

import (
	"context"

	"go.uber.org/zap"
)

// LogProgressSink writes progress events to a zap logger at debug level.
type LogProgressSink struct {
	logger *zap.Logger
}

// NewLogProgressSink creates a sink backed by logger.
func NewLogProgressSink(logger *zap.Logger) *LogProgressSink {
	return &LogProgressSink{logger: logger}
}

// EmitItem logs a per-song event.
func (s *LogProgressSink) EmitItem(_ context.Context, jobID string, ev ItemEvent) {
	s.logger.Debug("Match item",
		zap.String("job_id", jobID),
		zap.String("item_id", ev.ItemID),
		zap.String("status", string(ev.Status)),
		zap.String("label", ev.Label),
		zap.Int("index", ev.Index),
	)
}

// EmitProgress logs an aggregate snapshot.
func (s *LogProgressSink) EmitProgress(_ context.Context, jobID string, ev ProgressEvent) {
	s.logger.Info("Match progress",
		zap.String("job_id", jobID),
		zap.Int("total", ev.Total),
		zap.Int("done", ev.Done),
		zap.Int("succeeded", ev.Succeeded),
		zap.Int("failed", ev.Failed),
	)
}

// MultiSink fans events out to several sinks.
type MultiSink []ProgressSink

// EmitItem forwards to every sink.
func (m MultiSink) EmitItem(ctx context.Context, jobID string, ev ItemEvent) {
	for _, s := range m {
		s.EmitItem(ctx, jobID, ev)
	}
}

// EmitProgress forwards to every sink.
func (m MultiSink) EmitProgress(ctx context.Context, jobID string, ev ProgressEvent) {
	for _, s := range m {
		s.EmitProgress(ctx, jobID, ev)
	}
}
