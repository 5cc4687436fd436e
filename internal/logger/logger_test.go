package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		if _, err := NewLogger(env); err != nil {
			t.Errorf("NewLogger(%q): %v", env, err)
		}
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_Level(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Error("info must be disabled at warn level")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a no-op logger without one in context")
	}
	l := zap.NewExample()
	if got := FromContext(ContextWithLogger(context.Background(), l)); got != l {
		t.Error("expected the stored logger")
	}
}

func TestEventFields(t *testing.T) {
	AddFields(context.Background(), zap.String("ignored", "x"))
	if EventFields(context.Background()) != nil {
		t.Error("expected no fields without an event")
	}

	ctx := WithEvent(context.Background())
	AddFields(ctx, zap.String("job_id", "j1"))
	AddFields(ctx, zap.Int("songs", 3), zap.Int("cached", 1))

	fields := EventFields(ctx)
	if len(fields) != 3 || fields[0].Key != "job_id" || fields[2].Key != "cached" {
		t.Errorf("unexpected fields %v", fields)
	}
	fields[0] = zap.String("mutated", "y")
	if EventFields(ctx)[0].Key != "job_id" {
		t.Error("EventFields must return a copy")
	}
}
