package nats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
)

type published struct {
	subject string
	data    []byte
}

type mockPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (m *mockPublisher) Publish(subj string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, published{subject: subj, data: data})
	return nil
}

func TestEmitItem(t *testing.T) {
	mp := &mockPublisher{}
	p := NewProgressPublisher(mp, "", zap.NewNop())
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	p.EmitItem(context.Background(), "job-1", matching.ItemEvent{
		ItemID: "s1", Status: matching.ItemSucceeded, Label: "Song", Index: 3,
	})

	if len(mp.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mp.msgs))
	}
	if mp.msgs[0].subject != "playmatch.progress.job-1.item" {
		t.Errorf("unexpected subject %q", mp.msgs[0].subject)
	}

	var env Envelope
	if err := json.Unmarshal(mp.msgs[0].data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != EventItem || env.JobID != "job-1" || env.Item == nil || env.Item.Index != 3 {
		t.Errorf("unexpected envelope %+v", env)
	}
	if env.Progress != nil {
		t.Error("item envelope must not carry progress")
	}
}

func TestEmitProgress_CustomPrefix(t *testing.T) {
	mp := &mockPublisher{}
	p := NewProgressPublisher(mp, "acme.jobs", zap.NewNop())

	p.EmitProgress(context.Background(), "job-2", matching.ProgressEvent{Total: 12, Done: 10, Succeeded: 9, Failed: 1})

	if mp.msgs[0].subject != "acme.jobs.job-2.progress" {
		t.Errorf("unexpected subject %q", mp.msgs[0].subject)
	}
	var env Envelope
	if err := json.Unmarshal(mp.msgs[0].data, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Progress == nil || env.Progress.Done != 10 || env.Progress.Failed != 1 {
		t.Errorf("unexpected progress %+v", env.Progress)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	mp := &mockPublisher{err: errors.New("nats: connection closed")}
	p := NewProgressPublisher(mp, "", zap.NewNop())

	p.EmitItem(context.Background(), "job", matching.ItemEvent{ItemID: "s1"})
	p.EmitProgress(context.Background(), "job", matching.ProgressEvent{Total: 1})

	if p.Failures() != 2 {
		t.Errorf("expected 2 failures, got %d", p.Failures())
	}
}

func TestConnect_RequiresURL(t *testing.T) {
	if _, err := Connect(Options{}, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty url")
	}
}
