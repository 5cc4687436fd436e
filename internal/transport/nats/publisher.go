package nats

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/playmatch/internal/usecase/matching"
)

// DefaultSubjectPrefix roots every progress subject.
const DefaultSubjectPrefix = "playmatch.progress"

// Event types carried in the envelope.
const (
	EventItem     = "item"
	EventProgress = "progress"
)

// publisher is the consumer interface for NATS core publish (ISP).
type publisher interface {
	Publish(subj string, data []byte) error
}

// Envelope is the message body published for every event.
type Envelope struct {
	JobID     string                  `json:"job_id"`
	Type      string                  `json:"type"`
	Item      *matching.ItemEvent     `json:"item,omitempty"`
	Progress  *matching.ProgressEvent `json:"progress,omitempty"`
	Timestamp time.Time               `json:"ts"`
}

// ProgressPublisher implements matching.ProgressSink over NATS core publish.
// Subjects are {prefix}.{jobID}.item and {prefix}.{jobID}.progress.
// Publish failures are logged and counted, never returned.
type ProgressPublisher struct {
	pub      publisher
	prefix   string
	logger   *zap.Logger
	now      func() time.Time
	failures atomic.Int64
}

var _ matching.ProgressSink = (*ProgressPublisher)(nil)

// NewProgressPublisher creates a publisher. An empty prefix uses DefaultSubjectPrefix.
func NewProgressPublisher(pub publisher, prefix string, logger *zap.Logger) *ProgressPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &ProgressPublisher{pub: pub, prefix: prefix, logger: logger, now: time.Now}
}

// EmitItem publishes a per-song event.
func (p *ProgressPublisher) EmitItem(_ context.Context, jobID string, ev matching.ItemEvent) {
	p.publish(jobID, EventItem, Envelope{JobID: jobID, Type: EventItem, Item: &ev})
}

// EmitProgress publishes an aggregate snapshot.
func (p *ProgressPublisher) EmitProgress(_ context.Context, jobID string, ev matching.ProgressEvent) {
	p.publish(jobID, EventProgress, Envelope{JobID: jobID, Type: EventProgress, Progress: &ev})
}

// Failures returns the number of events that could not be published.
func (p *ProgressPublisher) Failures() int64 {
	return p.failures.Load()
}

// Subject returns the subject for a job's events of the given type.
func (p *ProgressPublisher) Subject(jobID, eventType string) string {
	return p.prefix + "." + jobID + "." + eventType
}

func (p *ProgressPublisher) publish(jobID, eventType string, env Envelope) {
	env.Timestamp = p.now().UTC()
	data, err := json.Marshal(env)
	if err != nil {
		p.failures.Add(1)
		p.logger.Warn("Failed to encode progress event", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	subject := p.Subject(jobID, eventType)
	if err := p.pub.Publish(subject, data); err != nil {
		p.failures.Add(1)
		p.logger.Warn("Failed to publish progress event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// Options configure the NATS connection.
type Options struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(opts Options, logger *zap.Logger) (*natsgo.Conn, error) {
	if opts.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	nc, err := natsgo.Connect(opts.URL,
		natsgo.Name(opts.Name),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(opts.MaxReconnects),
		natsgo.ReconnectWait(opts.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// HealthCheck reports whether nc is connected.
func HealthCheck(nc *natsgo.Conn) func(ctx context.Context) error {
	return func(context.Context) error {
		if !nc.IsConnected() {
			return fmt.Errorf("nats status %s", nc.Status())
		}
		return nil
	}
}
