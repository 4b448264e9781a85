package ranker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/preranker"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
)

// EventType tags messages on the batches topic.
type EventType string

const (
	EventBatch  EventType = "batch"
	EventFinish EventType = "finish"
)

// BatchEvent carries one cycle's candidates to the remote ranker.
type BatchEvent struct {
	Type       EventType             `json:"type"`
	QueryID    string                `json:"query_id"`
	Cycle      int                   `json:"cycle"`
	Final      bool                  `json:"final"`
	Candidates []preranker.Candidate `json:"candidates"`
	Timestamp  time.Time             `json:"timestamp"`
}

// FinishEvent tells the remote ranker that a query is over.
type FinishEvent struct {
	Type      EventType `json:"type"`
	QueryID   string    `json:"query_id"`
	Cycles    int       `json:"cycles"`
	Cancelled bool      `json:"cancelled"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Publisher forwards batches to Kafka keyed by query ID, so every message of
// one query lands on the same partition in order. Publish failures are logged
// and counted; they never stop the query.
type Publisher struct {
	producer EventPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time

	queryID string
	cycle   int
	pending []preranker.Candidate
}

// NewPublisher creates a Publisher. m may be nil.
func NewPublisher(producer EventPublisher, m *metrics.Metrics) *Publisher {
	return &Publisher{
		producer: producer,
		metrics:  m,
		logger:   slog.Default().With("component", "batch-publisher"),
		now:      time.Now,
	}
}

// Begin starts a new query.
func (p *Publisher) Begin(queryID string) {
	p.queryID = queryID
	p.cycle = 0
	p.pending = nil
}

func (p *Publisher) AddPreRankerResults(_ context.Context, batch []preranker.Candidate) {
	p.pending = append(p.pending, batch...)
}

func (p *Publisher) UpdateResults(ctx context.Context, lastUpdate bool) {
	event := BatchEvent{
		Type:       EventBatch,
		QueryID:    p.queryID,
		Cycle:      p.cycle,
		Final:      lastUpdate,
		Candidates: p.pending,
		Timestamp:  p.now().UTC(),
	}
	p.pending = nil
	p.cycle++
	p.publish(ctx, EventBatch, event)
}

func (p *Publisher) Finish(ctx context.Context, cancelled bool) {
	p.publish(ctx, EventFinish, FinishEvent{
		Type:      EventFinish,
		QueryID:   p.queryID,
		Cycles:    p.cycle,
		Cancelled: cancelled,
		Timestamp: p.now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, typ EventType, value any) {
	event := kafka.Event{Key: p.queryID, Type: string(typ), Value: value}
	if err := p.producer.Publish(ctx, event); err != nil {
		p.logger.Error("failed to publish pre-ranker event", "query_id", p.queryID, "type", typ, "error", err)
		p.metrics.IncBatchPublished("error")
		return
	}
	p.metrics.IncBatchPublished("ok")
}
