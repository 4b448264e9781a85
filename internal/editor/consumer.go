package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
)

// EditEvent is the JSON payload of the feature edits topic. Geometry is given
// as geographic coordinates.
type EditEvent struct {
	Partition string   `json:"partition"`
	Index     uint32   `json:"index"`
	Status    string   `json:"status"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
}

// ID returns the feature the event refers to.
func (e EditEvent) ID() feature.ID {
	return feature.ID{Partition: feature.PartitionID(e.Partition), Index: e.Index}
}

// Center projects the event geometry, or nil when it carries none.
func (e EditEvent) Center() *geo.Point {
	if e.Lat == nil || e.Lon == nil {
		return nil
	}
	p := geo.FromLatLon(*e.Lat, *e.Lon)
	return &p
}

// EditConsumer wraps a Kafka consumer feeding a Store.
type EditConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewEditConsumer creates an EditConsumer backed by the given Kafka consumer.
func NewEditConsumer(kafkaConsumer *kafka.Consumer) *EditConsumer {
	return &EditConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "edit-consumer"),
	}
}

// Start begins consuming edits. It blocks until ctx is cancelled.
func (ec *EditConsumer) Start(ctx context.Context) error {
	ec.logger.Info("edit consumer starting")
	return ec.consumer.Start(ctx)
}

// HandleEdits returns a Kafka MessageHandler applying edit events to store.
// Malformed events are logged and skipped so they do not block the
// partition.
func HandleEdits(store *Store, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "edit-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[EditEvent](value)
		if err != nil {
			logger.Error("failed to decode edit event",
				"error", err,
				"key", string(key),
			)
			m.IncEditApplied("invalid")
			return nil
		}
		if err := applyEvent(store, event); err != nil {
			logger.Error("rejected edit event", "key", string(key), "error", err)
			m.IncEditApplied("invalid")
			return nil
		}
		logger.Debug("edit applied",
			"feature", event.ID().String(),
			"status", event.Status,
		)
		m.IncEditApplied(event.Status)
		return nil
	}
}

func applyEvent(store *Store, event EditEvent) error {
	if event.Partition == "" {
		return fmt.Errorf("edit event without partition")
	}
	status, err := ParseStatus(event.Status)
	if err != nil {
		return err
	}
	store.Apply(event.ID(), status, event.Center())
	return nil
}
