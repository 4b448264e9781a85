package ranker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/preranker"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	events []kafka.Event
	err    error
}

func (f *fakeProducer) Publish(_ context.Context, event kafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func cand(i uint32) preranker.Candidate {
	return preranker.Candidate{ID: feature.ID{Partition: "P", Index: i}}
}

func TestCollector(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()
	c.AddPreRankerResults(ctx, []preranker.Candidate{cand(1)})
	c.AddPreRankerResults(ctx, []preranker.Candidate{cand(2)})
	c.UpdateResults(ctx, false)
	c.UpdateResults(ctx, true)
	c.Finish(ctx, false)

	batches := c.Batches()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Candidates, 2)
	assert.False(t, batches[0].Final)
	assert.Empty(t, batches[1].Candidates)
	assert.True(t, batches[1].Final)
	assert.Equal(t, 1, batches[1].Cycle)

	finished, cancelled := c.Finished()
	assert.True(t, finished)
	assert.False(t, cancelled)

	c.Reset()
	assert.Empty(t, c.Batches())
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	prod := &fakeProducer{}
	p := NewPublisher(prod, m)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	p.Begin("q-1")
	p.AddPreRankerResults(ctx, []preranker.Candidate{cand(1), cand(2)})
	p.UpdateResults(ctx, true)
	p.Finish(ctx, true)

	require.Len(t, prod.events, 2)
	assert.Equal(t, "q-1", prod.events[0].Key)
	assert.Equal(t, string(EventBatch), prod.events[0].Type)
	assert.Equal(t, string(EventFinish), prod.events[1].Type)
	batch, ok := prod.events[0].Value.(BatchEvent)
	require.True(t, ok)
	assert.Equal(t, EventBatch, batch.Type)
	assert.True(t, batch.Final)
	assert.Len(t, batch.Candidates, 2)
	assert.Equal(t, fixed, batch.Timestamp)

	fin, ok := prod.events[1].Value.(FinishEvent)
	require.True(t, ok)
	assert.True(t, fin.Cancelled)
	assert.Equal(t, 1, fin.Cycles)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BatchesPublishedTotal.WithLabelValues("ok")))
}

func TestPublisherErrorsAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := NewPublisher(&fakeProducer{err: errors.New("broker down")}, m)
	p.Begin("q")
	p.UpdateResults(context.Background(), false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesPublishedTotal.WithLabelValues("error")))
}

func TestTeeCopiesBatches(t *testing.T) {
	ctx := context.Background()
	a, b := NewCollector(), NewCollector()
	tee := Tee{a, b}

	batch := []preranker.Candidate{cand(1)}
	tee.AddPreRankerResults(ctx, batch)
	tee.UpdateResults(ctx, true)
	tee.Finish(ctx, false)

	a.Batches()[0].Candidates[0].Rank = 9
	assert.Equal(t, uint8(0), b.Batches()[0].Candidates[0].Rank)
	finished, _ := b.Finished()
	assert.True(t, finished)
}
