package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHelpers(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCycle(true, 120, 100)
	m.ObserveCycle(false, 10, 10)
	m.AddRelaxedHeld(3)
	m.AddDedupDropped(2)
	m.AddDeclutterDropped(0)
	m.IncPartitionLoad("loaded")
	m.IncPartitionRetry("load-section")
	m.IncDistanceFallback("estimate")
	m.IncSectionCache(true)
	m.IncSectionCache(false)
	m.SetBreakerState("section-cache", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrerankCyclesTotal.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PrerankCyclesTotal.WithLabelValues("false")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PrerankRelaxedHeld))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PrerankDedupDropped))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PrerankDeclutterDrops))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionLoadsTotal.WithLabelValues("loaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartitionRetriesTotal.WithLabelValues("load-section")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DistanceFallbacksTotal.WithLabelValues("estimate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SectionCacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SectionCacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("section-cache")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCycle(true, 1, 1)
		m.AddRelaxedHeld(1)
		m.IncPartitionLoad("unavailable")
		m.IncSectionCache(true)
		m.IncEditApplied("created")
		m.IncBatchPublished("ok")
	})
}
