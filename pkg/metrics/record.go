package metrics

import "strconv"

// The helpers below are nil-safe so components can hold an optional
// *Metrics without guarding every call site.

func (m *Metrics) ObserveCycle(final bool, candidatesIn, batch int) {
	if m == nil {
		return
	}
	m.PrerankCyclesTotal.WithLabelValues(strconv.FormatBool(final)).Inc()
	m.PrerankCandidatesIn.Observe(float64(candidatesIn))
	m.PrerankBatchSize.Observe(float64(batch))
}

func (m *Metrics) AddRelaxedHeld(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PrerankRelaxedHeld.Add(float64(n))
}

func (m *Metrics) AddDedupDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PrerankDedupDropped.Add(float64(n))
}

func (m *Metrics) AddDeclutterDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PrerankDeclutterDrops.Add(float64(n))
}

func (m *Metrics) IncPartitionLoad(result string) {
	if m == nil {
		return
	}
	m.PartitionLoadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPartitionRetry(operation string) {
	if m == nil {
		return
	}
	m.PartitionRetriesTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncDistanceFallback(kind string) {
	if m == nil {
		return
	}
	m.DistanceFallbacksTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncSectionCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.SectionCacheHitsTotal.Inc()
		return
	}
	m.SectionCacheMissesTotal.Inc()
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) IncEditApplied(status string) {
	if m == nil {
		return
	}
	m.EditsAppliedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncBatchPublished(outcome string) {
	if m == nil {
		return
	}
	m.BatchesPublishedTotal.WithLabelValues(outcome).Inc()
}
