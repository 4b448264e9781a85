package auxtable

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/contract"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/editor"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
)

// Enrichment holds the fields the resolver fills on a candidate.
type Enrichment struct {
	Rank       uint8
	Popularity uint8
	Distance   float64
	Center     geo.Point
	HasCenter  bool
}

// DistanceEstimator gives a coarse pivot distance for features without a
// known center.
type DistanceEstimator interface {
	SetPosition(p geo.Point, scale int)
	DistanceMeters(ctx context.Context, id feature.ID) float64
}

// Resolver fills rank, popularity, center and distance for candidates. The
// edit overlay and the estimator are injected collaborators.
type Resolver struct {
	cache     *Cache
	overlay   editor.Overlay
	estimator DistanceEstimator
	contracts contract.Checker
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewResolver creates a Resolver. overlay may be nil, meaning no edits.
func NewResolver(cache *Cache, overlay editor.Overlay, estimator DistanceEstimator, contracts contract.Checker, m *metrics.Metrics) *Resolver {
	if overlay == nil {
		overlay = editor.NoEdits{}
	}
	return &Resolver{
		cache:     cache,
		overlay:   overlay,
		estimator: estimator,
		contracts: contracts,
		metrics:   m,
		logger:    slog.Default().With("component", "aux-resolver"),
	}
}

// Pass is one resolution sweep over a cycle's candidates. Close releases the
// partition tables it holds.
type Pass struct {
	r              *Resolver
	pivot          geo.Point
	scale          int
	estimatorReady bool
}

// Begin starts a pass measuring distances from pivot.
func (r *Resolver) Begin(pivot geo.Point, scale int) *Pass {
	return &Pass{r: r, pivot: pivot, scale: scale}
}

// Resolve returns the enrichment for id. Visiting ids grouped by partition
// loads each partition's tables once.
func (p *Pass) Resolve(ctx context.Context, id feature.ID) Enrichment {
	r := p.r
	entry := r.cache.Lookup(ctx, id)
	e := Enrichment{Rank: entry.Rank, Popularity: entry.Popularity}

	if entry.HasCenter {
		e.Center, e.HasCenter = entry.Center, true
		e.Distance = geo.DistanceOnEarth(p.pivot, e.Center)
		return e
	}

	if r.overlay.Status(id) == editor.StatusCreated {
		if center, ok := r.overlay.EditedGeometry(id); ok {
			e.Center, e.HasCenter = center, true
			e.Distance = geo.DistanceOnEarth(p.pivot, center)
			r.metrics.IncDistanceFallback("edited")
			return e
		}
		r.contracts.Breach("created feature has no edited geometry", "feature", id.String())
	}

	if !p.estimatorReady {
		r.estimator.SetPosition(p.pivot, p.scale)
		p.estimatorReady = true
	}
	e.Distance = r.estimator.DistanceMeters(ctx, id)
	r.metrics.IncDistanceFallback("estimate")
	r.logger.Warn("center unavailable, using estimated distance",
		"feature", id.String(),
		"distance", e.Distance,
	)
	return e
}

// Close ends the pass.
func (p *Pass) Close() {
	p.r.cache.Release()
}
