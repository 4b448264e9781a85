// Package pivot estimates distances from the search pivot to features whose
// exact geometry is unavailable. Estimates are coarse: a feature is placed on
// the smallest of a series of nested radii around the pivot that reaches its
// partition's bounding rectangle.
package pivot

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
)

const (
	// MaxDistanceMeters is returned when no estimate is possible.
	MaxDistanceMeters = 2 * math.Pi * 6378000

	// NumRadii is the number of nested radii tried around the pivot.
	NumRadii = 6

	maxScale = 20
)

type bounds struct {
	rect geo.Rect
	ok   bool
}

// Estimator caches partition bounds and answers distance queries relative to
// the last position set. It is safe for concurrent use.
type Estimator struct {
	source partition.Source

	mu         sync.Mutex
	position   geo.Point
	scale      int
	positioned bool
	bounds     map[feature.PartitionID]bounds

	logger *slog.Logger
}

// New creates an Estimator reading partition bounds from source.
func New(source partition.Source) *Estimator {
	return &Estimator{
		source: source,
		bounds: make(map[feature.PartitionID]bounds),
		logger: slog.Default().With("component", "pivot-estimator"),
	}
}

// SetPosition moves the pivot. scale is the map zoom level; finer scales give
// finer radii.
func (e *Estimator) SetPosition(p geo.Point, scale int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = p
	e.scale = min(max(scale, 0), maxScale)
	e.positioned = true
}

// Radius returns the k-th nested radius for the current scale.
func (e *Estimator) Radius(k int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return radius(e.scale, k)
}

func radius(scale, k int) float64 {
	return MaxDistanceMeters / math.Exp2(float64(scale)) / 4 * math.Exp2(float64(k))
}

// DistanceMeters returns the estimated distance from the pivot to id, or
// MaxDistanceMeters when the pivot is unset, the partition is unavailable or
// it lies beyond the outermost radius.
func (e *Estimator) DistanceMeters(ctx context.Context, id feature.ID) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.positioned {
		return MaxDistanceMeters
	}
	b := e.boundsLocked(ctx, id.Partition)
	if !b.ok {
		return MaxDistanceMeters
	}
	d := geo.DistanceOnEarth(e.position, b.rect.ClosestPoint(e.position))
	for k := 0; k < NumRadii; k++ {
		if r := radius(e.scale, k); d <= r {
			return r
		}
	}
	return MaxDistanceMeters
}

func (e *Estimator) boundsLocked(ctx context.Context, id feature.PartitionID) bounds {
	if b, ok := e.bounds[id]; ok {
		return b
	}
	var b bounds
	h, err := e.source.Acquire(ctx, id)
	if err != nil {
		e.logger.Debug("partition bounds unavailable", "partition", id, "error", err)
	} else {
		b = bounds{rect: h.Bounds(), ok: true}
		h.Release()
	}
	e.bounds[id] = b
	return b
}

// Clear drops the position and the bounds cache.
func (e *Estimator) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positioned = false
	e.position = geo.Point{}
	e.scale = 0
	clear(e.bounds)
}

// Cached returns the number of partitions whose bounds are cached.
func (e *Estimator) Cached() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bounds)
}
