package auxtable

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/contract"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/editor"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEstimator struct {
	positions int
	pivot     geo.Point
	scale     int
	distance  float64
}

func (f *fakeEstimator) SetPosition(p geo.Point, scale int) {
	f.positions++
	f.pivot, f.scale = p, scale
}

func (f *fakeEstimator) DistanceMeters(context.Context, feature.ID) float64 {
	return f.distance
}

func TestResolverUsesCenters(t *testing.T) {
	src := newSource()
	est := &fakeEstimator{}
	r := NewResolver(NewCache(src, nil), nil, est, contract.Checker{Strict: true}, nil)

	pivot := geo.Point{X: 1, Y: 2}
	pass := r.Begin(pivot, 12)
	e := pass.Resolve(context.Background(), feature.ID{Partition: "A", Index: 0})
	pass.Close()

	assert.Equal(t, uint8(5), e.Rank)
	assert.Equal(t, uint8(1), e.Popularity)
	assert.True(t, e.HasCenter)
	assert.InDelta(t, geo.DistanceOnEarth(pivot, geo.Point{X: 1, Y: 1}), e.Distance, 1e-6)
	assert.Equal(t, 0, est.positions)

	acquired, released := src.Stats()
	assert.Equal(t, acquired, released)
}

func TestResolverEditedGeometry(t *testing.T) {
	store := editor.NewStore()
	id := feature.ID{Partition: "A", Index: 1}
	center := geo.Point{X: 3, Y: 3}
	store.Apply(id, editor.StatusCreated, &center)

	r := NewResolver(NewCache(newSource(), nil), store, &fakeEstimator{}, contract.Checker{Strict: true}, nil)
	pass := r.Begin(geo.Point{}, 10)
	defer pass.Close()

	e := pass.Resolve(context.Background(), id)
	assert.True(t, e.HasCenter)
	assert.Equal(t, center, e.Center)
	assert.Equal(t, uint8(7), e.Rank)
}

func TestResolverEstimatesOncePerPass(t *testing.T) {
	est := &fakeEstimator{distance: 777}
	r := NewResolver(NewCache(newSource(), nil), editor.NewStore(), est, contract.Checker{Strict: true}, nil)

	pivot := geo.Point{X: 5, Y: 5}
	pass := r.Begin(pivot, 9)
	ctx := context.Background()
	e1 := pass.Resolve(ctx, feature.ID{Partition: "A", Index: 1})
	e2 := pass.Resolve(ctx, feature.ID{Partition: "Atlantis", Index: 0})
	pass.Close()

	assert.False(t, e1.HasCenter)
	assert.Equal(t, 777.0, e1.Distance)
	assert.Equal(t, 777.0, e2.Distance)
	assert.Equal(t, uint8(0), e2.Rank)
	assert.Equal(t, 1, est.positions)
	assert.Equal(t, pivot, est.pivot)
	assert.Equal(t, 9, est.scale)

	pass = r.Begin(pivot, 9)
	pass.Resolve(ctx, feature.ID{Partition: "B", Index: 0})
	pass.Close()
	assert.Equal(t, 2, est.positions)
}

func TestResolverCreatedWithoutGeometryBreaksContract(t *testing.T) {
	store := editor.NewStore()
	id := feature.ID{Partition: "A", Index: 1}
	store.Apply(id, editor.StatusCreated, nil)

	strict := NewResolver(NewCache(newSource(), nil), store, &fakeEstimator{}, contract.Checker{Strict: true}, nil)
	pass := strict.Begin(geo.Point{}, 10)
	require.Panics(t, func() { pass.Resolve(context.Background(), id) })
	pass.Close()

	lenient := NewResolver(NewCache(newSource(), nil), store, &fakeEstimator{distance: 42}, contract.Checker{}, nil)
	pass = lenient.Begin(geo.Point{}, 10)
	defer pass.Close()
	e := pass.Resolve(context.Background(), id)
	assert.Equal(t, 42.0, e.Distance)
}
