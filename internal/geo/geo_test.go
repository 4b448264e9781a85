package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatLonRoundTrip(t *testing.T) {
	for _, tc := range []struct{ lat, lon float64 }{
		{0, 0}, {55.75, 37.62}, {-33.86, 151.21}, {64.1, -21.9},
	} {
		lat, lon := FromLatLon(tc.lat, tc.lon).LatLon()
		assert.InDelta(t, tc.lat, lat, 1e-9)
		assert.InDelta(t, tc.lon, lon, 1e-9)
	}
}

func TestDistanceOnEarth(t *testing.T) {
	a := FromLatLon(0, 0)
	b := FromLatLon(0, 1)
	// One degree of longitude at the equator.
	assert.InDelta(t, 111317, DistanceOnEarth(a, b), 200)
	assert.Zero(t, DistanceOnEarth(a, a))
	assert.InDelta(t, DistanceOnEarth(a, b), DistanceOnEarth(b, a), 1e-9)
}

func TestRect(t *testing.T) {
	r := NewRect(Point{X: 2, Y: 3}, Point{X: 0, Y: 1})
	assert.Equal(t, Point{X: 0, Y: 1}, r.Min)
	assert.Equal(t, Point{X: 2, Y: 3}, r.Max)
	assert.True(t, r.Contains(Point{X: 1, Y: 2}))
	assert.True(t, r.Contains(Point{X: 2, Y: 3}))
	assert.False(t, r.Contains(Point{X: 2.1, Y: 2}))
	assert.Equal(t, Point{X: 1, Y: 2}, r.Center())
	assert.Equal(t, Point{X: 2, Y: 1}, r.ClosestPoint(Point{X: 5, Y: -4}))
	assert.Equal(t, Point{X: 0, Y: 3}, r.LeftTop())
	assert.Equal(t, Point{X: 2, Y: 1}, r.RightBottom())
	assert.False(t, r.Empty())
	assert.True(t, Rect{}.Empty())
}
