package sweeper

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweep(s *Sweeper) []int {
	var out []int
	s.Sweep(func(i int) { out = append(out, i) })
	return out
}

func TestSweepKeepsHigherPriority(t *testing.T) {
	s := New(5, 5)
	s.Add(0, 0, 0, 3, false)
	s.Add(1, 0, 1, 7, false)
	assert.Equal(t, []int{1}, sweep(s))
}

func TestSweepFarPointsSurvive(t *testing.T) {
	s := New(5, 5)
	s.Add(0, 0, 0, 1, false)
	s.Add(10, 0, 1, 1, false)
	s.Add(0, 10, 2, 1, false)
	assert.Equal(t, []int{0, 1, 2}, sweep(s))
}

func TestSweepAcrossCellBorder(t *testing.T) {
	s := New(5, 5)
	s.Add(4.9, 4.9, 0, 2, false)
	s.Add(5.1, 5.1, 1, 4, false)
	assert.Equal(t, []int{1}, sweep(s))
}

func TestSweepNegativeCoordinates(t *testing.T) {
	s := New(1, 1)
	s.Add(-0.1, -0.1, 0, 9, false)
	s.Add(0.1, 0.1, 1, 1, false)
	assert.Equal(t, []int{0}, sweep(s))
}

func TestSweepTieGoesToSticky(t *testing.T) {
	s := New(5, 5)
	s.Add(0, 0, 0, 4, false)
	s.Add(1, 1, 1, 4, true)
	assert.Equal(t, []int{1}, sweep(s))

	s.Add(0, 0, 0, 4, false)
	s.Add(1, 1, 1, 4, false)
	assert.Equal(t, []int{0}, sweep(s))
}

func TestSweepExactEpsIsNotClose(t *testing.T) {
	s := New(5, 5)
	s.Add(0, 0, 0, 1, false)
	s.Add(5, 0, 1, 1, false)
	assert.Equal(t, []int{0, 1}, sweep(s))
}

func TestSweepDisabled(t *testing.T) {
	s := New(0, 5)
	s.Add(0, 0, 2, 1, false)
	s.Add(0, 0, 0, 1, false)
	assert.Equal(t, []int{0, 2}, sweep(s))
	assert.Equal(t, 0, s.Len())
}

func TestSweepNoTwoSurvivorsClose(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const eps = 3.0
	xs := make([]float64, 500)
	ys := make([]float64, 500)
	s := New(eps, eps)
	for i := range xs {
		xs[i] = rng.Float64() * 100
		ys[i] = rng.Float64() * 100
		s.Add(xs[i], ys[i], i, rng.Intn(10), rng.Intn(2) == 0)
	}
	kept := sweep(s)
	require.NotEmpty(t, kept)
	for a := 0; a < len(kept); a++ {
		for b := a + 1; b < len(kept); b++ {
			i, j := kept[a], kept[b]
			near := abs(xs[i]-xs[j]) < eps && abs(ys[i]-ys[j]) < eps
			assert.False(t, near, "points %d and %d both survived", i, j)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
