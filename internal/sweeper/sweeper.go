// Package sweeper thins out clusters of nearby points. Points closer than eps
// on both axes compete, and only the highest-priority one of each cluster
// survives.
package sweeper

import (
	"cmp"
	"math"
	"slices"
)

type item struct {
	x, y     float64
	index    int
	priority int
	sticky   bool
}

type cell struct{ i, j int64 }

// Sweeper collects points with priorities and sweeps them greedily over a
// grid of eps-sized buckets. The zero value is not usable; call New.
type Sweeper struct {
	epsX, epsY float64
	items      []item
}

// New creates a Sweeper with separation epsX, epsY. A non-positive eps on
// either axis disables thinning.
func New(epsX, epsY float64) *Sweeper {
	return &Sweeper{epsX: epsX, epsY: epsY}
}

// Add registers a point. index is echoed back by Sweep. Among equal
// priorities, sticky points win.
func (s *Sweeper) Add(x, y float64, index, priority int, sticky bool) {
	s.items = append(s.items, item{x: x, y: y, index: index, priority: priority, sticky: sticky})
}

// Len returns the number of points added.
func (s *Sweeper) Len() int { return len(s.items) }

// Sweep calls emit with the index of every surviving point, in ascending
// index order, and resets the Sweeper.
func (s *Sweeper) Sweep(emit func(index int)) {
	defer func() { s.items = s.items[:0] }()

	if s.epsX <= 0 || s.epsY <= 0 {
		indices := make([]int, 0, len(s.items))
		for _, it := range s.items {
			indices = append(indices, it.index)
		}
		slices.Sort(indices)
		for _, i := range indices {
			emit(i)
		}
		return
	}

	order := slices.Clone(s.items)
	slices.SortStableFunc(order, func(a, b item) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		if a.sticky != b.sticky {
			if a.sticky {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.index, b.index)
	})

	grid := make(map[cell][]item, len(order))
	kept := make([]int, 0, len(order))
	for _, it := range order {
		c := s.cellOf(it)
		if s.hasNeighbor(grid, c, it) {
			continue
		}
		grid[c] = append(grid[c], it)
		kept = append(kept, it.index)
	}

	slices.Sort(kept)
	for _, i := range kept {
		emit(i)
	}
}

func (s *Sweeper) cellOf(it item) cell {
	return cell{
		i: int64(math.Floor(it.x / s.epsX)),
		j: int64(math.Floor(it.y / s.epsY)),
	}
}

// hasNeighbor checks the 3x3 block of cells around c, since a cluster can
// straddle a cell border.
func (s *Sweeper) hasNeighbor(grid map[cell][]item, c cell, it item) bool {
	for di := int64(-1); di <= 1; di++ {
		for dj := int64(-1); dj <= 1; dj++ {
			for _, other := range grid[cell{c.i + di, c.j + dj}] {
				if math.Abs(other.x-it.x) < s.epsX && math.Abs(other.y-it.y) < s.epsY {
					return true
				}
			}
		}
	}
	return false
}
