package auxtable

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
)

// CentersTable maps an in-partition feature index to its geometric center.
type CentersTable interface {
	Get(index uint32) (geo.Point, bool)
}

// LazyCenters defers reading the centers section until the first lookup, so
// partitions whose candidates never need a center cost nothing.
type LazyCenters struct {
	load    func() ([]byte, error)
	once    sync.Once
	section []byte
	err     error
}

// NewLazyCenters builds a centers table around a section loader.
func NewLazyCenters(load func() ([]byte, error)) *LazyCenters {
	return &LazyCenters{load: load}
}

func (c *LazyCenters) Get(index uint32) (geo.Point, bool) {
	c.once.Do(func() {
		c.section, c.err = c.load()
	})
	if c.err != nil {
		return geo.Point{}, false
	}
	return partition.DecodeCenter(c.section, index)
}

// Err reports the load error, if the section has been read and failed.
func (c *LazyCenters) Err() error { return c.err }

type noCenters struct{}

func (noCenters) Get(uint32) (geo.Point, bool) { return geo.Point{}, false }
