// Package ranker provides downstream consumers of pre-ranked batches: an
// in-memory Collector, a Kafka Publisher and a Tee that fans out to several
// of them.
package ranker

import (
	"context"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/preranker"
)

// Batch is what one pre-ranking cycle delivered.
type Batch struct {
	Cycle      int                   `json:"cycle"`
	Final      bool                  `json:"final"`
	Candidates []preranker.Candidate `json:"candidates"`
}

// Collector keeps every batch of the current query in memory.
type Collector struct {
	mu        sync.Mutex
	pending   []preranker.Candidate
	batches   []Batch
	finished  bool
	cancelled bool
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) AddPreRankerResults(_ context.Context, batch []preranker.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, batch...)
}

func (c *Collector) UpdateResults(_ context.Context, lastUpdate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, Batch{
		Cycle:      len(c.batches),
		Final:      lastUpdate,
		Candidates: c.pending,
	})
	c.pending = nil
}

func (c *Collector) Finish(_ context.Context, cancelled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = true
	c.cancelled = cancelled
}

// Batches returns the batches collected so far.
func (c *Collector) Batches() []Batch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Batch, len(c.batches))
	copy(out, c.batches)
	return out
}

// Finished reports whether Finish was called and with which flag.
func (c *Collector) Finished() (finished, cancelled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished, c.cancelled
}

// Reset prepares the Collector for the next query.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.batches = nil
	c.finished = false
	c.cancelled = false
}
