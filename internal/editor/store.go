package editor

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
)

type edit struct {
	status      Status
	center      geo.Point
	hasGeometry bool
}

// Store is an in-memory Overlay. It is safe for concurrent use: the Kafka
// consumer writes while queries read.
type Store struct {
	mu    sync.RWMutex
	edits map[feature.ID]edit
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{edits: make(map[feature.ID]edit)}
}

// Apply records the latest edit of a feature. Reverting to StatusUnedited
// forgets the feature.
func (s *Store) Apply(id feature.ID, status Status, center *geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == StatusUnedited {
		delete(s.edits, id)
		return
	}
	e := edit{status: status}
	if center != nil {
		e.center = *center
		e.hasGeometry = true
	}
	s.edits[id] = e
}

func (s *Store) Status(id feature.ID) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edits[id].status
}

func (s *Store) EditedGeometry(id feature.ID) (geo.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edits[id]
	if !ok || !e.hasGeometry {
		return geo.Point{}, false
	}
	return e.center, true
}

// Len returns the number of edited features.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edits)
}

// Reset forgets all edits.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.edits)
}
