package partition

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	apperrors "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/errors"
)

// Snapshot is the in-memory description of one partition.
type Snapshot struct {
	Bounds   geo.Rect
	Sections map[Tag][]byte
}

// MemorySource serves partitions from process memory. It is safe for
// concurrent use and counts acquisitions so callers can observe how often
// partitions are opened.
type MemorySource struct {
	mu         sync.RWMutex
	partitions map[feature.PartitionID]*Snapshot
	acquired   atomic.Int64
	released   atomic.Int64
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{partitions: make(map[feature.PartitionID]*Snapshot)}
}

// Put registers or replaces a partition.
func (s *MemorySource) Put(id feature.PartitionID, snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitions[id] = snap
}

// Remove makes a partition unavailable.
func (s *MemorySource) Remove(id feature.PartitionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.partitions, id)
}

func (s *MemorySource) Acquire(_ context.Context, id feature.PartitionID) (Handle, error) {
	s.mu.RLock()
	snap, ok := s.partitions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("partition %s: %w", id, apperrors.ErrPartitionUnavailable)
	}
	s.acquired.Add(1)
	return &memoryHandle{id: id, snap: snap, source: s}, nil
}

// Stats returns the number of acquired and released handles.
func (s *MemorySource) Stats() (acquired, released int64) {
	return s.acquired.Load(), s.released.Load()
}

type memoryHandle struct {
	id     feature.PartitionID
	snap   *Snapshot
	source *MemorySource
	once   sync.Once
}

func (h *memoryHandle) ID() feature.PartitionID { return h.id }
func (h *memoryHandle) Bounds() geo.Rect        { return h.snap.Bounds }
func (h *memoryHandle) Content() Content        { return h }

func (h *memoryHandle) Release() {
	h.once.Do(func() { h.source.released.Add(1) })
}

func (h *memoryHandle) Section(_ context.Context, tag Tag) ([]byte, error) {
	data, ok := h.snap.Sections[tag]
	if !ok {
		return nil, fmt.Errorf("partition %s section %s: %w", h.id, tag, apperrors.ErrTableMissing)
	}
	return data, nil
}
