// Package partition defines how the pre-ranker reaches map-data partitions and
// the raw sections (rank tables, centers) stored inside them. Implementations
// cover an in-memory snapshot, PostgreSQL storage and a Redis read-through
// cache.
package partition

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
)

// Tag names one section of partition content.
type Tag string

const (
	TagSearchRanks     Tag = "search_ranks"
	TagPopularityRanks Tag = "popularity_ranks"
	TagCenters         Tag = "centers"
)

// Source resolves partition identifiers into live handles.
type Source interface {
	// Acquire returns a handle for id, or an error wrapping
	// errors.ErrPartitionUnavailable when the partition is not loadable.
	Acquire(ctx context.Context, id feature.PartitionID) (Handle, error)
}

// Handle is a live reference to one partition. Release must be called once
// the caller no longer reads from the handle.
type Handle interface {
	ID() feature.PartitionID
	Bounds() geo.Rect
	Content() Content
	Release()
}

// Content exposes the raw sections of a partition.
type Content interface {
	// Section returns the bytes stored under tag, or an error wrapping
	// errors.ErrTableMissing.
	Section(ctx context.Context, tag Tag) ([]byte, error)
}
