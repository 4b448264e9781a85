// Package auxtable caches the per-partition auxiliary tables the pre-ranker
// enriches candidates with: authority rank, popularity rank and the lazy
// centers table. Missing partitions and missing tables degrade to all-zero
// or empty stand-ins; they are never errors for the caller.
package auxtable

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
)

// RankTable maps an in-partition feature index to a rank byte.
type RankTable interface {
	// Get returns the rank of index, or 0 when index is out of range.
	Get(index uint32) uint8
	Len() int
}

// ByteTable is a RankTable stored one byte per feature index.
type ByteTable []byte

func (t ByteTable) Get(index uint32) uint8 {
	if int(index) >= len(t) {
		return 0
	}
	return t[index]
}

func (t ByteTable) Len() int { return len(t) }

// ZeroTable stands in for a rank table that could not be loaded.
type ZeroTable struct{}

func (ZeroTable) Get(uint32) uint8 { return 0 }
func (ZeroTable) Len() int         { return 0 }

// LoadRankTable reads the rank section tag from content. It returns an error
// wrapping errors.ErrTableMissing when the section is absent.
func LoadRankTable(ctx context.Context, content partition.Content, tag partition.Tag) (RankTable, error) {
	data, err := content.Section(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("loading rank table %s: %w", tag, err)
	}
	return ByteTable(data), nil
}
