// Package feature defines the identifiers and token-match metadata that
// candidate producers attach to every raw feature match.
package feature

import (
	"cmp"
	"fmt"
)

// PartitionID names one self-contained chunk of map data.
type PartitionID string

// ID identifies a feature globally: the partition it lives in plus its index
// inside that partition. IDs order by partition first, then index.
type ID struct {
	Partition PartitionID `json:"partition"`
	Index     uint32      `json:"index"`
}

// Compare returns -1, 0 or +1 ordering a before, equal to or after b.
func (a ID) Compare(b ID) int {
	if c := cmp.Compare(a.Partition, b.Partition); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// Less reports whether a orders before b.
func (a ID) Less(b ID) bool { return a.Compare(b) < 0 }

func (a ID) String() string {
	return fmt.Sprintf("%s:%d", a.Partition, a.Index)
}

// Set is a set of feature IDs.
type Set map[ID]struct{}

// Add inserts id.
func (s Set) Add(id ID) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Clear removes every member, keeping the allocated storage.
func (s Set) Clear() { clear(s) }
