package preranker

import "slices"

// Dedup keeps the best match of every feature ID and returns the shortened
// slice, sorted by ID. It reuses the backing array of cands.
func Dedup(cands []Candidate) []Candidate {
	slices.SortStableFunc(cands, byUniqueness)
	return slices.CompactFunc(cands, func(a, b Candidate) bool {
		return a.ID == b.ID
	})
}
