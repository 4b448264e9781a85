package preranker

import (
	"container/heap"

	"github.com/RoaringBitmap/roaring/v2"
)

// Select reduces cands to the union of the best p.BatchSize candidates under
// each criterion: distance to the pivot, then either rank and popularity plus
// exact match, or the category ordering for categorial queries. The result
// holds between min(BatchSize, n) and min(3*BatchSize, n) candidates in their
// input order. Sets no larger than BatchSize are returned unchanged.
func Select(cands []Candidate, p Params) []Candidate {
	k := p.BatchSize
	if len(cands) <= k {
		return cands
	}

	chosen := roaring.New()
	chosen.Or(topK(cands, k, byDistance))
	if !p.CategorialRequest {
		chosen.Or(topK(cands, k, byRankAndPopularity(p.RankWeight, p.PopularityWeight)))
		chosen.Or(topK(cands, k, byExactMatch))
	} else {
		chosen.Or(topK(cands, k, newCategoriesComparator(p).compare))
	}

	out := make([]Candidate, 0, chosen.GetCardinality())
	for _, i := range chosen.ToArray() {
		out = append(out, cands[i])
	}
	return out
}

// topK returns the indices of the k best candidates under less without
// sorting the whole set.
func topK(cands []Candidate, k int, less Comparator) *roaring.Bitmap {
	h := &worstFirst{cands: cands, less: less}
	for i := range cands {
		if h.Len() < k {
			heap.Push(h, uint32(i))
			continue
		}
		if less(&cands[i], &cands[h.idx[0]]) < 0 {
			h.idx[0] = uint32(i)
			heap.Fix(h, 0)
		}
	}
	return roaring.BitmapOf(h.idx...)
}

// worstFirst is a heap of candidate indices with the worst candidate on top.
type worstFirst struct {
	cands []Candidate
	less  Comparator
	idx   []uint32
}

func (h *worstFirst) Len() int { return len(h.idx) }

func (h *worstFirst) Less(i, j int) bool {
	return h.less(&h.cands[h.idx[i]], &h.cands[h.idx[j]]) > 0
}

func (h *worstFirst) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *worstFirst) Push(x any) {
	h.idx = append(h.idx, x.(uint32))
}

func (h *worstFirst) Pop() any {
	old := h.idx
	n := len(old)
	item := old[n-1]
	h.idx = old[:n-1]
	return item
}
