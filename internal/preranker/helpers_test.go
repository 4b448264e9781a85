package preranker

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
)

// recordingRanker keeps every call it receives.
type recordingRanker struct {
	batches   [][]Candidate
	updates   []bool
	finished  bool
	cancelled bool
}

func (r *recordingRanker) AddPreRankerResults(_ context.Context, batch []Candidate) {
	r.batches = append(r.batches, batch)
}

func (r *recordingRanker) UpdateResults(_ context.Context, lastUpdate bool) {
	r.updates = append(r.updates, lastUpdate)
}

func (r *recordingRanker) Finish(_ context.Context, cancelled bool) {
	r.finished = true
	r.cancelled = cancelled
}

func (r *recordingRanker) last() []Candidate {
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func fid(partition string, index uint32) feature.ID {
	return feature.ID{Partition: feature.PartitionID(partition), Index: index}
}

func ids(cands []Candidate) []feature.ID {
	out := make([]feature.ID, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

// world is a partition source whose single partition "P" has a rank,
// popularity and center entry for every index given.
type world struct {
	ranks      []byte
	popularity []byte
	centers    []geo.Point
}

func (w world) source() *partition.MemorySource {
	src := partition.NewMemorySource()
	src.Put("P", &partition.Snapshot{
		Bounds: geo.NewRect(geo.Point{X: -10, Y: -10}, geo.Point{X: 10, Y: 10}),
		Sections: map[partition.Tag][]byte{
			partition.TagSearchRanks:     w.ranks,
			partition.TagPopularityRanks: w.popularity,
			partition.TagCenters:         partition.EncodeCenters(w.centers, nil),
		},
	})
	return src
}

func newTestPreRanker(t *testing.T, src partition.Source) (*PreRanker, *recordingRanker) {
	t.Helper()
	r := &recordingRanker{}
	return New(Options{Source: src, Ranker: r, StrictContracts: true}), r
}

func match(innermost, matched int) feature.MatchInfo {
	return feature.MatchInfo{
		InnermostTokens:    feature.TokenRange{Begin: 0, End: innermost},
		NumInnermostTokens: innermost,
		NumMatchedTokens:   matched,
	}
}
