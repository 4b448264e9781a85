package ranker

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/preranker"
)

// Tee forwards every call to each of its rankers in order.
type Tee []preranker.Ranker

func (t Tee) AddPreRankerResults(ctx context.Context, batch []preranker.Candidate) {
	for i, r := range t {
		if i == len(t)-1 {
			r.AddPreRankerResults(ctx, batch)
			return
		}
		// Each ranker owns its batch.
		r.AddPreRankerResults(ctx, append([]preranker.Candidate(nil), batch...))
	}
}

func (t Tee) UpdateResults(ctx context.Context, lastUpdate bool) {
	for _, r := range t {
		r.UpdateResults(ctx, lastUpdate)
	}
}

func (t Tee) Finish(ctx context.Context, cancelled bool) {
	for _, r := range t {
		r.Finish(ctx, cancelled)
	}
}
