package preranker

import (
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/sweeper"
)

const (
	// prevEmitBoost lifts results shown in the previous cycle so they keep
	// winning near-ties and markers do not flicker.
	prevEmitBoost = 3
	// basePriority stands in for a content-filter signal that is not
	// computed; every candidate gets it.
	basePriority = 2
)

// declutterPriority ranks a candidate inside its cluster of nearby results.
// It is computed in int so the base offset cannot wrap a 255 rank.
func declutterPriority(c *Candidate, prevEmit feature.Set) int {
	var prev, exact int
	if prevEmit.Has(c.ID) {
		prev = prevEmitBoost
	}
	if c.Info.ExactMatch {
		exact = 1
	}
	return max(int(c.Rank), int(c.Popularity), prev, exact) + basePriority
}

// filterForViewport drops candidates outside the viewport or matching too
// few query tokens, declutters the rest and records survivors in the current
// emission set.
func (p *PreRanker) filterForViewport(cands []Candidate) []Candidate {
	kept := cands[:0]
	for _, c := range cands {
		if !c.Info.CenterLoaded {
			p.contracts.Breach("viewport candidate without center", "feature", c.ID.String())
			continue
		}
		if !p.params.Viewport.Contains(c.Info.Center) {
			continue
		}
		if c.Info.NumMatchedTokens+1 < p.params.NumQueryTokens {
			continue
		}
		kept = append(kept, c)
	}
	clear(cands[len(kept):])

	before := len(kept)
	kept = declutter(kept, p.params.MinDistanceOnMap.X, p.params.MinDistanceOnMap.Y, p.prevEmit)
	p.metrics.AddDeclutterDropped(before - len(kept))

	for i := range kept {
		p.currEmit.Add(kept[i].ID)
	}
	return kept
}

// declutter keeps one candidate per cluster of centers closer than eps on
// both axes, preserving input order.
func declutter(cands []Candidate, epsX, epsY float64, prevEmit feature.Set) []Candidate {
	s := sweeper.New(epsX, epsY)
	for i := range cands {
		c := &cands[i]
		s.Add(c.Info.Center.X, c.Info.Center.Y, i, declutterPriority(c, prevEmit), prevEmit.Has(c.ID))
	}
	out := make([]Candidate, 0, len(cands))
	s.Sweep(func(i int) {
		out = append(out, cands[i])
	})
	return out
}
