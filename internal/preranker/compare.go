package preranker

import (
	"cmp"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
)

// Comparator orders candidates best first: it returns a negative number when
// a is preferred over b.
type Comparator func(a, b *Candidate) int

// Every comparator ends on the feature ID so selections are deterministic.

func byDistance(a, b *Candidate) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
		return c
	}
	return a.ID.Compare(b.ID)
}

// byRankAndPopularity prefers a higher weighted sum of rank and popularity.
// Negative weights count as zero so the order stays monotonic in each input.
func byRankAndPopularity(rankWeight, popularityWeight float64) Comparator {
	rankWeight, popularityWeight = max(rankWeight, 0), max(popularityWeight, 0)
	score := func(c *Candidate) float64 {
		return rankWeight*float64(c.Rank) + popularityWeight*float64(c.Popularity)
	}
	return func(a, b *Candidate) int {
		if c := cmp.Compare(score(b), score(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	}
}

func byExactMatch(a, b *Candidate) int {
	if c := compareBool(a.Info.ExactMatch, b.Info.ExactMatch); c != 0 {
		return c
	}
	if c := compareBool(a.Info.AllTokensUsed, b.Info.AllTokensUsed); c != 0 {
		return c
	}
	if c := cmp.Compare(b.matchedTokens(), a.matchedTokens()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return a.ID.Compare(b.ID)
}

// categoriesComparator orders results of browse-by-category queries.
type categoriesComparator struct {
	viewport               geo.Rect
	positionInsideViewport bool
	detailedScale          bool
}

func newCategoriesComparator(p Params) categoriesComparator {
	diagonal := p.Viewport.DiagonalMeters()
	return categoriesComparator{
		viewport:               p.Viewport,
		positionInsideViewport: p.Position != nil && p.Viewport.Contains(*p.Position),
		detailedScale:          diagonal < 2*p.PedestrianRadiusMeters,
	}
}

func (cc categoriesComparator) compare(a, b *Candidate) int {
	switch {
	case cc.positionInsideViewport:
		if c := compareBool(cc.inside(a), cc.inside(b)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
	case cc.detailedScale:
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
	default:
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
	}
	return a.ID.Compare(b.ID)
}

func (cc categoriesComparator) inside(c *Candidate) bool {
	return c.Info.CenterLoaded && cc.viewport.Contains(c.Info.Center)
}

// byUniqueness sorts duplicates of one feature so the best match comes first:
// more innermost tokens, then more matched tokens, then the earlier innermost
// range.
func byUniqueness(a, b Candidate) int {
	if c := a.ID.Compare(b.ID); c != 0 {
		return c
	}
	if c := cmp.Compare(b.innermostTokens(), a.innermostTokens()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.matchedTokens(), a.matchedTokens()); c != 0 {
		return c
	}
	return cmp.Compare(a.Info.InnermostTokens.Begin, b.Info.InnermostTokens.Begin)
}

// compareBool puts true first.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
