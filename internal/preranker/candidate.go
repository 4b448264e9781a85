// Package preranker narrows the raw stream of feature matches of a geo search
// query down to small batches worth handing to the final ranker. Each update
// cycle holds back relaxed matches, enriches candidates with rank, popularity
// and distance, removes duplicates, declutters map results and keeps the best
// candidates under several independent criteria.
package preranker

import (
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
)

// Candidate is one feature match moving through the pipeline. Rank,
// Popularity and Distance are zero until the cycle's resolution step fills
// them.
type Candidate struct {
	ID         feature.ID        `json:"id"`
	Info       feature.MatchInfo `json:"info"`
	Rank       uint8             `json:"rank"`
	Popularity uint8             `json:"popularity"`
	Distance   float64           `json:"distance"`
}

// NewCandidate creates an unresolved candidate.
func NewCandidate(id feature.ID, info feature.MatchInfo) Candidate {
	return Candidate{ID: id, Info: info}
}

// Center returns the candidate center and whether it is known.
func (c *Candidate) Center() (geo.Point, bool) {
	return c.Info.Center, c.Info.CenterLoaded
}

func (c *Candidate) innermostTokens() int { return c.Info.NumInnermostTokens }
func (c *Candidate) matchedTokens() int   { return c.Info.NumMatchedTokens }
