package feature

import "github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"

// TokenRange is the half-open range [Begin, End) of query tokens a match
// covers.
type TokenRange struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Len returns the number of tokens in the range.
func (r TokenRange) Len() int {
	if r.End < r.Begin {
		return 0
	}
	return r.End - r.Begin
}

// MatchInfo is what token matching knows about a candidate before any
// auxiliary lookup.
type MatchInfo struct {
	// InnermostTokens is the range matched by the most specific feature of
	// the match (the street of "street, city").
	InnermostTokens TokenRange `json:"innermost_tokens"`
	// NumInnermostTokens counts the tokens matched by the innermost feature.
	NumInnermostTokens int `json:"num_innermost_tokens"`
	// NumMatchedTokens counts every query token the match consumed.
	NumMatchedTokens int  `json:"num_matched_tokens"`
	AllTokensUsed    bool `json:"all_tokens_used"`
	ExactMatch       bool `json:"exact_match"`
	// Relaxed marks fuzzy matches that are only kept as filler.
	Relaxed bool `json:"relaxed"`

	Center       geo.Point `json:"center"`
	CenterLoaded bool      `json:"center_loaded"`
}
