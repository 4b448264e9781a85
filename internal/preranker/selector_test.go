package preranker

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTwoCriteriaScenario(t *testing.T) {
	a := Candidate{ID: fid("P", 0), Distance: 100, Rank: 5}
	b := Candidate{ID: fid("P", 1), Distance: 50, Rank: 1}
	p := Params{BatchSize: 1}.WithDefaults()

	out := Select([]Candidate{a, b}, p)
	assert.ElementsMatch(t, []feature.ID{a.ID, b.ID}, ids(out))
}

func TestSelectUnderBudgetUnchanged(t *testing.T) {
	cands := []Candidate{
		{ID: fid("P", 2), Distance: 3},
		{ID: fid("P", 1), Distance: 1},
	}
	out := Select(cands, Params{BatchSize: 2}.WithDefaults())
	assert.Equal(t, cands, out)
}

func TestSelectExactMatchCriterion(t *testing.T) {
	cands := []Candidate{
		{ID: fid("P", 0), Distance: 1, Rank: 9},
		{ID: fid("P", 1), Distance: 2, Rank: 8},
		{ID: fid("P", 2), Distance: 900, Info: feature.MatchInfo{ExactMatch: true}},
	}
	out := Select(cands, Params{BatchSize: 1}.WithDefaults())
	assert.ElementsMatch(t, []feature.ID{fid("P", 0), fid("P", 2)}, ids(out))
}

func TestSelectCategorialSinglePass(t *testing.T) {
	cands := []Candidate{
		{ID: fid("P", 0), Distance: 10, Popularity: 0},
		{ID: fid("P", 1), Distance: 20, Popularity: 9},
		{ID: fid("P", 2), Distance: 30, Rank: 255, Info: feature.MatchInfo{ExactMatch: true}},
	}
	p := Params{
		BatchSize:         1,
		CategorialRequest: true,
		Viewport:          geo.NewRect(geo.Point{X: -50, Y: -50}, geo.Point{X: 50, Y: 50}),
	}.WithDefaults()

	out := Select(cands, p)
	assert.ElementsMatch(t, []feature.ID{fid("P", 0), fid("P", 1)}, ids(out))
}

func TestCategoriesComparatorModes(t *testing.T) {
	inside := Candidate{ID: fid("P", 0), Distance: 500, Popularity: 1,
		Info: feature.MatchInfo{Center: geo.Point{X: 0.001, Y: 0.001}, CenterLoaded: true}}
	outside := Candidate{ID: fid("P", 1), Distance: 100, Popularity: 5,
		Info: feature.MatchInfo{Center: geo.Point{X: 5, Y: 5}, CenterLoaded: true}}

	small := geo.NewRect(geo.Point{X: -0.01, Y: -0.01}, geo.Point{X: 0.01, Y: 0.01})
	large := geo.NewRect(geo.Point{X: -1, Y: -1}, geo.Point{X: 1, Y: 1})
	pos := geo.Point{}

	t.Run("position inside viewport prefers inside results", func(t *testing.T) {
		cc := newCategoriesComparator(Params{Viewport: small, Position: &pos}.WithDefaults())
		assert.Negative(t, cc.compare(&inside, &outside))
	})
	t.Run("detailed scale prefers nearer results", func(t *testing.T) {
		cc := newCategoriesComparator(Params{Viewport: small}.WithDefaults())
		require.True(t, cc.detailedScale)
		assert.Positive(t, cc.compare(&inside, &outside))
	})
	t.Run("coarse scale prefers popular results", func(t *testing.T) {
		cc := newCategoriesComparator(Params{Viewport: large}.WithDefaults())
		require.False(t, cc.detailedScale)
		assert.Positive(t, cc.compare(&inside, &outside))
		outside.Popularity = 0
		assert.Negative(t, cc.compare(&inside, &outside))
	})
}

func TestRankAndPopularityMonotonic(t *testing.T) {
	less := byRankAndPopularity(1, 1)
	base := Candidate{ID: fid("P", 0), Rank: 3, Popularity: 3, Distance: 10}
	moreRank := base
	moreRank.ID, moreRank.Rank = fid("P", 1), 4
	morePop := base
	morePop.ID, morePop.Popularity = fid("P", 2), 4
	assert.Negative(t, less(&moreRank, &base))
	assert.Negative(t, less(&morePop, &base))

	rankOnly := byRankAndPopularity(1, 0)
	assert.Negative(t, rankOnly(&moreRank, &morePop))

	negative := byRankAndPopularity(-1, 1)
	assert.Negative(t, negative(&moreRank, &base))
	assert.Negative(t, negative(&morePop, &base))
}

func TestSelectNegativeWeightKeepsTopRank(t *testing.T) {
	hi := Candidate{ID: fid("P", 1), Rank: 200, Distance: 100}
	lo := Candidate{ID: fid("P", 2), Distance: 200}
	near := Candidate{ID: fid("P", 3), Distance: 10}
	p := Params{BatchSize: 1, RankWeight: -1, PopularityWeight: 1}

	out := Select([]Candidate{hi, lo, near}, p)
	assert.ElementsMatch(t, []feature.ID{hi.ID, near.ID}, ids(out))
}

func TestWithDefaultsClampsNegativeWeights(t *testing.T) {
	tests := []struct {
		name           string
		rank, pop      float64
		wantRank, wPop float64
	}{
		{"both unset", 0, 0, 1, 1},
		{"both negative", -2, -3, 1, 1},
		{"negative rank", -1, 2, 0, 2},
		{"negative popularity", 3, -1, 3, 0},
		{"positive kept", 2, 5, 2, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{RankWeight: tt.rank, PopularityWeight: tt.pop}.WithDefaults()
			assert.Equal(t, tt.wantRank, p.RankWeight)
			assert.Equal(t, tt.wPop, p.PopularityWeight)
		})
	}
}

func randomCandidates(rng *rand.Rand, n int) []Candidate {
	cands := make([]Candidate, n)
	for i := range cands {
		cands[i] = Candidate{
			ID:         fid("P", uint32(i)),
			Rank:       uint8(rng.Intn(256)),
			Popularity: uint8(rng.Intn(256)),
			Distance:   rng.Float64() * 1e5,
			Info: feature.MatchInfo{
				ExactMatch:       rng.Intn(4) == 0,
				AllTokensUsed:    rng.Intn(2) == 0,
				NumMatchedTokens: rng.Intn(5),
			},
		}
	}
	return cands
}

func TestSelectBoundsAndCompleteness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 100; iter++ {
		n := 1 + rng.Intn(200)
		batch := 1 + rng.Intn(40)
		cands := randomCandidates(rng, n)
		p := Params{BatchSize: batch}.WithDefaults()

		nearest, best := cands[0], cands[0]
		rp := byRankAndPopularity(p.RankWeight, p.PopularityWeight)
		for i := range cands {
			if byDistance(&cands[i], &nearest) < 0 {
				nearest = cands[i]
			}
			if rp(&cands[i], &best) < 0 {
				best = cands[i]
			}
		}

		out := Select(cands, p)
		assert.GreaterOrEqual(t, len(out), min(batch, n))
		assert.LessOrEqual(t, len(out), min(3*batch, n))
		got := ids(out)
		assert.Contains(t, got, nearest.ID)
		assert.Contains(t, got, best.ID)

		seen := map[feature.ID]bool{}
		for _, id := range got {
			assert.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
		}
	}
}

func TestTopKMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cands := randomCandidates(rng, 300)
	got := topK(cands, 25, byDistance).ToArray()

	sorted := append([]Candidate(nil), cands...)
	sortCandidates(sorted, byDistance)
	want := make(map[uint32]bool)
	for _, c := range sorted[:25] {
		want[c.ID.Index] = true
	}
	require.Len(t, got, 25)
	for _, i := range got {
		assert.True(t, want[i], "index %d not among the 25 nearest", i)
	}
}

func sortCandidates(cands []Candidate, less Comparator) {
	slices.SortFunc(cands, func(a, b Candidate) int { return less(&a, &b) })
}
