package preranker

import (
	"context"
	"log/slog"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/auxtable"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/contract"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/editor"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/pivot"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
)

// Ranker consumes the batches the pre-ranker produces. The order of
// candidates inside a batch carries no meaning.
type Ranker interface {
	AddPreRankerResults(ctx context.Context, batch []Candidate)
	UpdateResults(ctx context.Context, lastUpdate bool)
	Finish(ctx context.Context, cancelled bool)
}

// Options wires a PreRanker to its collaborators.
type Options struct {
	Source  partition.Source
	Overlay editor.Overlay
	Ranker  Ranker
	Metrics *metrics.Metrics
	// StrictContracts panics on upstream contract breaches instead of
	// logging them.
	StrictContracts bool
}

// PreRanker owns the state of one query at a time. It is not safe for
// concurrent use: callers serialize Init, Emplace, UpdateResults and Finish.
type PreRanker struct {
	ranker    Ranker
	resolver  *auxtable.Resolver
	estimator *pivot.Estimator
	contracts contract.Checker
	metrics   *metrics.Metrics
	logger    *slog.Logger

	params                 Params
	results                []Candidate
	relaxed                relaxedBuffer
	numSentResults         int
	haveFullyMatchedResult bool

	currEmit feature.Set
	prevEmit feature.Set
}

// New creates a PreRanker.
func New(opts Options) *PreRanker {
	logger := slog.Default().With("component", "preranker")
	contracts := contract.Checker{Strict: opts.StrictContracts, Logger: logger}
	estimator := pivot.New(opts.Source)
	cache := auxtable.NewCache(opts.Source, opts.Metrics)
	return &PreRanker{
		ranker:    opts.Ranker,
		resolver:  auxtable.NewResolver(cache, opts.Overlay, estimator, contracts, opts.Metrics),
		estimator: estimator,
		contracts: contracts,
		metrics:   opts.Metrics,
		logger:    logger,
		params:    Params{}.WithDefaults(),
		currEmit:  make(feature.Set),
		prevEmit:  make(feature.Set),
	}
}

// Init starts a new query. It drops pending candidates and counters but keeps
// the previous emission set for visual stability across queries.
func (p *PreRanker) Init(params Params) {
	p.numSentResults = 0
	p.haveFullyMatchedResult = false
	p.results = p.results[:0]
	p.relaxed.reset()
	p.params = params.WithDefaults()
	p.currEmit.Clear()
}

// Params returns the parameters of the current query.
func (p *PreRanker) Params() Params { return p.params }

// Emplace appends a raw match. Matches arriving after Limit results were sent
// are dropped.
func (p *PreRanker) Emplace(c Candidate) {
	if p.numSentResults >= p.params.Limit {
		return
	}
	p.haveFullyMatchedResult = p.haveFullyMatchedResult || c.Info.AllTokensUsed
	p.results = append(p.results, c)
}

// Size is the number of pending candidates.
func (p *PreRanker) Size() int { return len(p.results) }

// BatchSize is the selector bound of the current query.
func (p *PreRanker) BatchSize() int { return p.params.BatchSize }

// NumSentResults counts candidates handed to the ranker in this query.
func (p *PreRanker) NumSentResults() int { return p.numSentResults }

// HaveFullyMatchedResult reports whether a match using every query token was
// emplaced in this query.
func (p *PreRanker) HaveFullyMatchedResult() bool { return p.haveFullyMatchedResult }

// ContinueSearch tells producers whether more matches are still useful.
func (p *PreRanker) ContinueSearch() bool {
	return !p.haveFullyMatchedResult || p.Size() < p.BatchSize()
}

// ForEach visits the pending candidates.
func (p *PreRanker) ForEach(fn func(c *Candidate)) {
	for i := range p.results {
		fn(&p.results[i])
	}
}

// UpdateResults runs one cycle over the pending candidates and hands the
// resulting batch to the ranker.
func (p *PreRanker) UpdateResults(ctx context.Context, lastUpdate bool) {
	in := len(p.results)
	heldBefore := p.relaxed.len()
	p.results = p.relaxed.split(p.results, lastUpdate)
	p.metrics.AddRelaxedHeld(p.relaxed.len() - heldBefore)

	p.fillMissingFields(ctx)
	p.Filter(p.params.ViewportSearch)

	batch := p.results
	p.numSentResults += len(batch)
	p.results = nil
	p.metrics.ObserveCycle(lastUpdate, in, len(batch))
	p.logger.Debug("pre-ranking cycle",
		"candidates", in,
		"relaxed_held", p.relaxed.len(),
		"batch", len(batch),
		"final", lastUpdate,
	)

	p.ranker.AddPreRankerResults(ctx, batch)
	p.ranker.UpdateResults(ctx, lastUpdate)

	if lastUpdate && len(p.currEmit) > 0 {
		p.currEmit, p.prevEmit = p.prevEmit, p.currEmit
	}
}

// Finish propagates completion or cancellation to the ranker.
func (p *PreRanker) Finish(ctx context.Context, cancelled bool) {
	p.ranker.Finish(ctx, cancelled)
}

// ClearCaches forgets everything that outlives a query. Call it when the map
// data snapshot changes.
func (p *PreRanker) ClearCaches() {
	p.estimator.Clear()
	p.prevEmit.Clear()
	p.currEmit.Clear()
}

// Filter deduplicates the pending candidates, applies the viewport filter
// when requested and narrows an oversized set with Select.
func (p *PreRanker) Filter(viewportSearch bool) {
	before := len(p.results)
	p.results = Dedup(p.results)
	p.metrics.AddDedupDropped(before - len(p.results))

	if viewportSearch {
		p.results = p.filterForViewport(p.results)
	}
	p.results = Select(p.results, p.params)
}

// fillMissingFields resolves candidates in ID order so each partition's
// tables are loaded once per cycle.
func (p *PreRanker) fillMissingFields(ctx context.Context) {
	slices.SortStableFunc(p.results, func(a, b Candidate) int {
		return a.ID.Compare(b.ID)
	})
	pass := p.resolver.Begin(p.params.AccuratePivotCenter, p.params.Scale)
	defer pass.Close()
	for i := range p.results {
		c := &p.results[i]
		e := pass.Resolve(ctx, c.ID)
		c.Rank = e.Rank
		c.Popularity = e.Popularity
		c.Distance = e.Distance
		if e.HasCenter {
			c.Info.Center = e.Center
			c.Info.CenterLoaded = true
		}
	}
}
