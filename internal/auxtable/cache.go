package auxtable

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/geo"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/partition"
	apperrors "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Entry is everything the tables know about one feature.
type Entry struct {
	Rank       uint8
	Popularity uint8
	Center     geo.Point
	HasCenter  bool
}

// Tables is the unit of auxiliary data for one partition. It owns the
// partition handle until Close.
type Tables struct {
	partition  feature.PartitionID
	handle     partition.Handle
	ranks      RankTable
	popularity RankTable
	centers    CentersTable
}

// Available reports whether the partition could be acquired.
func (t *Tables) Available() bool { return t.handle != nil }

// Lookup returns the entry for index.
func (t *Tables) Lookup(index uint32) Entry {
	e := Entry{
		Rank:       t.ranks.Get(index),
		Popularity: t.popularity.Get(index),
	}
	e.Center, e.HasCenter = t.centers.Get(index)
	return e
}

// Close releases the partition handle.
func (t *Tables) Close() {
	if t.handle != nil {
		t.handle.Release()
		t.handle = nil
	}
}

// Cache holds the tables of at most one partition at a time. It is a small
// state machine: {no partition loaded} or {partition X loaded}. Asking for a
// feature of another partition releases X and loads the new unit, so callers
// that visit candidates grouped by partition load each partition once.
// A Cache is not safe for concurrent use.
type Cache struct {
	source  partition.Source
	current *Tables
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCache creates an empty Cache over source. m may be nil.
func NewCache(source partition.Source, m *metrics.Metrics) *Cache {
	return &Cache{
		source:  source,
		metrics: m,
		logger:  slog.Default().With("component", "auxtable-cache"),
	}
}

// Lookup returns the entry for id, switching partitions when needed.
func (c *Cache) Lookup(ctx context.Context, id feature.ID) Entry {
	return c.tablesFor(ctx, id.Partition).Lookup(id.Index)
}

// Loaded returns the partition currently held and whether one is held.
func (c *Cache) Loaded() (feature.PartitionID, bool) {
	if c.current == nil {
		return "", false
	}
	return c.current.partition, true
}

// Release drops the held partition, returning the cache to its empty state.
func (c *Cache) Release() {
	if c.current != nil {
		c.current.Close()
		c.current = nil
	}
}

func (c *Cache) tablesFor(ctx context.Context, id feature.PartitionID) *Tables {
	if c.current != nil && c.current.partition == id {
		return c.current
	}
	c.Release()
	c.current = c.load(ctx, id)
	return c.current
}

func (c *Cache) load(ctx context.Context, id feature.PartitionID) *Tables {
	t := &Tables{
		partition:  id,
		ranks:      ZeroTable{},
		popularity: ZeroTable{},
		centers:    noCenters{},
	}
	h, err := c.source.Acquire(ctx, id)
	if err != nil {
		if !apperrors.IsDegradable(err) {
			c.logger.Error("partition acquire failed", "partition", id, "error", err)
		}
		c.metrics.IncPartitionLoad("unavailable")
		return t
	}
	t.handle = h
	content := h.Content()

	var ranks, popularity RankTable
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ranks = c.loadRanks(gctx, id, content, partition.TagSearchRanks)
		return nil
	})
	g.Go(func() error {
		popularity = c.loadRanks(gctx, id, content, partition.TagPopularityRanks)
		return nil
	})
	_ = g.Wait()
	t.ranks, t.popularity = ranks, popularity
	t.centers = NewLazyCenters(func() ([]byte, error) {
		return content.Section(ctx, partition.TagCenters)
	})

	c.metrics.IncPartitionLoad("loaded")
	c.logger.Debug("partition tables loaded",
		"partition", id,
		"ranks", t.ranks.Len(),
		"popularity", t.popularity.Len(),
	)
	return t
}

func (c *Cache) loadRanks(ctx context.Context, id feature.PartitionID, content partition.Content, tag partition.Tag) RankTable {
	table, err := LoadRankTable(ctx, content, tag)
	if err != nil {
		if !apperrors.IsDegradable(err) {
			c.logger.Warn("rank table load failed, using zero table", "partition", id, "tag", tag, "error", err)
		}
		return ZeroTable{}
	}
	return table
}
