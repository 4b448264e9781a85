package partition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/internal/feature"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

// SectionCache is the subset of the Redis client the cached source needs.
type SectionCache interface {
	GetSection(ctx context.Context, partition, tag string) ([]byte, error)
	SetSection(ctx context.Context, partition, tag string, data []byte, ttl time.Duration) error
	FlushSections(ctx context.Context, partition string) (int64, error)
}

// CachedSource is a read-through Redis cache in front of another Source.
// Only sections are cached; partition liveness is always asked of the inner
// source. Concurrent misses for the same section share one inner load, and
// a tripped circuit breaker bypasses Redis entirely.
type CachedSource struct {
	inner   Source
	cache   SectionCache
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCachedSource wraps inner with a Redis section cache. m may be nil.
func NewCachedSource(inner Source, cache SectionCache, ttl time.Duration, m *metrics.Metrics) *CachedSource {
	s := &CachedSource{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "section-cache"),
	}
	s.breaker = resilience.NewCircuitBreaker("section-cache", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		IsFailure: func(err error) bool {
			return err != nil && !pkgredis.IsNilError(err)
		},
		OnStateChange: func(name string, to resilience.State) {
			m.SetBreakerState(name, int(to))
		},
	})
	return s
}

func (s *CachedSource) Acquire(ctx context.Context, id feature.PartitionID) (Handle, error) {
	h, err := s.inner.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	return &cachedHandle{Handle: h, source: s}, nil
}

// Invalidate drops every cached section. Call it when the underlying map
// data snapshot changes.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.flush(ctx, "")
}

// InvalidatePartition drops the cached sections of one partition, for
// example after its tables were rewritten.
func (s *CachedSource) InvalidatePartition(ctx context.Context, id feature.PartitionID) error {
	if id == "" {
		return errors.New("invalidating section cache: empty partition id")
	}
	return s.flush(ctx, string(id))
}

func (s *CachedSource) flush(ctx context.Context, partition string) error {
	var deleted int64
	err := s.breaker.Execute(func() error {
		var err error
		deleted, err = s.cache.FlushSections(ctx, partition)
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidating section cache: %w", err)
	}
	s.logger.Info("section cache invalidated", "partition", partition, "keys_deleted", deleted)
	return nil
}

type cachedHandle struct {
	Handle
	source *CachedSource
}

func (h *cachedHandle) Content() Content { return h }

func (h *cachedHandle) Section(ctx context.Context, tag Tag) ([]byte, error) {
	s := h.source
	partition := string(h.ID())
	key := pkgredis.SectionKey(partition, string(tag))

	var data []byte
	err := s.breaker.Execute(func() error {
		var err error
		data, err = s.cache.GetSection(ctx, partition, string(tag))
		return err
	})
	if err == nil {
		s.metrics.IncSectionCache(true)
		return data, nil
	}
	if !pkgredis.IsNilError(err) && !errors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.Warn("section cache read failed", "key", key, "error", err)
	}
	s.metrics.IncSectionCache(false)

	v, err, _ := s.group.Do(key, func() (any, error) {
		data, err := h.Handle.Content().Section(ctx, tag)
		if err != nil {
			return nil, err
		}
		setErr := s.breaker.Execute(func() error {
			return s.cache.SetSection(ctx, partition, string(tag), data, s.ttl)
		})
		if setErr != nil && !errors.Is(setErr, resilience.ErrCircuitOpen) {
			s.logger.Warn("section cache write failed", "key", key, "error", setErr)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
