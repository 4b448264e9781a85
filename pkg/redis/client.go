// Package redis stores partition sections in Redis on behalf of the
// pre-ranker's section cache. Keys are namespaced per partition and tag so a
// single partition or the whole cache can be dropped when map data changes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/geo-preranker/pkg/config"
	"github.com/redis/go-redis/v9"
)

// SectionKeyPrefix namespaces every cached section.
const SectionKeyPrefix = "prerank:section:"

// unlinkBatch bounds how many keys a single UNLINK carries during a flush.
const unlinkBatch = 256

// SectionKey returns the key holding one section of one partition. Partition
// names may contain ':' so the tag always follows the last separator.
func SectionKey(partition, tag string) string {
	return SectionKeyPrefix + partition + ":" + tag
}

// ParseSectionKey splits a key built by SectionKey back into its partition
// and tag.
func ParseSectionKey(key string) (partition, tag string, ok bool) {
	rest, found := strings.CutPrefix(key, SectionKeyPrefix)
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, ':')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// sectionPattern matches every section of partition, or every section at all
// when partition is empty.
func sectionPattern(partition string) string {
	if partition == "" {
		return SectionKeyPrefix + "*"
	}
	return SectionKeyPrefix + escapeGlob(partition) + ":*"
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// GetSection returns a cached section. A miss is reported as redis.Nil; use
// IsNilError to tell it apart from a transport failure.
func (c *Client) GetSection(ctx context.Context, partition, tag string) ([]byte, error) {
	return c.rdb.Get(ctx, SectionKey(partition, tag)).Bytes()
}

// SetSection caches a section for ttl. A zero ttl keeps it until flushed.
func (c *Client) SetSection(ctx context.Context, partition, tag string, data []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, SectionKey(partition, tag), data, ttl).Err(); err != nil {
		return fmt.Errorf("caching section %s of %s: %w", tag, partition, err)
	}
	return nil
}

// FlushSections drops the cached sections of partition, or of every
// partition when partition is empty, and returns how many keys went.
func (c *Client) FlushSections(ctx context.Context, partition string) (int64, error) {
	return c.flushByPattern(ctx, sectionPattern(partition))
}

func (c *Client) flushByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	batch := make([]string, 0, unlinkBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.rdb.Unlink(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}

	iter := c.rdb.Scan(ctx, 0, pattern, unlinkBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := flush(); err != nil {
				return deleted, fmt.Errorf("unlinking %s: %w", pattern, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scanning pattern %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return deleted, fmt.Errorf("unlinking %s: %w", pattern, err)
	}
	return deleted, nil
}

// IsNilError reports whether err is a Redis nil (key-not-found) error.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
