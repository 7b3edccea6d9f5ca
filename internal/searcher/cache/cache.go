// Package cache memoizes search results in Redis. Concurrent misses for the
// same key are collapsed so that only one of them runs the query.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/oarkflow/json"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/redis"
)

const keyPrefix = "search:"

// Request identifies a cacheable query.
type Request struct {
	Query     string
	Limit     int
	Highlight bool
	Kind      string
}

type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache backed by client. m may be nil.
func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, req Request) (*executor.SearchResult, bool) {
	key := BuildKey(req)
	data, err := c.client.GetBytes(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	// the key ignores case and, for unordered kinds, term order
	result.Query = req.Query
	c.hit()
	c.logger.Debug("cache hit", "query", req.Query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, req Request, result *executor.SearchResult) {
	key := BuildKey(req)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for req, or runs computeFn once
// per key and caches its result. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	req Request,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, req); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(BuildKey(req), func() (interface{}, error) {
		if result, ok := c.Get(ctx, req); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, req, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	// callers collapsed onto one key may have spelled the query differently
	result := *val.(*executor.SearchResult)
	result.Query = req.Query
	return &result, false, nil
}

func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey hashes the normalized request. Queries that tokenize to the same
// terms share a key; for unordered indexes term order is ignored too.
func BuildKey(req Request) string {
	raw := fmt.Sprintf("%s|%s|limit=%d|hl=%t",
		req.Kind, normalizeQuery(req.Query, ordered(req.Kind)), req.Limit, req.Highlight)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func ordered(kind string) bool {
	return kind == index.KindPositional || kind == index.KindDiskPositional
}

func normalizeQuery(query string, keepOrder bool) string {
	terms := tokenizer.Lower(query)
	if !keepOrder {
		sort.Strings(terms)
	}
	return strings.Join(terms, ",")
}
