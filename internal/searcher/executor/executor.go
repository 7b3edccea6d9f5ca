package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

type SearchResult struct {
	Query     string             `json:"query"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
}

// Executor runs queries against one index and ranks the candidates.
type Executor struct {
	index   index.Searcher
	marker  ranker.Marker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an executor over idx. m may be nil.
func New(idx index.Searcher, m *metrics.Metrics) *Executor {
	return &Executor{
		index:   idx,
		marker:  ranker.ANSIRed,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// WithMarker replaces the highlight marker.
func (e *Executor) WithMarker(m ranker.Marker) *Executor {
	e.marker = m
	return e
}

// Kind reports the kind of the wrapped index.
func (e *Executor) Kind() string {
	return e.index.Kind()
}

// Search returns every matching document, ranked. A query cut off by the
// context deadline fails with an error wrapping ErrTimeout.
func (e *Executor) Search(ctx context.Context, query string, highlight bool) ([]ranker.ScoredDoc, error) {
	docs, err := e.index.Search(ctx, query)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("searching %s index: %w: %w", e.index.Kind(), apperrors.ErrTimeout, err)
	}
	if err != nil {
		return nil, fmt.Errorf("searching %s index: %w", e.index.Kind(), err)
	}
	var marker *ranker.Marker
	if highlight {
		marker = &e.marker
	}
	return ranker.Rank(docs, query, e.index.Resolver(), marker), nil
}

// Execute runs Search and truncates the ranked list to limit; limit <= 0
// keeps every result. TotalHits counts all candidates.
func (e *Executor) Execute(ctx context.Context, query string, limit int, highlight bool) (*SearchResult, error) {
	start := time.Now()
	kind := e.index.Kind()
	ranked, err := e.Search(ctx, query, highlight)
	if err != nil {
		e.observe(kind, "error", start, 0)
		e.logger.Error("query failed", "query", query, "index", kind, "error", err)
		return nil, err
	}

	total := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	outcome := "hit"
	if total == 0 {
		outcome = "zero_result"
	}
	e.observe(kind, outcome, start, total)
	e.logger.Info("query executed",
		"query", query,
		"index", kind,
		"candidates", total,
		"results", len(ranked),
		"duration", time.Since(start),
	)
	return &SearchResult{
		Query:     query,
		TotalHits: total,
		Results:   ranked,
	}, nil
}

func (e *Executor) observe(kind, outcome string, start time.Time, hits int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(kind, outcome).Inc()
	e.metrics.SearchLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if outcome != "error" {
		e.metrics.SearchResultsCount.Observe(float64(hits))
	}
}
