// Package ingest feeds documents from a corpus source into an index builder.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

// Source yields documents in corpus order. Returning an error from fn stops
// the iteration with that error.
type Source interface {
	Each(ctx context.Context, fn func(index.Document) error) error
}

// progressEvery is how many documents pass between progress log lines.
const progressEvery = 10000

// Build adds every document of src to b and returns the number added. m may
// be nil.
func Build(ctx context.Context, src Source, b index.Builder, m *metrics.Metrics) (int, error) {
	logger := slog.Default().With("component", "index-build")
	start := time.Now()
	added := 0
	err := src.Each(ctx, func(doc index.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.Add(doc)
		added++
		if m != nil {
			m.DocsIndexedTotal.Inc()
		}
		if added%progressEvery == 0 {
			logger.Info("build progress", "docs", added, "terms", b.Terms())
		}
		return nil
	})
	if err != nil {
		return added, fmt.Errorf("reading corpus after %d documents: %w", added, err)
	}
	if m != nil {
		m.IndexTerms.Set(float64(b.Terms()))
	}
	logger.Info("build complete",
		"docs", added,
		"terms", b.Terms(),
		"duration", time.Since(start),
	)
	return added, nil
}

// FromConfig returns the source selected by cfg.Ingest.Source.
func FromConfig(cfg *config.Config) (Source, error) {
	switch cfg.Ingest.Source {
	case config.SourceDump:
		return NewDumpSource(cfg.Ingest.DumpPath), nil
	case config.SourceKafka:
		return NewKafkaSource(cfg.Kafka), nil
	default:
		return nil, fmt.Errorf("unknown ingest source %q", cfg.Ingest.Source)
	}
}
