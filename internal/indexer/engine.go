// Package indexer ties the index variants to configuration: it builds an
// index from a corpus source, publishes it atomically into the configured
// directory, and opens the published index for querying.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/ingest"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/metrics"
)

// Reader is an opened, saved index.
type Reader interface {
	index.Searcher
	LoadDoc(id int) (index.Document, error)
	Close() error
}

type Engine struct {
	cfg      *config.Config
	resolver lemma.Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewEngine returns an engine for cfg. m may be nil.
func NewEngine(cfg *config.Config, resolver lemma.Resolver, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:      cfg,
		resolver: resolver,
		metrics:  m,
		logger:   slog.Default().With("component", "indexer"),
	}
}

// NewBuilder returns an empty builder of the configured variant.
func (e *Engine) NewBuilder() index.Builder {
	if e.cfg.Index.Positional {
		return index.NewPositionalIndex(e.resolver)
	}
	return index.NewMemoryIndex(e.resolver)
}

// Run builds an index from src and publishes it. Unless force is set an
// existing index directory is left alone and ErrIndexExists is returned
// before any document is read.
func (e *Engine) Run(ctx context.Context, src ingest.Source, force bool) error {
	if !force && exists(e.cfg.Index.Dir) {
		return fmt.Errorf("%s: %w", e.cfg.Index.Dir, apperrors.ErrIndexExists)
	}
	b := e.NewBuilder()
	if _, err := ingest.Build(ctx, src, b, e.metrics); err != nil {
		return err
	}
	return e.Publish(ctx, b, force)
}

// Publish saves b into a temporary sibling of the index directory and
// renames it into place, so readers never observe a partly written index.
// Shared posting stores receive the build under a fresh generation; the
// generation of the replaced index is dropped only after the rename, and a
// failed publish drops its own generation instead.
func (e *Engine) Publish(ctx context.Context, b index.Builder, force bool) error {
	dir := filepath.Clean(e.cfg.Index.Dir)
	if !force && exists(dir) {
		return fmt.Errorf("%s: %w", dir, apperrors.ErrIndexExists)
	}
	start := time.Now()
	generation := strconv.FormatInt(start.UnixNano(), 36)
	tmp := fmt.Sprintf("%s.tmp-%s", dir, generation)

	previous, err := segment.ReadGeneration(dir)
	if err != nil {
		e.countSave("error")
		return err
	}
	if err := segment.MkdirAll(tmp); err != nil {
		e.countSave("error")
		return err
	}
	if err := e.save(ctx, b, tmp, generation); err != nil {
		e.countSave("error")
		os.RemoveAll(tmp)
		return err
	}

	var old string
	if exists(dir) {
		old = fmt.Sprintf("%s.old-%s", dir, generation)
		if err := os.Rename(dir, old); err != nil {
			e.countSave("error")
			e.dropGeneration(context.WithoutCancel(ctx), tmp, generation)
			os.RemoveAll(tmp)
			return fmt.Errorf("moving previous index aside: %w", err)
		}
	}
	if err := os.Rename(tmp, dir); err != nil {
		if old != "" {
			os.Rename(old, dir)
		}
		e.countSave("error")
		e.dropGeneration(context.WithoutCancel(ctx), tmp, generation)
		os.RemoveAll(tmp)
		return fmt.Errorf("publishing index: %w", err)
	}
	if old != "" {
		os.RemoveAll(old)
	}
	if previous != "" && previous != generation {
		e.dropGeneration(ctx, dir, previous)
	}

	e.countSave("success")
	e.logger.Info("index published",
		"dir", dir,
		"generation", generation,
		"docs", b.Len(),
		"terms", b.Terms(),
		"positional", e.cfg.Index.Positional,
		"store", e.cfg.Index.Store,
		"duration", time.Since(start),
	)
	return nil
}

// save writes b into dir under generation. A failed save drops whatever
// part of generation already reached a shared store.
func (e *Engine) save(ctx context.Context, b index.Builder, dir, generation string) error {
	postings, err := store.Open(ctx, e.cfg, dir, generation)
	if err != nil {
		return err
	}
	defer postings.Close()
	if err := b.SaveWith(ctx, dir, postings); err != nil {
		dropFrom(context.WithoutCancel(ctx), e.logger, postings, generation)
		return fmt.Errorf("saving index to %s: %w", dir, err)
	}
	if err := segment.WriteGeneration(dir, generation); err != nil {
		dropFrom(context.WithoutCancel(ctx), e.logger, postings, generation)
		return err
	}
	return nil
}

// dropGeneration deletes generation from the shared store configured for
// the index at dir. Failures leave unreachable postings behind and are only
// logged.
func (e *Engine) dropGeneration(ctx context.Context, dir, generation string) {
	if e.cfg.Index.Store == config.StoreDir || e.cfg.Index.Store == "" {
		return
	}
	postings, err := store.Open(ctx, e.cfg, dir, generation)
	if err != nil {
		e.logger.Warn("dropping postings generation failed", "generation", generation, "error", err)
		return
	}
	defer postings.Close()
	dropFrom(ctx, e.logger, postings, generation)
}

func dropFrom(ctx context.Context, logger *slog.Logger, postings store.PostingStore, generation string) {
	g, ok := postings.(store.Generations)
	if !ok {
		return
	}
	n, err := g.DropGeneration(ctx, generation)
	if err != nil {
		logger.Warn("dropping postings generation failed", "generation", generation, "error", err)
		return
	}
	logger.Info("postings generation dropped", "generation", generation, "terms", n)
}

// Open opens the published index with the configured variant and store.
func (e *Engine) Open(ctx context.Context) (Reader, error) {
	dir := e.cfg.Index.Dir
	if !exists(dir) {
		return nil, fmt.Errorf("index directory %s does not exist", dir)
	}
	generation, err := segment.ReadGeneration(dir)
	if err != nil {
		return nil, err
	}
	postings, err := store.Open(ctx, e.cfg, dir, generation)
	if err != nil {
		return nil, err
	}
	if !e.cfg.Index.Positional {
		return index.OpenDiskIndex(dir, e.resolver, postings), nil
	}
	r, err := index.OpenDiskPositionalIndex(dir, e.resolver, postings)
	if err != nil {
		postings.Close()
		return nil, err
	}
	return r, nil
}

func (e *Engine) countSave(status string) {
	if e.metrics != nil {
		e.metrics.IndexSavesTotal.WithLabelValues(status).Inc()
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
