package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/store"
)

// DiskPositionalIndex answers phrase queries against a saved positional
// index. The boundary table is loaded once at open; position lists are read
// per query term.
type DiskPositionalIndex struct {
	dir        string
	resolver   lemma.Resolver
	postings   store.PostingStore
	boundaries []int
	logger     *slog.Logger
}

// OpenDiskPositionalIndex opens the positional index saved under dir. It
// fails with an error wrapping ErrBoundariesMissing when the boundary table
// cannot be read.
func OpenDiskPositionalIndex(dir string, resolver lemma.Resolver, postings store.PostingStore) (*DiskPositionalIndex, error) {
	boundaries, err := segment.ReadBoundaries(dir)
	if err != nil {
		return nil, fmt.Errorf("opening positional index %s: %w", dir, err)
	}
	if postings == nil {
		postings = store.NewDirStore(dir, DefaultWriteWorkers)
	}
	logger := slog.Default().With("component", "disk-positional-index")
	logger.Info("positional index opened", "dir", dir, "docs", len(boundaries))
	return &DiskPositionalIndex{
		dir:        dir,
		resolver:   resolver,
		postings:   postings,
		boundaries: boundaries,
		logger:     logger,
	}, nil
}

// MatchIDs returns the ascending ids of documents containing the query as a
// contiguous phrase.
func (d *DiskPositionalIndex) MatchIDs(ctx context.Context, query string) ([]int, error) {
	positions, err := matchPhrase(ctx, d.resolver, query, d.postings.Get)
	if err != nil {
		return nil, err
	}
	return docIDs(positions, d.boundaries), nil
}

func (d *DiskPositionalIndex) Search(ctx context.Context, query string) ([]Document, error) {
	ids, err := d.MatchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("phrase matched", "query", query, "docs", len(ids))
	return loadDocs(d.dir, ids)
}

// LoadDoc reads the stored record of document id.
func (d *DiskPositionalIndex) LoadDoc(id int) (Document, error) {
	return loadDoc(d.dir, id)
}

// Len reports the number of documents in the boundary table.
func (d *DiskPositionalIndex) Len() int { return len(d.boundaries) }

func (d *DiskPositionalIndex) Resolver() lemma.Resolver { return d.resolver }
func (d *DiskPositionalIndex) Kind() string             { return KindDiskPositional }

func (d *DiskPositionalIndex) Close() error {
	return d.postings.Close()
}
