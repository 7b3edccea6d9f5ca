package index

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/store"
)

// DiskIndex answers unordered queries against a saved index. Posting lists
// are loaded from the store per query term and are not cached between
// searches. A DiskIndex is safe for concurrent use.
type DiskIndex struct {
	dir      string
	resolver lemma.Resolver
	postings store.PostingStore
	logger   *slog.Logger
}

// OpenDiskIndex opens the index saved under dir. A nil postings store reads
// the shard files under dir.
func OpenDiskIndex(dir string, resolver lemma.Resolver, postings store.PostingStore) *DiskIndex {
	if postings == nil {
		postings = store.NewDirStore(dir, DefaultWriteWorkers)
	}
	return &DiskIndex{
		dir:      dir,
		resolver: resolver,
		postings: postings,
		logger:   slog.Default().With("component", "disk-index"),
	}
}

// Match returns the ids of documents satisfying the query. A term with no
// stored postings contributes an empty set.
func (d *DiskIndex) Match(ctx context.Context, query string) (map[int]struct{}, error) {
	ids, err := matchAll(ctx, d.resolver, query, d.postings.Get)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (d *DiskIndex) Search(ctx context.Context, query string) ([]Document, error) {
	ids, err := d.Match(ctx, query)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("query matched", "query", query, "docs", len(ids))
	return loadDocs(d.dir, sortedIDs(ids))
}

// LoadDoc reads the stored record of document id.
func (d *DiskIndex) LoadDoc(id int) (Document, error) {
	return loadDoc(d.dir, id)
}

func (d *DiskIndex) Resolver() lemma.Resolver { return d.resolver }
func (d *DiskIndex) Kind() string             { return KindDisk }

// Close releases the posting store.
func (d *DiskIndex) Close() error {
	return d.postings.Close()
}
