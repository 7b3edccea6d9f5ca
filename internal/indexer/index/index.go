// Package index builds inverted indexes in memory, saves them as a sharded
// directory and answers queries against either form.
//
// Two variants exist. The unordered index maps each term to the ids of the
// documents containing it and answers AND queries. The positional index maps
// each term to corpus-wide word positions and answers phrase queries.
// Builders (MemoryIndex, PositionalIndex) are filled by Add and then saved;
// readers (DiskIndex, DiskPositionalIndex) load postings lazily per query
// term. A saved index is immutable.
package index

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/store"
)

// Index kinds reported by Searcher.Kind.
const (
	KindMemory         = "memory"
	KindPositional     = "positional"
	KindDisk           = "disk"
	KindDiskPositional = "disk_positional"
)

// DefaultWriteWorkers bounds concurrent file writes during Save.
const DefaultWriteWorkers = 8

// Document is one indexed unit. ID is assigned by the builder in insertion
// order starting at 0.
type Document struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Searcher is the query contract shared by all four index variants. Search
// returns matching documents ordered by ascending id without duplicates.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Document, error)
	Resolver() lemma.Resolver
	Kind() string
}

// Builder is an in-memory index that can be filled and persisted.
type Builder interface {
	Add(doc Document)
	Len() int
	Terms() int
	SaveWith(ctx context.Context, dir string, postings store.PostingStore) error
}

var (
	_ Searcher = (*MemoryIndex)(nil)
	_ Searcher = (*PositionalIndex)(nil)
	_ Searcher = (*DiskIndex)(nil)
	_ Searcher = (*DiskPositionalIndex)(nil)
	_ Builder  = (*MemoryIndex)(nil)
	_ Builder  = (*PositionalIndex)(nil)
)
