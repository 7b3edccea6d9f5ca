package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
)

// MemoryIndex is the unordered in-memory index: term -> ids of the documents
// containing it. It is not safe for concurrent use while documents are being
// added.
type MemoryIndex struct {
	resolver lemma.Resolver
	docs     []Document
	postings map[string][]int
	logger   *slog.Logger
}

func NewMemoryIndex(resolver lemma.Resolver) *MemoryIndex {
	return &MemoryIndex{
		resolver: resolver,
		postings: make(map[string][]int),
		logger:   slog.Default().With("component", "memory-index"),
	}
}

// Add assigns doc the next id and appends that id once to the posting list
// of every distinct lemma of its title and content. Adding the same content
// twice yields two documents.
func (m *MemoryIndex) Add(doc Document) {
	doc.ID = len(m.docs)
	m.docs = append(m.docs, doc)

	terms := lemma.Set(m.resolver, tokenizer.Lower(doc.Title))
	for t := range lemma.Set(m.resolver, tokenizer.Lower(doc.Content)) {
		terms[t] = struct{}{}
	}
	for term := range terms {
		m.postings[term] = append(m.postings[term], doc.ID)
	}
}

// Match returns the ids of documents containing, for every query token, at
// least one lemma form of that token.
func (m *MemoryIndex) Match(query string) map[int]struct{} {
	ids, _ := matchAll(context.Background(), m.resolver, query, m.fetch)
	return ids
}

func (m *MemoryIndex) Search(ctx context.Context, query string) ([]Document, error) {
	ids, err := matchAll(ctx, m.resolver, query, m.fetch)
	if err != nil {
		return nil, err
	}
	return m.documents(sortedIDs(ids)), nil
}

// Document returns the document with the given id.
func (m *MemoryIndex) Document(id int) (Document, bool) {
	if id < 0 || id >= len(m.docs) {
		return Document{}, false
	}
	return m.docs[id], true
}

func (m *MemoryIndex) Resolver() lemma.Resolver { return m.resolver }
func (m *MemoryIndex) Kind() string             { return KindMemory }
func (m *MemoryIndex) Len() int                 { return len(m.docs) }
func (m *MemoryIndex) Terms() int               { return len(m.postings) }

// Save writes the index under dir using the directory shard store.
func (m *MemoryIndex) Save(ctx context.Context, dir string) error {
	return m.SaveWith(ctx, dir, store.NewDirStore(dir, DefaultWriteWorkers))
}

// SaveWith writes document records under dir and the posting lists to
// postings.
func (m *MemoryIndex) SaveWith(ctx context.Context, dir string, postings store.PostingStore) error {
	start := time.Now()
	if err := segment.MkdirAll(dir); err != nil {
		return err
	}
	if err := postings.Put(ctx, m.postings); err != nil {
		return fmt.Errorf("saving postings: %w", err)
	}
	if err := saveDocuments(ctx, dir, m.docs, DefaultWriteWorkers); err != nil {
		return err
	}
	m.logger.Info("index saved",
		"dir", dir,
		"terms", len(m.postings),
		"docs", len(m.docs),
		"duration", time.Since(start),
	)
	return nil
}

func (m *MemoryIndex) fetch(_ context.Context, term string) ([]int, error) {
	return m.postings[term], nil
}

func (m *MemoryIndex) documents(ids []int) []Document {
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, m.docs[id])
	}
	return docs
}
