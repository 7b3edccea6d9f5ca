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

// PositionalIndex maps terms to global word positions. Every token of the
// corpus, title words first, takes the next position; each document is
// followed by one unused gap position so that no phrase can match across a
// document boundary. boundaries[id] is the first position of document id.
type PositionalIndex struct {
	resolver   lemma.Resolver
	docs       []Document
	postings   map[string][]int
	boundaries []int
	next       int
	logger     *slog.Logger
}

func NewPositionalIndex(resolver lemma.Resolver) *PositionalIndex {
	return &PositionalIndex{
		resolver: resolver,
		postings: make(map[string][]int),
		logger:   slog.Default().With("component", "positional-index"),
	}
}

// Add assigns doc the next id and records one position per token. All lemma
// forms of a token share its position.
func (p *PositionalIndex) Add(doc Document) {
	doc.ID = len(p.docs)
	p.boundaries = append(p.boundaries, p.next)
	p.docs = append(p.docs, doc)

	for _, text := range []string{doc.Title, doc.Content} {
		for _, tok := range tokenizer.Lower(text) {
			for _, term := range lemma.Terms(p.resolver, tok) {
				p.postings[term] = append(p.postings[term], p.next)
			}
			p.next++
		}
	}
	p.next++
}

// MatchIDs returns the ascending ids of documents containing the query
// tokens as a contiguous phrase.
func (p *PositionalIndex) MatchIDs(query string) []int {
	positions, _ := matchPhrase(context.Background(), p.resolver, query, p.fetch)
	return docIDs(positions, p.boundaries)
}

func (p *PositionalIndex) Search(ctx context.Context, query string) ([]Document, error) {
	positions, err := matchPhrase(ctx, p.resolver, query, p.fetch)
	if err != nil {
		return nil, err
	}
	ids := docIDs(positions, p.boundaries)
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, p.docs[id])
	}
	return docs, nil
}

// Boundaries returns the boundary table. The slice must not be modified.
func (p *PositionalIndex) Boundaries() []int { return p.boundaries }

func (p *PositionalIndex) Resolver() lemma.Resolver { return p.resolver }
func (p *PositionalIndex) Kind() string             { return KindPositional }
func (p *PositionalIndex) Len() int                 { return len(p.docs) }
func (p *PositionalIndex) Terms() int               { return len(p.postings) }

// Save writes the index under dir using the directory shard store.
func (p *PositionalIndex) Save(ctx context.Context, dir string) error {
	return p.SaveWith(ctx, dir, store.NewDirStore(dir, DefaultWriteWorkers))
}

// SaveWith writes document records and the boundary table under dir and the
// position lists to postings.
func (p *PositionalIndex) SaveWith(ctx context.Context, dir string, postings store.PostingStore) error {
	start := time.Now()
	if err := segment.MkdirAll(dir); err != nil {
		return err
	}
	if err := postings.Put(ctx, p.postings); err != nil {
		return fmt.Errorf("saving positions: %w", err)
	}
	if err := saveDocuments(ctx, dir, p.docs, DefaultWriteWorkers); err != nil {
		return err
	}
	if err := segment.WriteBoundaries(dir, p.boundaries); err != nil {
		return fmt.Errorf("saving boundary table: %w", err)
	}
	p.logger.Info("positional index saved",
		"dir", dir,
		"terms", len(p.postings),
		"docs", len(p.docs),
		"positions", p.next,
		"duration", time.Since(start),
	)
	return nil
}

func (p *PositionalIndex) fetch(_ context.Context, term string) ([]int, error) {
	return p.postings[term], nil
}
