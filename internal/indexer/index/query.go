package index

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/lemma"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/tokenizer"
)

// fetchFunc returns the posting list of a single term; unknown terms yield
// an empty list.
type fetchFunc func(ctx context.Context, term string) ([]int, error)

type intSet map[int]struct{}

// tokenPostings unions the postings of every lemma form of token, each value
// shifted down by shift.
func tokenPostings(ctx context.Context, r lemma.Resolver, token string, shift int, fetch fetchFunc) (intSet, error) {
	set := make(intSet)
	for _, term := range lemma.Terms(r, token) {
		postings, err := fetch(ctx, term)
		if err != nil {
			return nil, fmt.Errorf("loading postings for %q: %w", term, err)
		}
		for _, p := range postings {
			set[p-shift] = struct{}{}
		}
	}
	return set, nil
}

// matchAll intersects the per-token posting sets: AND across tokens, OR
// across the lemma forms of one token. An empty query matches nothing.
func matchAll(ctx context.Context, r lemma.Resolver, query string, fetch fetchFunc) (intSet, error) {
	return intersectTokens(ctx, r, tokenizer.Lower(query), fetch, false)
}

// matchPhrase keeps the start positions p such that token i occurs at p+i
// for every i.
func matchPhrase(ctx context.Context, r lemma.Resolver, query string, fetch fetchFunc) (intSet, error) {
	return intersectTokens(ctx, r, tokenizer.Lower(query), fetch, true)
}

func intersectTokens(ctx context.Context, r lemma.Resolver, tokens []string, fetch fetchFunc, shifted bool) (intSet, error) {
	if len(tokens) == 0 {
		return intSet{}, nil
	}
	working, err := tokenPostings(ctx, r, tokens[0], 0, fetch)
	if err != nil {
		return nil, err
	}
	for i, tok := range tokens[1:] {
		if len(working) == 0 {
			return working, nil
		}
		shift := 0
		if shifted {
			shift = i + 1
		}
		next, err := tokenPostings(ctx, r, tok, shift, fetch)
		if err != nil {
			return nil, err
		}
		for v := range working {
			if _, ok := next[v]; !ok {
				delete(working, v)
			}
		}
	}
	return working, nil
}

// docIDs maps global positions to the owning document ids through the
// boundary table: the rightmost boundary <= position. The result is
// deduplicated and ascending.
func docIDs(positions intSet, boundaries []int) []int {
	seen := make(intSet)
	for p := range positions {
		id := sort.SearchInts(boundaries, p+1) - 1
		if id >= 0 {
			seen[id] = struct{}{}
		}
	}
	return sortedIDs(seen)
}

func sortedIDs(set intSet) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// saveDocuments writes one record per document under dir/docs.
func saveDocuments(ctx context.Context, dir string, docs []Document, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return segment.WriteDoc(dir, doc.ID, segment.DocRecord{Title: doc.Title, Content: doc.Content})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("writing documents: %w", err)
	}
	return nil
}

// loadDocs reads the records of ids in order.
func loadDocs(dir string, ids []int) ([]Document, error) {
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := loadDoc(dir, id)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadDoc(dir string, id int) (Document, error) {
	rec, err := segment.ReadDoc(dir, id)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Title: rec.Title, Content: rec.Content}, nil
}
