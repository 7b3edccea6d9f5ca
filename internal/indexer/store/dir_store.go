package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
)

// DirStore keeps one shard file per term key under <root>/index.
type DirStore struct {
	root    string
	workers int
	group   singleflight.Group
	logger  *slog.Logger
}

// NewDirStore returns a store rooted at the index directory root. workers
// bounds the number of shard files written concurrently by Put.
func NewDirStore(root string, workers int) *DirStore {
	if workers < 1 {
		workers = 1
	}
	return &DirStore{
		root:    root,
		workers: workers,
		logger:  slog.Default().With("component", "dir-store"),
	}
}

func (s *DirStore) Put(ctx context.Context, postings map[string][]int) error {
	dir := filepath.Join(s.root, segment.IndexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating shard directory: %w", err)
	}
	shards := make(map[string][]segment.Entry, len(postings))
	for term, list := range postings {
		key := segment.ShardKey(term)
		shards[key] = append(shards[key], segment.Entry{Term: term, Postings: list})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for key, entries := range shards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.writeShard(filepath.Join(dir, key), entries)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("writing shards: %w", err)
	}
	s.logger.Debug("shards written", "terms", len(postings), "files", len(shards))
	return nil
}

// writeShard replaces the entries for the batch's terms and keeps entries of
// other terms that already share the file.
func (s *DirStore) writeShard(path string, entries []segment.Entry) error {
	existing, err := segment.ReadShard(path)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		replaced := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			replaced[e.Term] = struct{}{}
		}
		for _, e := range existing {
			if _, ok := replaced[e.Term]; !ok {
				entries = append(entries, e)
			}
		}
	}
	return segment.WriteFile(path, segment.Encode(segment.ShardMagic, entries))
}

func (s *DirStore) Get(ctx context.Context, term string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err, shared := s.group.Do(term, func() (interface{}, error) {
		entries, err := segment.ReadShard(segment.ShardPath(s.root, term))
		if err != nil {
			return nil, err
		}
		return segment.Lookup(entries, term), nil
	})
	if err != nil {
		return nil, err
	}
	postings := v.([]int)
	s.logger.Debug("shard read", "term", term, "postings", len(postings), "shared", shared)
	return postings, nil
}

func (s *DirStore) Close() error {
	return nil
}
