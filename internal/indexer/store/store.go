// Package store holds posting lists keyed by term. The default backend is the
// hash-sharded directory layout of package segment; Redis, PostgreSQL and
// SQLite backends keep the same contract for deployments that would rather
// not ship a directory of small files.
package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/resilience"
)

// PostingStore is a term -> postings key-value store.
//
// Put replaces the postings of every term in the batch; it never merges with
// what was stored before. Get returns nil, nil for an unknown term. Slices
// returned by Get may be shared between concurrent callers and must not be
// modified.
type PostingStore interface {
	Put(ctx context.Context, postings map[string][]int) error
	Get(ctx context.Context, term string) ([]int, error)
	Close() error
}

// Generations is implemented by shared backends whose contents outlive an
// index directory. Each saved index writes its postings under its own
// generation, so a rebuild never touches the postings a published index
// reads. DropGeneration deletes every term stored under generation.
type Generations interface {
	DropGeneration(ctx context.Context, generation string) (int64, error)
}

// Open returns the backend selected by cfg.Index.Store for the index rooted
// at dir. Shared backends read and write postings of generation only; the
// directory store ignores it.
func Open(ctx context.Context, cfg *config.Config, dir, generation string) (PostingStore, error) {
	switch cfg.Index.Store {
	case config.StoreDir, "":
		return NewDirStore(dir, cfg.Index.WriteWorkers), nil
	case config.StoreRedis:
		var client *pkgredis.Client
		err := resilience.Retry(ctx, "redis connect", resilience.DefaultBackoff, func(context.Context) error {
			var err error
			client, err = pkgredis.NewClient(cfg.Redis)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("opening redis posting store: %w", err)
		}
		return NewRedisStore(client, cfg.Redis.KeyPrefix, generation), nil
	case config.StorePostgres:
		var client *postgres.Client
		err := resilience.Retry(ctx, "postgres connect", resilience.DefaultBackoff, func(context.Context) error {
			var err error
			client, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres posting store: %w", err)
		}
		s, err := NewPostgresStore(ctx, client, generation)
		if err != nil {
			client.Close()
			return nil, err
		}
		return s, nil
	case config.StoreSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = filepath.Join(dir, "postings.db")
		}
		return OpenSQLiteStore(ctx, path, generation)
	default:
		return nil, fmt.Errorf("unknown posting store %q", cfg.Index.Store)
	}
}

var (
	_ Generations = (*RedisStore)(nil)
	_ Generations = (*PostgresStore)(nil)
	_ Generations = (*SQLiteStore)(nil)
)
