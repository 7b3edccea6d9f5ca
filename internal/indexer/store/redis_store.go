package store

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/redis"
)

// RedisStore keeps each term's postings under <prefix><generation>:<term>,
// encoded with the shard codec.
type RedisStore struct {
	client *pkgredis.Client
	base   string
	prefix string
}

func NewRedisStore(client *pkgredis.Client, prefix, generation string) *RedisStore {
	return &RedisStore{client: client, base: prefix, prefix: generationPrefix(prefix, generation)}
}

func generationPrefix(prefix, generation string) string {
	if generation == "" {
		return prefix
	}
	return prefix + generation + ":"
}

func (s *RedisStore) Put(ctx context.Context, postings map[string][]int) error {
	values := make(map[string][]byte, len(postings))
	for term, list := range postings {
		values[s.prefix+term] = segment.EncodePostings(term, list)
	}
	if err := s.client.SetMany(ctx, values); err != nil {
		return fmt.Errorf("storing postings in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, term string) ([]int, error) {
	data, err := s.client.GetBytes(ctx, s.prefix+term)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading postings for %q from redis: %w", term, err)
	}
	entries, err := segment.Decode(segment.ShardMagic, data)
	if err != nil {
		return nil, fmt.Errorf("redis postings for %q: %w", term, err)
	}
	return segment.Lookup(entries, term), nil
}

// DropGeneration removes every key of generation. The unnamed generation
// shares its prefix with all others, so it is never dropped.
func (s *RedisStore) DropGeneration(ctx context.Context, generation string) (int64, error) {
	if generation == "" {
		return 0, nil
	}
	n, err := s.client.FlushByPattern(ctx, generationPrefix(s.base, generation)+"*")
	if err != nil {
		return n, fmt.Errorf("dropping postings generation %s: %w", generation, err)
	}
	return n, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
