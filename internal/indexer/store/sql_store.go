package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Adithya-Monish-Kumar-K/docsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docsearch/pkg/postgres"
)

const (
	postgresSchema = `CREATE TABLE IF NOT EXISTS docsearch_postings (
	generation TEXT NOT NULL,
	term TEXT NOT NULL,
	data BYTEA NOT NULL,
	PRIMARY KEY (generation, term)
)`
	postgresUpsert = `INSERT INTO docsearch_postings (generation, term, data) VALUES ($1, $2, $3)
ON CONFLICT (generation, term) DO UPDATE SET data = EXCLUDED.data`
	postgresSelect = `SELECT data FROM docsearch_postings WHERE generation = $1 AND term = $2`
	postgresDrop   = `DELETE FROM docsearch_postings WHERE generation = $1`

	sqliteSchema = `CREATE TABLE IF NOT EXISTS docsearch_postings (
	generation TEXT NOT NULL,
	term TEXT NOT NULL,
	data BLOB NOT NULL,
	PRIMARY KEY (generation, term)
)`
	sqliteUpsert = `INSERT INTO docsearch_postings (generation, term, data) VALUES (?, ?, ?)
ON CONFLICT (generation, term) DO UPDATE SET data = excluded.data`
	sqliteSelect = `SELECT data FROM docsearch_postings WHERE generation = ? AND term = ?`
	sqliteDrop   = `DELETE FROM docsearch_postings WHERE generation = ?`
)

// sqlStore is the relational backend shared by PostgreSQL and SQLite; only
// the statements differ. Rows are keyed by (generation, term).
type sqlStore struct {
	db         *sql.DB
	generation string
	upsert     string
	query      string
	drop       string
	inTx       func(ctx context.Context, fn func(tx *sql.Tx) error) error
	close      func() error
}

func (s *sqlStore) Put(ctx context.Context, postings map[string][]int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.upsert)
		if err != nil {
			return fmt.Errorf("preparing upsert: %w", err)
		}
		defer stmt.Close()
		for term, list := range postings {
			if _, err := stmt.ExecContext(ctx, s.generation, term, segment.EncodePostings(term, list)); err != nil {
				return fmt.Errorf("upserting postings for %q: %w", term, err)
			}
		}
		return nil
	})
}

func (s *sqlStore) Get(ctx context.Context, term string) ([]int, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.query, s.generation, term).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting postings for %q: %w", term, err)
	}
	entries, err := segment.Decode(segment.ShardMagic, data)
	if err != nil {
		return nil, fmt.Errorf("stored postings for %q: %w", term, err)
	}
	return segment.Lookup(entries, term), nil
}

// DropGeneration deletes every term stored under generation.
func (s *sqlStore) DropGeneration(ctx context.Context, generation string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.drop, generation)
	if err != nil {
		return 0, fmt.Errorf("dropping postings generation %q: %w", generation, err)
	}
	return res.RowsAffected()
}

func (s *sqlStore) Close() error {
	return s.close()
}

// PostgresStore keeps postings in the docsearch_postings table.
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore creates the postings table if needed and binds the store
// to generation.
func NewPostgresStore(ctx context.Context, client *postgres.Client, generation string) (*PostgresStore, error) {
	if err := client.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("creating postings table: %w", err)
	}
	return &PostgresStore{sqlStore{
		db:         client.DB,
		generation: generation,
		upsert:     postgresUpsert,
		query:      postgresSelect,
		drop:       postgresDrop,
		inTx:       client.InTx,
		close:      client.Close,
	}}, nil
}

// SQLiteStore keeps postings in an embedded SQLite database file.
type SQLiteStore struct {
	sqlStore
}

func OpenSQLiteStore(ctx context.Context, path, generation string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite posting store: %w", err)
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialising sqlite posting store: %w", err)
		}
	}
	return &SQLiteStore{sqlStore{
		db:         db,
		generation: generation,
		upsert:     sqliteUpsert,
		query:      sqliteSelect,
		drop:       sqliteDrop,
		inTx: func(ctx context.Context, fn func(tx *sql.Tx) error) error {
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("beginning transaction: %w", err)
			}
			if err := fn(tx); err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("committing transaction: %w", err)
			}
			return nil
		},
		close: db.Close,
	}}, nil
}
