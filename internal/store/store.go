// Package store persists decoded catalog entries in PostgreSQL and
// provides msgid lookup and pgvector similarity search over them.
package store

import (
	"context"
	"fmt"
	"sync"

	"mocat/internal/textutil"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// Message is one catalog entry as stored in the warehouse.
type Message struct {
	Hash        string `json:"-"`
	Msgid       string `json:"msgid"`
	Msgstr      string `json:"msgstr"`
	CatalogPath string `json:"catalog"`
	Locale      string `json:"locale,omitempty"`
}

// Key returns the dedup hash for a message: the msgid is unique per
// catalog file, not globally.
func (m Message) Key() string {
	return textutil.Hash(m.CatalogPath + "\x00" + m.Msgid)
}

// Embedding pairs a msgid with its vector.
type Embedding struct {
	Msgid  string
	Vector []float32
}

// SearchResult is one similarity match.
type SearchResult struct {
	Msgid string
	Score float64
}

// Store is the PostgreSQL-backed catalog warehouse with an in-memory
// lookup layer for repeated msgid queries.
type Store struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string][]Message // msgid → rows across catalogs
}

// New creates a store on an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		memory: make(map[string][]Message),
	}
}

// EnsureSchema creates the warehouse tables. dimensions sizes the
// pgvector column and must match the embedding model.
func (s *Store) EnsureSchema(ctx context.Context, dimensions int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS messages (
			hash TEXT PRIMARY KEY,
			msgid TEXT NOT NULL,
			msgstr TEXT NOT NULL,
			catalog_path TEXT NOT NULL,
			locale TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS messages_msgid_idx ON messages (msgid)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS msgid_embeddings (
			hash TEXT PRIMARY KEY,
			msgid TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, dimensions),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	log.Debug().Msg("Warehouse schema ensured")
	return nil
}

// Upsert inserts or refreshes message rows, deduplicating by hash.
func (s *Store) Upsert(ctx context.Context, messages []Message) (int, error) {
	inserted := 0
	for _, m := range messages {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO messages (hash, msgid, msgstr, catalog_path, locale)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (hash) DO UPDATE
			SET msgstr = EXCLUDED.msgstr, locale = EXCLUDED.locale
		`, m.Key(), m.Msgid, m.Msgstr, m.CatalogPath, m.Locale)
		if err != nil {
			return inserted, fmt.Errorf("upsert message: %w", err)
		}
		if tag.RowsAffected() > 0 {
			inserted++
		}
	}

	log.Info().Int("rows", inserted).Msg("Upserted catalog entries")
	return inserted, nil
}

// Lookup returns every stored translation of a msgid across catalogs,
// serving repeated queries from memory.
func (s *Store) Lookup(ctx context.Context, msgid string) ([]Message, error) {
	s.mu.RLock()
	if rows, ok := s.memory[msgid]; ok {
		s.mu.RUnlock()
		return rows, nil
	}
	s.mu.RUnlock()

	rows, err := s.pool.Query(ctx, `
		SELECT hash, msgid, msgstr, catalog_path, locale
		FROM messages
		WHERE msgid = $1
		ORDER BY catalog_path
	`, msgid)
	if err != nil {
		return nil, fmt.Errorf("lookup msgid: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Hash, &m.Msgid, &m.Msgstr, &m.CatalogPath, &m.Locale); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lookup msgid: %w", err)
	}

	s.mu.Lock()
	s.memory[msgid] = messages
	s.mu.Unlock()

	return messages, nil
}

// GetAll retrieves every stored message, ordered by catalog then
// msgid.
func (s *Store) GetAll(ctx context.Context) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hash, msgid, msgstr, catalog_path, locale
		FROM messages
		ORDER BY catalog_path, msgid
	`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Hash, &m.Msgid, &m.Msgstr, &m.CatalogPath, &m.Locale); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	return messages, nil
}

// StoreEmbeddings upserts msgid embedding vectors.
func (s *Store) StoreEmbeddings(ctx context.Context, embeddings []Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	for _, e := range embeddings {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO msgid_embeddings (hash, msgid, embedding)
			VALUES ($1, $2, $3)
			ON CONFLICT (hash) DO UPDATE SET embedding = EXCLUDED.embedding
		`, textutil.Hash(e.Msgid), e.Msgid, pgvector.NewVector(e.Vector))
		if err != nil {
			return fmt.Errorf("insert embedding for %s: %w", textutil.Truncate(e.Msgid, 30), err)
		}
	}

	log.Info().Int("count", len(embeddings)).Msg("Stored msgid embeddings")
	return nil
}

// SearchSimilar finds the top-K msgids closest to the query vector by
// cosine distance.
func (s *Store) SearchSimilar(ctx context.Context, query []float32, topK int) ([]SearchResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT msgid, 1 - (embedding <=> $1) AS similarity
		FROM msgid_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(query), topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Msgid, &r.Score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return results, nil
}
