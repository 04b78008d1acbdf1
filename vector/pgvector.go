package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgVectorStore keeps chunks in PostgreSQL and ranks them with pgvector's
// cosine distance operator.
type PgVectorStore struct {
	db        *sql.DB
	dimension int
}

// NewPgVectorStore connects to dsn and creates the passages table for
// vectors of the given dimension (1536 for text-embedding-3-small).
func NewPgVectorStore(ctx context.Context, dsn string, dimension int) (*PgVectorStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("pgvector: dimension must be positive, got %d", dimension)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PgVectorStore{db: db, dimension: dimension}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *PgVectorStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			embedding vector(%d),
			metadata JSONB DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_passages_embedding ON passages USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Upsert writes docs in one transaction, replacing rows by ID.
func (s *PgVectorStore) Upsert(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, content, source, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			source = EXCLUDED.source,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		if len(doc.Embedding) != s.dimension {
			return fmt.Errorf("upsert %s: embedding has %d dimensions, store expects %d", doc.ID, len(doc.Embedding), s.dimension)
		}
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, doc.ID, doc.Content, doc.Source, FormatEmbedding(doc.Embedding), metadata); err != nil {
			return fmt.Errorf("upsert %s: %w", doc.ID, err)
		}
	}
	return tx.Commit()
}

func (s *PgVectorStore) Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 4
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, source, metadata, 1 - (embedding <=> $1) AS score
		FROM passages
		ORDER BY embedding <=> $1, id
		LIMIT $2
	`, FormatEmbedding(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var doc Document
		var metadataBytes []byte
		var score float64
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Source, &metadataBytes, &score); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if len(metadataBytes) > 0 {
			if err := json.Unmarshal(metadataBytes, &doc.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata for %s: %w", doc.ID, err)
			}
		}
		results = append(results, SearchResult{Document: doc, Score: score})
	}
	return results, rows.Err()
}

func (s *PgVectorStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf("DELETE FROM passages WHERE id IN (%s)", strings.Join(placeholders, ","))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// FormatEmbedding renders v in pgvector text form: "[0.1,0.2,0.3]".
func FormatEmbedding(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseEmbedding reads pgvector text form back into a slice.
func ParseEmbedding(s string) ([]float64, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse embedding component %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}
