// Package vector provides vector storage and similarity search.
package vector

import "context"

// Document is one indexed chunk with its embedding.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Source    string         `json:"source,omitempty"`
	Embedding []float64      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SearchResult is a hit with its cosine similarity in [-1, 1].
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Store provides vector storage and similarity search. Search returns at
// most topK results ordered by descending score.
type Store interface {
	Upsert(ctx context.Context, docs []Document) error
	Search(ctx context.Context, embedding []float64, topK int) ([]SearchResult, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	Close() error
}
