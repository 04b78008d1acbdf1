// Package embedding turns text into vectors for the retrieval index.
package embedding

import "context"

// Embedder converts free text into a numeric vector. Implementations may
// need a preparation pass over the corpus before Embed is usable, and must
// be safe for concurrent Embed calls once prepared.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}
