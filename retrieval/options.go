package retrieval

import (
	"log/slog"

	"github.com/abhijit1892/ragdemo/embedding"
	"github.com/abhijit1892/ragdemo/vector"
)

type options struct {
	embedder    embedding.Embedder
	store       vector.Store
	topK        int
	minScore    float64
	concurrency int
	logger      *slog.Logger
}

// Option configures BuildIndex.
type Option func(*options)

// WithEmbedder sets the embedder. BuildIndex prepares it on the corpus, so
// the index owns it; do not share one embedder between live indexes.
func WithEmbedder(e embedding.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithStore sets the vector store. The index takes ownership and closes it.
func WithStore(s vector.Store) Option {
	return func(o *options) { o.store = s }
}

func WithTopK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithMinScore drops hits scoring below s. Non-positive scores are always dropped.
func WithMinScore(s float64) Option {
	return func(o *options) { o.minScore = s }
}

// WithConcurrency bounds parallel embedding calls during build.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func defaultOptions() options {
	return options{
		topK:        DefaultTopK,
		concurrency: 4,
		logger:      slog.Default(),
	}
}
