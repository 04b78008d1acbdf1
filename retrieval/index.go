package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/embedding"
	"github.com/abhijit1892/ragdemo/vector"
)

// Index is an embedding index over a vector store. It is read-only after
// BuildIndex returns and safe for concurrent Search calls.
type Index struct {
	embedder embedding.Embedder
	store    vector.Store
	topK     int
	minScore float64
	size     int
	log      *slog.Logger
}

// BuildIndex embeds docs and loads them into a vector store. Documents with
// blank text are skipped; an empty corpus yields a ready, empty index.
func BuildIndex(ctx context.Context, docs []core.Document, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.embedder == nil {
		o.embedder = embedding.NewTFIDF()
	}
	if o.store == nil {
		o.store = vector.NewMemoryStore()
	}

	start := time.Now()
	kept := make([]core.Document, 0, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		if d.ID == "" {
			d.ID = "doc-" + strconv.Itoa(i)
		}
		kept = append(kept, d)
	}

	idx := &Index{
		embedder: o.embedder,
		store:    o.store,
		topK:     o.topK,
		minScore: o.minScore,
		size:     len(kept),
		log:      o.logger,
	}
	if len(kept) == 0 {
		o.logger.Warn("index built with no documents")
		return idx, nil
	}

	corpus := make([]string, len(kept))
	for i, d := range kept {
		corpus[i] = d.Text
	}
	if err := o.embedder.Prepare(ctx, corpus); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", o.embedder.Name(), err)
	}

	vecs := make([]vector.Document, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, d := range kept {
		g.Go(func() error {
			emb, err := o.embedder.Embed(gctx, d.Text)
			if err != nil {
				return fmt.Errorf("embed %s: %w", d.ID, err)
			}
			vecs[i] = vector.Document{ID: d.ID, Content: d.Text, Source: d.Source, Embedding: emb}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := o.store.Upsert(ctx, vecs); err != nil {
		return nil, fmt.Errorf("load vector store: %w", err)
	}

	o.logger.Info("index built",
		"documents", len(kept),
		"skipped", len(docs)-len(kept),
		"embedder", o.embedder.Name(),
		"dimension", o.embedder.Dimension(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return idx, nil
}

// Ready reports whether the index can serve searches.
func (x *Index) Ready() bool {
	return x != nil && x.store != nil && x.embedder != nil
}

// Size is the number of indexed documents.
func (x *Index) Size() int {
	if x == nil {
		return 0
	}
	return x.size
}

func (x *Index) TopK() int {
	if x == nil {
		return 0
	}
	return x.topK
}

// Search embeds query and returns the most similar passages.
func (x *Index) Search(ctx context.Context, query string) ([]core.Passage, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if !x.Ready() {
		return nil, core.ErrIndexNotReady
	}
	if x.size == 0 {
		return []core.Passage{}, nil
	}

	emb, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, notReady(ctx, "embed query", err)
	}
	hits, err := x.store.Search(ctx, emb, x.topK)
	if err != nil {
		return nil, notReady(ctx, "search store", err)
	}

	passages := make([]core.Passage, 0, len(hits))
	for _, h := range hits {
		if !keep(h.Score, x.minScore) {
			continue
		}
		passages = append(passages, core.Passage{
			Text:        h.Document.Content,
			SourceLabel: h.Document.Source,
			Score:       h.Score,
		})
		if len(passages) == x.topK {
			break
		}
	}
	x.log.Debug("retrieved", "query_chars", len(query), "hits", len(hits), "kept", len(passages))
	return passages, nil
}

// notReady marks a backend failure as ErrIndexNotReady. Cancellation and
// deadline errors belong to the caller and pass through unchanged.
func notReady(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", core.ErrIndexNotReady, op, err)
}

// Close releases the underlying vector store.
func (x *Index) Close() error {
	if !x.Ready() {
		return nil
	}
	return x.store.Close()
}
