package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhijit1892/ragdemo/core"
)

// Loader reads local files and web pages into chunk records.
type Loader struct {
	chunker Chunker
	fetcher *Fetcher
	log     *slog.Logger
}

func NewLoader(chunker Chunker, fetcher *Fetcher, logger *slog.Logger) *Loader {
	if fetcher == nil {
		fetcher = NewFetcher(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{chunker: chunker, fetcher: fetcher, log: logger}
}

// LoadFiles chunks every supported file matched by patterns.
func (l *Loader) LoadFiles(ctx context.Context, patterns []string) ([]core.Document, error) {
	paths, err := ExpandPaths(patterns)
	if err != nil {
		return nil, err
	}
	var docs []core.Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := readers[extOf(p)](p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		chunks := l.chunker.Chunk(p, text)
		l.log.Debug("loaded file", "path", p, "chunks", len(chunks))
		docs = append(docs, chunks...)
	}
	return docs, nil
}

// LoadURLs fetches and chunks each URL. Unreachable pages are logged and
// skipped so one dead link does not block indexing.
func (l *Loader) LoadURLs(ctx context.Context, urls []string) ([]core.Document, error) {
	var docs []core.Document
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := l.fetcher.Fetch(ctx, u)
		if err != nil {
			l.log.Warn("skipping source", "url", u, "error", err)
			continue
		}
		chunks := l.chunker.Chunk(u, text)
		l.log.Debug("loaded url", "url", u, "chunks", len(chunks))
		docs = append(docs, chunks...)
	}
	return docs, nil
}

// Load reads files then URLs.
func (l *Loader) Load(ctx context.Context, patterns, urls []string) ([]core.Document, error) {
	files, err := l.LoadFiles(ctx, patterns)
	if err != nil {
		return nil, err
	}
	pages, err := l.LoadURLs(ctx, urls)
	if err != nil {
		return nil, err
	}
	docs := append(files, pages...)
	l.log.Info("corpus loaded", "files", len(files), "web_chunks", len(pages), "chunks", len(docs))
	return docs, nil
}
