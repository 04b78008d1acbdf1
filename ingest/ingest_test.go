package ingest_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijit1892/ragdemo/ingest"
	"github.com/abhijit1892/ragdemo/logging"
)

func TestChunkerRespectsSizeAndOverlap(t *testing.T) {
	text := strings.Repeat("liberty equality fraternity justice ", 200)
	c := ingest.NewChunker(ingest.DefaultChunkSize, ingest.DefaultChunkOverlap)

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), ingest.DefaultChunkSize)
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-50:]
		assert.Contains(t, chunks[i], strings.TrimSpace(prevTail[strings.Index(prevTail, " ")+1:]))
	}
}

func TestChunkerShortAndEmpty(t *testing.T) {
	c := ingest.NewChunker(0, 0)
	assert.Equal(t, []string{"Article 1. India, that is Bharat."}, c.Split("  Article 1.\nIndia, that is Bharat.  "))
	assert.Nil(t, c.Split(" \n\t"))
}

func TestChunkerLongWord(t *testing.T) {
	c := ingest.NewChunker(10, 3)
	got := c.Split("abcdefghijklmnop qr st")
	assert.Equal(t, []string{"abcdefghijklmnop", "qr st"}, got)
}

func TestChunkerDocuments(t *testing.T) {
	docs := ingest.NewChunker(20, 5).Chunk("constitution.txt", "one two three four five six seven eight nine ten")
	require.NotEmpty(t, docs)
	assert.Equal(t, "constitution.txt#0", docs[0].ID)
	assert.Equal(t, "constitution.txt", docs[0].Source)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Article 14. Equality before law."), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.md"), []byte("# Article 21\nProtection of life."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.docx"), []byte("PK"), 0o644))

	l := ingest.NewLoader(ingest.NewChunker(800, 100), nil, logging.NewNop())
	docs, err := l.LoadFiles(context.Background(), []string{dir, filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), docs[0].Source)
	assert.Contains(t, docs[1].Text, "Protection of life.")
}

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, `<html><head><style>p{}</style><script>var x=1;</script></head>
<body><nav>Home | About</nav><h1>Article 15</h1><p>Prohibition of   discrimination.</p></body></html>`)
		case "/plain":
			_, _ = io.WriteString(w, "plain body")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := ingest.NewFetcher(0)
	text, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "Article 15\nProhibition of discrimination.", text)

	text, err = f.Fetch(context.Background(), srv.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, "plain body", text)

	l := ingest.NewLoader(ingest.NewChunker(800, 100), f, logging.NewNop())
	docs, err := l.LoadURLs(context.Background(), []string{srv.URL + "/missing", srv.URL + "/plain"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, srv.URL+"/plain", docs[0].Source)
}
