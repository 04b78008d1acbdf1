package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhijit1892/ragdemo/core"
)

const maxFetchBytes = 1 << 20

// Fetcher downloads web pages and reduces them to plain text.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the text of url. HTML bodies are stripped of markup,
// scripts and styles. At most 1 MiB is read.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ragdemo-ingest/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", core.ErrServiceUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxFetchBytes)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return HTMLText(body)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(raw), nil
}
