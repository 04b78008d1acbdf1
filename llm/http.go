package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abhijit1892/ragdemo/core"
)

const maxErrorBody = 512

// postJSON sends payload and returns the response body of a 200 reply.
// Non-200 statuses and transport failures are mapped onto the core
// error taxonomy.
func postJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, transportError(ctx, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, "reading response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// transportError reports a failed exchange as ErrServiceUnavailable unless
// the caller's context ended it.
func transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%w: %s: %w", core.ErrServiceUnavailable, op, err)
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = core.ErrAuthentication
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		kind = core.ErrServiceUnavailable
	default:
		kind = core.ErrInvalidRequest
	}
	return fmt.Errorf("%w: API error (status %d): %s", kind, status, msg)
}

// degraded handles a 200 reply whose text could not be extracted.
func degraded(raw []byte, strict bool, log *slog.Logger, provider, reason string) (*Completion, error) {
	text := strings.TrimSpace(string(raw))
	if strict || text == "" {
		return nil, fmt.Errorf("%w: %s: %s", core.ErrMalformedResponse, provider, reason)
	}
	log.Warn("degraded completion", "provider", provider, "reason", reason, "bytes", len(raw))
	return &Completion{Content: text, Degraded: true}, nil
}
