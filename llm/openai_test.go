package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/llm"
)

func msgs() []core.Message {
	return []core.Message{
		core.NewSystemMessage("be brief"),
		core.NewUserMessage("what is article 15?"),
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, strict bool) *llm.OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := llm.NewGroqClient(llm.ClientConfig{APIKey: "gsk_test", BaseURL: srv.URL, Timeout: 5, Strict: strict})
	require.NoError(t, err)
	return c
}

func TestOpenAICompleteSendsRequest(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Article 15 prohibits discrimination.  "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	}, false)

	resp, err := c.Complete(context.Background(), core.DefaultModelConfig("llama-3.3-70b-versatile"), msgs())
	require.NoError(t, err)

	assert.Equal(t, "Article 15 prohibits discrimination.", resp.Content)
	assert.False(t, resp.Degraded)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, "llama-3.3-70b-versatile", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-9)
	assert.EqualValues(t, 1500, got["max_tokens"])
	assert.Len(t, got["messages"], 2)
}

func TestOpenAICompleteStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, core.ErrAuthentication},
		{http.StatusForbidden, core.ErrAuthentication},
		{http.StatusTooManyRequests, core.ErrServiceUnavailable},
		{http.StatusBadGateway, core.ErrServiceUnavailable},
		{http.StatusBadRequest, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"nope"}`, tt.status)
			}, false)

			resp, err := c.Complete(context.Background(), core.DefaultModelConfig("m"), msgs())
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenAICompleteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := llm.NewGroqClient(llm.ClientConfig{APIKey: "k", BaseURL: url, Timeout: 2})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), core.DefaultModelConfig("m"), msgs())
	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
}

func TestOpenAICompleteCallerDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, false)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, core.DefaultModelConfig("m"), msgs())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, core.ErrServiceUnavailable)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, err = c.Complete(ctx, core.DefaultModelConfig("m"), msgs())
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, core.ErrServiceUnavailable)
}

func TestOpenAICompleteEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"   "},"finish_reason":"length"}]}`)
	}, false)

	_, err := c.Complete(context.Background(), core.DefaultModelConfig("m"), msgs())
	assert.ErrorIs(t, err, core.ErrEmptyGeneration)
}

func TestOpenAICompleteDegraded(t *testing.T) {
	body := `{"choices":[{"message":{"role":"assistant"}}]}`
	handler := func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, body) }

	resp, err := newTestClient(t, handler, false).Complete(context.Background(), core.DefaultModelConfig("m"), msgs())
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, body, resp.Content)

	_, err = newTestClient(t, handler, true).Complete(context.Background(), core.DefaultModelConfig("m"), msgs())
	assert.ErrorIs(t, err, core.ErrMalformedResponse)
}

func TestOpenAICompleteNotJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "plain text answer")
	}, false)

	resp, err := c.Complete(context.Background(), core.DefaultModelConfig("m"), msgs())
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, "plain text answer", resp.Content)
}

func TestCompleteRejectsInvalidRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true }, false)

	_, err := c.Complete(context.Background(), core.DefaultModelConfig("m"), []core.Message{core.NewSystemMessage("x")})
	assert.ErrorIs(t, err, core.ErrInvalidRequest)

	_, err = c.Complete(context.Background(), core.DefaultModelConfig("m").WithTemperature(3), msgs())
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
	assert.False(t, called)
}

func TestConstructorsRequireKey(t *testing.T) {
	_, err := llm.NewGroqClient(llm.ClientConfig{})
	assert.ErrorIs(t, err, core.ErrMissingCredential)

	_, err = llm.NewAnthropicClient("  ")
	assert.ErrorIs(t, err, core.ErrAuthentication)

	_, err = llm.NewOllamaChatClient(llm.ClientConfig{BaseURL: "http://localhost:11434"})
	assert.NoError(t, err)

	_, err = llm.NewClient(llm.ProviderConfig{Provider: "groq"})
	assert.ErrorIs(t, err, core.ErrMissingCredential)

	_, err = llm.NewClient(llm.ProviderConfig{Provider: "bard", APIKey: "k"})
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestOpenAIEmbedBatchOrdersByIndex(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}],"usage":{"prompt_tokens":4}}`)
	}, false)

	got, err := c.EmbedBatch(context.Background(), "text-embedding-3-small", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1, 0}, got[0].Embedding)
	assert.Equal(t, []float64{0, 1}, got[1].Embedding)
	assert.Equal(t, 2, got[0].TokenCount)
}
