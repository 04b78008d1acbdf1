package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/abhijit1892/ragdemo/llm"
)

// Remote delegates to a provider embedding endpoint.
type Remote struct {
	client llm.EmbeddingClient
	model  string
	dim    atomic.Int64
}

func NewRemote(client llm.EmbeddingClient, model string) *Remote {
	return &Remote{client: client, model: model}
}

func (r *Remote) Name() string { return "remote:" + r.model }

// Prepare embeds one corpus entry to learn the vector dimension.
func (r *Remote) Prepare(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return nil
	}
	_, err := r.Embed(ctx, corpus[0])
	return err
}

func (r *Remote) Dimension() int { return int(r.dim.Load()) }

func (r *Remote) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := r.client.Embed(ctx, r.model, text)
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", r.model, err)
	}
	r.dim.Store(int64(len(resp.Embedding)))
	return resp.Embedding, nil
}
