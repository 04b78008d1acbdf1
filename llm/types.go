package llm

// Completion is the result of a chat call. Degraded is set when the
// provider answered but its payload could not be parsed, in which case
// Content carries the raw response body.
type Completion struct {
	Content      string `json:"content"`
	Degraded     bool   `json:"degraded,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// EmbeddingResponse represents a single embedding result.
type EmbeddingResponse struct {
	Embedding  []float64 `json:"embedding"`
	TokenCount int       `json:"token_count"`
}
