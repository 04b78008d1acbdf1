package engine

import (
	"time"

	"github.com/abhijit1892/ragdemo/core"
)

// Span records one stage of a run: what it saw and what it produced.
type Span struct {
	SpanID       string        `json:"span_id"`
	NodeID       string        `json:"node_id"`
	NodeType     string        `json:"node_type"`
	StartTime    int64         `json:"start_time"`
	EndTime      int64         `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	Passages     int           `json:"passages"`
	AnswerChars  int           `json:"answer_chars"`
	InputTokens  int           `json:"input_tokens,omitempty"`
	OutputTokens int           `json:"output_tokens,omitempty"`
	Degraded     bool          `json:"degraded,omitempty"`
}

// EngineOutput is a completed run with per-stage attribution.
type EngineOutput struct {
	State    core.State    `json:"state"`
	Spans    []Span        `json:"spans"`
	Duration time.Duration `json:"duration"`
}

// nodeResult is what a stage reports besides the new state.
type nodeResult struct {
	TokensIn  int
	TokensOut int
	Degraded  bool
}
