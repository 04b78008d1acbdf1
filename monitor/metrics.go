package monitor

import "time"

// NodeMetrics describes one stage execution.
type NodeMetrics struct {
	NodeID    string        `json:"node_id"`
	NodeType  string        `json:"node_type"`
	TokensIn  int           `json:"tokens_in"`
	TokensOut int           `json:"tokens_out"`
	Duration  time.Duration `json:"duration"`
	Passages  int           `json:"passages"`
	Degraded  bool          `json:"degraded,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// NodeStats aggregates every execution of one node since the last reset.
type NodeStats struct {
	Runs          int           `json:"runs"`
	Failures      int           `json:"failures"`
	Degraded      int           `json:"degraded"`
	TotalDuration time.Duration `json:"total_duration"`
	Last          NodeMetrics   `json:"last"`
}

type PipelineMetrics struct {
	PipelineID    string               `json:"pipeline_id"`
	TotalTokens   int                  `json:"total_tokens"`
	TotalDuration time.Duration        `json:"total_duration"`
	Nodes         map[string]NodeStats `json:"nodes"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
}
