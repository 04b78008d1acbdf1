package monitor

import (
	"sync"
	"time"
)

// MetricsCollector receives one record per stage execution. Implementations
// must be safe for concurrent use.
type MetricsCollector interface {
	Record(metrics NodeMetrics)
	Flush() PipelineMetrics
}

type InMemoryCollector struct {
	mu          sync.RWMutex
	pipelineID  string
	nodes       map[string]NodeStats
	totalTokens int
	startTime   time.Time
}

func NewInMemoryCollector(pipelineID string) *InMemoryCollector {
	return &InMemoryCollector{
		pipelineID: pipelineID,
		nodes:      make(map[string]NodeStats),
		startTime:  time.Now(),
	}
}

func (c *InMemoryCollector) Record(m NodeMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.nodes[m.NodeID]
	s.Runs++
	if !m.Success {
		s.Failures++
	}
	if m.Degraded {
		s.Degraded++
	}
	s.TotalDuration += m.Duration
	s.Last = m
	c.nodes[m.NodeID] = s
	c.totalTokens += m.TokensIn + m.TokensOut
}

// Flush returns a snapshot. It does not reset the collector.
func (c *InMemoryCollector) Flush() PipelineMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total time.Duration
	nodes := make(map[string]NodeStats, len(c.nodes))
	for k, v := range c.nodes {
		nodes[k] = v
		total += v.TotalDuration
	}

	return PipelineMetrics{
		PipelineID:    c.pipelineID,
		TotalTokens:   c.totalTokens,
		TotalDuration: total,
		Nodes:         nodes,
		StartTime:     c.startTime,
		EndTime:       time.Now(),
	}
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = make(map[string]NodeStats)
	c.totalTokens = 0
	c.startTime = time.Now()
}

type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Record(NodeMetrics) {}

func (c *NoOpCollector) Flush() PipelineMetrics {
	return PipelineMetrics{}
}

// Multi fans each record out to several collectors. Flush reports the first.
type Multi []MetricsCollector

func (m Multi) Record(metrics NodeMetrics) {
	for _, c := range m {
		c.Record(metrics)
	}
}

func (m Multi) Flush() PipelineMetrics {
	if len(m) == 0 {
		return PipelineMetrics{}
	}
	return m[0].Flush()
}
