package monitor

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports stage executions as Prometheus series.
type PrometheusCollector struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
	passages *prometheus.HistogramVec
	degraded *prometheus.CounterVec
}

// NewPrometheusCollector registers its series on reg.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragdemo_node_runs_total",
			Help: "Pipeline stage executions by node and outcome.",
		}, []string{"node", "success"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ragdemo_node_duration_seconds",
			Help:    "Pipeline stage latency.",
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"node"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragdemo_llm_tokens_total",
			Help: "Tokens reported by the chat provider.",
		}, []string{"node", "direction"}),
		passages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ragdemo_retrieved_passages",
			Help:    "Passages carried forward by a stage.",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
		}, []string{"node"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragdemo_degraded_completions_total",
			Help: "Completions whose provider payload could not be parsed.",
		}, []string{"node"}),
	}
	for _, col := range []prometheus.Collector{c.runs, c.duration, c.tokens, c.passages, c.degraded} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *PrometheusCollector) Record(m NodeMetrics) {
	c.runs.WithLabelValues(m.NodeID, strconv.FormatBool(m.Success)).Inc()
	c.duration.WithLabelValues(m.NodeID).Observe(m.Duration.Seconds())
	if !m.Success {
		return
	}
	c.passages.WithLabelValues(m.NodeID).Observe(float64(m.Passages))
	if m.TokensIn > 0 || m.TokensOut > 0 {
		c.tokens.WithLabelValues(m.NodeID, "in").Add(float64(m.TokensIn))
		c.tokens.WithLabelValues(m.NodeID, "out").Add(float64(m.TokensOut))
	}
	if m.Degraded {
		c.degraded.WithLabelValues(m.NodeID).Inc()
	}
}

// Flush is a no-op; series are read by the scraper.
func (c *PrometheusCollector) Flush() PipelineMetrics {
	return PipelineMetrics{}
}
