// Package metrics provides Prometheus metrics for word-orchestrator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"word-orchestrator/internal/usecase"
	"word-orchestrator/internal/usecase/discovery"
)

const namespace = "word_orchestrator"

// PipelineMetrics records discovery stage and run outcomes.
type PipelineMetrics struct {
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	RunTotal      *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	WordsTotal    *prometheus.CounterVec
}

// NewRegistry returns a registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewPipelineMetrics registers the pipeline collectors on reg.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		StageTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_total",
				Help:      "Total number of discovery stage executions",
			},
			[]string{"stage", "outcome"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of discovery stages in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"stage"},
		),
		RunTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "run_total",
				Help:      "Total number of find-related-words runs",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "End-to-end duration of find-related-words runs in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		WordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "words_total",
				Help:      "Total number of merged words by source",
			},
			[]string{"source"},
		),
	}
}

func (m *PipelineMetrics) ObserveStage(stage, outcome string, elapsed time.Duration) {
	m.StageTotal.WithLabelValues(stage, outcome).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func (m *PipelineMetrics) ObserveRun(outcome string, counts discovery.SourceCounts, elapsed time.Duration) {
	m.RunTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.WordsTotal.WithLabelValues("retrieval").Add(float64(counts.Retrieval))
	m.WordsTotal.WithLabelValues("web").Add(float64(counts.Web))
	m.WordsTotal.WithLabelValues("llm").Add(float64(counts.LLM))
}

var _ usecase.PipelineMetrics = (*PipelineMetrics)(nil)
