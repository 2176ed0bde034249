package usecase

import (
	"time"

	"word-orchestrator/internal/usecase/discovery"
)

// PipelineMetrics receives per-stage and per-run observations.
type PipelineMetrics interface {
	ObserveStage(stage, outcome string, elapsed time.Duration)
	ObserveRun(outcome string, counts discovery.SourceCounts, elapsed time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, string, time.Duration) {}

func (noopMetrics) ObserveRun(string, discovery.SourceCounts, time.Duration) {}

// Stage and run outcomes reported to PipelineMetrics.
const (
	OutcomeOK        = "ok"
	OutcomePartial   = "partial"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)
