package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/usecase/discovery"
)

const tracerName = "word-orchestrator/usecase"

// FindRelatedWordsInput defines the input parameters for FindRelatedWords.
type FindRelatedWordsInput struct {
	Query       string
	TargetCount int
}

// FindRelatedWordsOutput is the merged answer of one pipeline run.
type FindRelatedWordsOutput struct {
	RunID        string
	Query        string
	FinalWords   []string
	TargetCount  int
	SourceCounts discovery.SourceCounts
	// Error is set when the vector lookup failed. The run still completes
	// with whatever could be merged.
	Error string
}

// FindRelatedWordsUsecase runs the multi-source word discovery pipeline.
type FindRelatedWordsUsecase interface {
	Execute(ctx context.Context, input FindRelatedWordsInput) (*FindRelatedWordsOutput, error)
}

type stageRunner interface {
	Run(ctx context.Context, state discovery.PipelineState) discovery.PipelineState
}

type findRelatedWordsUsecase struct {
	retrieval  stageRunner
	web        stageRunner
	generative stageRunner
	metrics    PipelineMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// FindRelatedWordsOption configures optional collaborators.
type FindRelatedWordsOption func(*findRelatedWordsUsecase)

// WithPipelineMetrics reports stage and run outcomes to m.
func WithPipelineMetrics(m PipelineMetrics) FindRelatedWordsOption {
	return func(u *findRelatedWordsUsecase) {
		if m != nil {
			u.metrics = m
		}
	}
}

// NewFindRelatedWordsUsecase wires the three discovery stages. webCompleter
// extracts words from search snippets; generateCompleter invents the rest.
// They may be the same client.
func NewFindRelatedWordsUsecase(
	encoder domain.VectorEncoder,
	store domain.VectorStore,
	searcher domain.WebSearcher,
	webCompleter domain.CompletionClient,
	generateCompleter domain.CompletionClient,
	cfg DiscoveryConfig,
	logger *slog.Logger,
	opts ...FindRelatedWordsOption,
) FindRelatedWordsUsecase {
	prompts := cfg.promptBuilder()
	u := &findRelatedWordsUsecase{
		retrieval:  discovery.NewRetrievalStage(encoder, store, cfg.retrievalOptions(), logger),
		web:        discovery.NewWebAugmentedStage(searcher, webCompleter, prompts, cfg.webOptions(), logger),
		generative: discovery.NewGenerativeStage(generateCompleter, prompts, cfg.generativeOptions(), logger),
		metrics:    noopMetrics{},
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func validateFindInput(input FindRelatedWordsInput) (string, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return "", fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if input.TargetCount < 1 || input.TargetCount > discovery.MaxTargetCount {
		return "", fmt.Errorf("%w: target count must be between 1 and %d, got %d",
			domain.ErrInvalidInput, discovery.MaxTargetCount, input.TargetCount)
	}
	return query, nil
}

// Execute walks the stage graph until Merge. A cancelled caller context
// aborts the run and no result is produced.
func (u *findRelatedWordsUsecase) Execute(ctx context.Context, input FindRelatedWordsInput) (*FindRelatedWordsOutput, error) {
	query, err := validateFindInput(input)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()

	ctx, span := u.tracer.Start(ctx, "FindRelatedWords", trace.WithAttributes(
		attribute.String("word.run.id", runID),
		attribute.Int("word.target_count", input.TargetCount),
	))
	defer span.End()

	u.logger.Info("find_related_words_started",
		slog.String("run_id", runID),
		slog.String("query", query),
		slog.Int("target_count", input.TargetCount))

	state := discovery.NewPipelineState(runID, query, input.TargetCount)
	stage := discovery.Next(discovery.StageStart, state)
	for stage != discovery.StageMerge && stage != discovery.StageDone {
		if err := ctx.Err(); err != nil {
			return nil, u.abort(span, runID, stage, start, err)
		}
		state = u.runStage(ctx, stage, state)
		stage = discovery.Next(stage, state)
	}
	if err := ctx.Err(); err != nil {
		return nil, u.abort(span, runID, stage, start, err)
	}

	result := discovery.Merge(state)

	outcome := runOutcome(state, result)
	u.metrics.ObserveRun(outcome, result.SourceCounts, time.Since(start))
	span.SetAttributes(
		attribute.String("word.outcome", outcome),
		attribute.Int("word.final_count", len(result.FinalWords)),
	)
	if state.Failed() {
		span.SetStatus(codes.Error, state.Err)
	}

	u.logger.Info("find_related_words_completed",
		slog.String("run_id", runID),
		slog.String("outcome", outcome),
		slog.Int("final_count", len(result.FinalWords)),
		slog.Int("from_retrieval", result.SourceCounts.Retrieval),
		slog.Int("from_web", result.SourceCounts.Web),
		slog.Int("from_llm", result.SourceCounts.LLM),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return &FindRelatedWordsOutput{
		RunID:        runID,
		Query:        query,
		FinalWords:   result.FinalWords,
		TargetCount:  input.TargetCount,
		SourceCounts: result.SourceCounts,
		Error:        state.Err,
	}, nil
}

func (u *findRelatedWordsUsecase) abort(span trace.Span, runID string, stage discovery.Stage, start time.Time, cause error) error {
	u.metrics.ObserveRun(OutcomeCancelled, discovery.SourceCounts{}, time.Since(start))
	span.RecordError(cause)
	span.SetStatus(codes.Error, "cancelled")
	u.logger.Warn("find_related_words_cancelled",
		slog.String("run_id", runID),
		slog.String("stage", stage.String()),
		slog.String("error", cause.Error()))
	return fmt.Errorf("find related words cancelled before %s: %w", stage, cause)
}

func (u *findRelatedWordsUsecase) runnerFor(stage discovery.Stage) stageRunner {
	switch stage {
	case discovery.StageRetrieval:
		return u.retrieval
	case discovery.StageWebAugmented:
		return u.web
	case discovery.StageGenerative:
		return u.generative
	default:
		return nil
	}
}

func (u *findRelatedWordsUsecase) runStage(ctx context.Context, stage discovery.Stage, state discovery.PipelineState) discovery.PipelineState {
	runner := u.runnerFor(stage)
	if runner == nil {
		return state
	}

	stageCtx, span := u.tracer.Start(ctx, "discovery."+stage.String())
	defer span.End()
	start := time.Now()

	next := runner.Run(stageCtx, state)

	outcome, produced := stageOutcome(stage, next)
	span.SetAttributes(
		attribute.String("discovery.outcome", outcome),
		attribute.Int("discovery.words", produced),
	)
	if stage == discovery.StageRetrieval {
		span.SetAttributes(
			attribute.Int("discovery.missing_web", next.MissingWeb),
			attribute.Int("discovery.missing_llm", next.MissingLLM),
		)
		if next.Failed() {
			span.SetStatus(codes.Error, next.Err)
		}
	}
	u.metrics.ObserveStage(stage.String(), outcome, time.Since(start))
	return next
}

func stageOutcome(stage discovery.Stage, state discovery.PipelineState) (string, int) {
	switch stage {
	case discovery.StageRetrieval:
		if state.Failed() {
			return OutcomeFailed, 0
		}
		return OutcomeOK, len(state.Retrieved)
	case discovery.StageWebAugmented:
		return quotaOutcome(len(state.WebWords), state.MissingWeb), len(state.WebWords)
	case discovery.StageGenerative:
		return quotaOutcome(len(state.GeneratedWords), state.MissingLLM), len(state.GeneratedWords)
	default:
		return OutcomeOK, 0
	}
}

func quotaOutcome(produced, quota int) string {
	switch {
	case produced >= quota:
		return OutcomeOK
	case produced == 0:
		return OutcomeEmpty
	default:
		return OutcomePartial
	}
}

func runOutcome(state discovery.PipelineState, result discovery.MergeResult) string {
	if state.Failed() {
		return OutcomeFailed
	}
	return quotaOutcome(len(result.FinalWords), state.TargetCount)
}
