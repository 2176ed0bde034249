package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"word-orchestrator/internal/domain"
)

var errNoVector = errors.New("embedder returned no vector")

// RetrievalStage looks the query up in the vector store and computes the
// quotas for the downstream stages.
type RetrievalStage struct {
	encoder domain.VectorEncoder
	store   domain.VectorStore
	opts    RetrievalOptions
	logger  *slog.Logger
}

func NewRetrievalStage(encoder domain.VectorEncoder, store domain.VectorStore, opts RetrievalOptions, logger *slog.Logger) *RetrievalStage {
	return &RetrievalStage{
		encoder: encoder,
		store:   store,
		opts:    opts,
		logger:  logger,
	}
}

// Run fills Retrieved, MissingWeb and MissingLLM. When the embedder or the
// store fails it sets Err and leaves both quotas at zero.
func (s *RetrievalStage) Run(ctx context.Context, state PipelineState) PipelineState {
	start := time.Now()

	candidates, err := s.lookup(ctx, state.Query, state.TargetCount)
	if err != nil {
		s.logger.Error("retrieval_stage_failed",
			slog.String("run_id", state.RunID),
			slog.String("query", state.Query),
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		state.Err = fmt.Sprintf("retrieval failed: %v", err)
		state.Retrieved = []string{}
		state.MissingWeb, state.MissingLLM = 0, 0
		return state
	}

	convention := s.store.ScoreConvention()
	c := newWordCollector(state.Query, state.TargetCount)
	below := 0
	for _, cand := range candidates {
		if domain.NormalizeScore(cand.Score, convention) <= s.opts.SimilarityThreshold {
			below++
			continue
		}
		c.add(cand.Form)
		if c.full() {
			break
		}
	}

	state.Retrieved = c.words
	state.MissingWeb, state.MissingLLM = SplitQuota(Shortfall(state.TargetCount, len(c.words)))

	s.logger.Info("retrieval_stage_completed",
		slog.String("run_id", state.RunID),
		slog.Int("candidates", len(candidates)),
		slog.Int("below_threshold", below),
		slog.Int("retrieved", len(state.Retrieved)),
		slog.Int("missing_web", state.MissingWeb),
		slog.Int("missing_llm", state.MissingLLM),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return state
}

func (s *RetrievalStage) lookup(ctx context.Context, query string, targetCount int) ([]domain.VectorCandidate, error) {
	embedCtx, cancel := withTimeout(ctx, s.opts.EmbedTimeout)
	vectors, err := s.encoder.Encode(embedCtx, []string{query})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errNoVector
	}

	searchCtx, cancel := withTimeout(ctx, s.opts.SearchTimeout)
	defer cancel()
	candidates, err := s.store.Search(searchCtx, s.opts.Collection, vectors[0], s.opts.limit(targetCount))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return candidates, nil
}
