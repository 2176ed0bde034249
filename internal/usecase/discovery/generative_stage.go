package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"word-orchestrator/internal/domain"
)

// GenerativeStage asks a language model directly for the remaining words.
type GenerativeStage struct {
	completer domain.CompletionClient
	prompts   *PromptBuilder
	opts      GenerativeOptions
	logger    *slog.Logger
}

func NewGenerativeStage(completer domain.CompletionClient, prompts *PromptBuilder, opts GenerativeOptions, logger *slog.Logger) *GenerativeStage {
	return &GenerativeStage{
		completer: completer,
		prompts:   prompts,
		opts:      opts,
		logger:    logger,
	}
}

// Run fills GeneratedWords with at most MissingLLM words that do not repeat
// the query or anything found earlier. Failures yield no words.
func (s *GenerativeStage) Run(ctx context.Context, state PipelineState) PipelineState {
	state.GeneratedWords = []string{}
	if state.MissingLLM <= 0 {
		return state
	}

	start := time.Now()
	words, err := s.generate(ctx, state)
	if err != nil {
		s.logger.Warn("generative_stage_failed",
			slog.String("run_id", state.RunID),
			slog.String("query", state.Query),
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return state
	}

	state.GeneratedWords = words
	s.logger.Info("generative_stage_completed",
		slog.String("run_id", state.RunID),
		slog.Int("requested", state.MissingLLM),
		slog.Int("generated", len(words)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return state
}

func (s *GenerativeStage) generate(ctx context.Context, state PipelineState) ([]string, error) {
	known := make([]string, 0, len(state.Retrieved)+len(state.WebWords))
	known = append(known, state.Retrieved...)
	known = append(known, state.WebWords...)

	req := s.prompts.Generation(state.Query, known, state.MissingLLM)
	req.Temperature = s.opts.Temperature
	req.MaxTokens = s.opts.MaxTokens

	completeCtx, cancel := withTimeout(ctx, s.opts.CompletionTimeout)
	defer cancel()
	resp, err := s.completer.Complete(completeCtx, req)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	if resp == nil {
		return []string{}, nil
	}
	return ParseWordList(resp.Text, state.Query, known, state.MissingLLM), nil
}
