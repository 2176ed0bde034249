package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"word-orchestrator/internal/domain"
)

const defaultMinWebResults = 5

// WebAugmentedStage searches the web and lets a language model pick related
// words from the result snippets.
type WebAugmentedStage struct {
	searcher  domain.WebSearcher
	completer domain.CompletionClient
	prompts   *PromptBuilder
	opts      WebOptions
	logger    *slog.Logger
}

func NewWebAugmentedStage(searcher domain.WebSearcher, completer domain.CompletionClient, prompts *PromptBuilder, opts WebOptions, logger *slog.Logger) *WebAugmentedStage {
	if opts.MinResults <= 0 {
		opts.MinResults = defaultMinWebResults
	}
	return &WebAugmentedStage{
		searcher:  searcher,
		completer: completer,
		prompts:   prompts,
		opts:      opts,
		logger:    logger,
	}
}

// Run fills WebWords with at most MissingWeb words. Failures are logged and
// yield no words; the error field and the generative quota are untouched.
func (s *WebAugmentedStage) Run(ctx context.Context, state PipelineState) PipelineState {
	state.WebWords = []string{}
	if state.MissingWeb <= 0 {
		return state
	}

	start := time.Now()
	words, err := s.discover(ctx, state)
	if err != nil {
		s.logger.Warn("web_stage_failed",
			slog.String("run_id", state.RunID),
			slog.String("query", state.Query),
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return state
	}

	state.WebWords = words
	s.logger.Info("web_stage_completed",
		slog.String("run_id", state.RunID),
		slog.Int("requested", state.MissingWeb),
		slog.Int("found", len(words)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return state
}

func (s *WebAugmentedStage) discover(ctx context.Context, state PipelineState) ([]string, error) {
	maxResults := max(s.opts.MinResults, state.MissingWeb*2)

	searchCtx, cancel := withTimeout(ctx, s.opts.SearchTimeout)
	results, err := s.searcher.Search(searchCtx, s.prompts.WebSearchQuery(state.Query, state.MissingWeb*2), maxResults)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	snippets := NormalizeSnippets(results, maxResults)
	if len(snippets) == 0 {
		s.logger.Info("web_stage_no_snippets",
			slog.String("run_id", state.RunID),
			slog.Int("results", len(results)))
		return []string{}, nil
	}

	req := s.prompts.WebExtraction(state.Query, snippets, state.MissingWeb)
	req.Temperature = s.opts.Temperature
	req.MaxTokens = s.opts.MaxTokens

	completeCtx, cancel := withTimeout(ctx, s.opts.CompletionTimeout)
	defer cancel()
	resp, err := s.completer.Complete(completeCtx, req)
	if err != nil {
		return nil, fmt.Errorf("web extraction: %w", err)
	}
	if resp == nil {
		return []string{}, nil
	}
	return ParseWordList(resp.Text, state.Query, nil, state.MissingWeb), nil
}
