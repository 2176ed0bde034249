package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"word-orchestrator/internal/domain"
)

const (
	DefaultSimilarLimit = 10
	MaxSimilarLimit     = 50
)

// LookupSimilarWordsInput defines the input for a raw nearest-neighbour lookup.
type LookupSimilarWordsInput struct {
	Word string
	// Limit defaults to DefaultSimilarLimit when zero.
	Limit int
}

// SimilarWord is a neighbour with its cosine similarity to the looked-up word.
type SimilarWord struct {
	Form  string
	Score float64
}

// LookupSimilarWordsOutput lists neighbours in store order.
type LookupSimilarWordsOutput struct {
	Word    string
	Results []SimilarWord
}

// LookupSimilarWordsUsecase returns the nearest indexed words without the
// threshold or augmentation applied by FindRelatedWords.
type LookupSimilarWordsUsecase interface {
	Execute(ctx context.Context, input LookupSimilarWordsInput) (*LookupSimilarWordsOutput, error)
}

type lookupSimilarWordsUsecase struct {
	encoder domain.VectorEncoder
	store   domain.VectorStore
	cfg     DiscoveryConfig
	logger  *slog.Logger
}

func NewLookupSimilarWordsUsecase(encoder domain.VectorEncoder, store domain.VectorStore, cfg DiscoveryConfig, logger *slog.Logger) LookupSimilarWordsUsecase {
	return &lookupSimilarWordsUsecase{
		encoder: encoder,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

func (u *lookupSimilarWordsUsecase) Execute(ctx context.Context, input LookupSimilarWordsInput) (*LookupSimilarWordsOutput, error) {
	word := strings.TrimSpace(input.Word)
	if word == "" {
		return nil, fmt.Errorf("%w: word is empty", domain.ErrInvalidInput)
	}
	limit := input.Limit
	if limit == 0 {
		limit = DefaultSimilarLimit
	}
	if limit < 1 || limit > MaxSimilarLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d, got %d", domain.ErrInvalidInput, MaxSimilarLimit, limit)
	}

	start := time.Now()

	embedCtx, cancel := context.WithTimeout(ctx, u.cfg.EmbedTimeout)
	vectors, err := u.encoder.Encode(embedCtx, []string{word})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to embed word: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("failed to embed word: empty vector")
	}

	// One extra neighbour covers the word itself, which is filtered below.
	searchCtx, cancel := context.WithTimeout(ctx, u.cfg.VectorSearchTimeout)
	defer cancel()
	candidates, err := u.store.Search(searchCtx, u.cfg.Collection, vectors[0], limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar words: %w", err)
	}

	convention := u.store.ScoreConvention()
	key := strings.ToLower(word)
	results := make([]SimilarWord, 0, limit)
	for _, c := range candidates {
		if strings.ToLower(strings.TrimSpace(c.Form)) == key {
			continue
		}
		results = append(results, SimilarWord{
			Form:  c.Form,
			Score: domain.NormalizeScore(c.Score, convention),
		})
		if len(results) == limit {
			break
		}
	}

	u.logger.Info("similar_words_lookup_completed",
		slog.String("word", word),
		slog.Int("limit", limit),
		slog.Int("results", len(results)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	return &LookupSimilarWordsOutput{Word: word, Results: results}, nil
}
