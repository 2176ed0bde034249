package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"word-orchestrator/internal/domain"
)

const DefaultIndexBatchSize = 64

// IndexVocabularyInput lists the words to embed into a collection.
type IndexVocabularyInput struct {
	Collection string
	Words      []string
	// BatchSize defaults to DefaultIndexBatchSize when zero.
	BatchSize int
}

// IndexVocabularyOutput summarizes an indexing run.
type IndexVocabularyOutput struct {
	Indexed int
	Skipped int
	Batches int
}

type IndexVocabularyUsecase interface {
	// Execute embeds and upserts words. It is idempotent: re-indexing a word
	// replaces its embedding.
	Execute(ctx context.Context, input IndexVocabularyInput) (*IndexVocabularyOutput, error)
}

type indexVocabularyUsecase struct {
	writer    domain.WordIndexWriter
	txManager domain.TransactionManager
	encoder   domain.VectorEncoder
	logger    *slog.Logger
}

func NewIndexVocabularyUsecase(
	writer domain.WordIndexWriter,
	txManager domain.TransactionManager,
	encoder domain.VectorEncoder,
	logger *slog.Logger,
) IndexVocabularyUsecase {
	return &indexVocabularyUsecase{
		writer:    writer,
		txManager: txManager,
		encoder:   encoder,
		logger:    logger,
	}
}

func (u *indexVocabularyUsecase) Execute(ctx context.Context, input IndexVocabularyInput) (*IndexVocabularyOutput, error) {
	collection := strings.TrimSpace(input.Collection)
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is empty", domain.ErrInvalidInput)
	}
	batchSize := input.BatchSize
	if batchSize == 0 {
		batchSize = DefaultIndexBatchSize
	}
	if batchSize < 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidInput, batchSize)
	}

	// 1. Normalize: trim, drop blanks and case-insensitive duplicates
	words := make([]string, 0, len(input.Words))
	seen := make(map[string]struct{}, len(input.Words))
	for _, raw := range input.Words {
		w := strings.TrimSpace(raw)
		key := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, w)
	}
	out := &IndexVocabularyOutput{Skipped: len(input.Words) - len(words)}
	start := time.Now()

	// 2. Embed and upsert batch by batch, one transaction each
	for offset := 0; offset < len(words); offset += batchSize {
		end := min(offset+batchSize, len(words))
		batch := words[offset:end]

		embeddings, err := u.encoder.Encode(ctx, batch)
		if err != nil {
			return out, fmt.Errorf("failed to encode batch at %d: %w", offset, err)
		}
		if len(embeddings) != len(batch) {
			return out, fmt.Errorf("embeddings count mismatch: got %d, want %d", len(embeddings), len(batch))
		}

		rows := make([]domain.WordVector, len(batch))
		for i, w := range batch {
			rows[i] = domain.WordVector{Form: w, Embedding: embeddings[i]}
		}

		err = u.txManager.RunInTx(ctx, func(ctx context.Context) error {
			return u.writer.UpsertWords(ctx, collection, rows)
		})
		if err != nil {
			return out, fmt.Errorf("failed to store batch at %d: %w", offset, err)
		}
		out.Indexed += len(batch)
		out.Batches++

		u.logger.Debug("vocabulary_batch_indexed",
			slog.String("collection", collection),
			slog.Int("batch", out.Batches),
			slog.Int("size", len(batch)))
	}

	u.logger.Info("vocabulary_indexed",
		slog.String("collection", collection),
		slog.Int("indexed", out.Indexed),
		slog.Int("skipped", out.Skipped),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return out, nil
}
