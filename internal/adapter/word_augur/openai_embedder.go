package word_augur

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"word-orchestrator/internal/domain"
)

// OpenAIEmbedder encodes text with an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	logger     *slog.Logger
}

func NewOpenAIEmbedder(apiKey, baseURL, model string, dimensions int, httpClient *http.Client, logger *slog.Logger) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(openAIConfig(apiKey, baseURL, httpClient)),
		model:      model,
		dimensions: dimensions,
		logger:     logger,
	}
}

func (e *OpenAIEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding endpoint returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}

	e.logger.Debug("openai_embed_completed",
		slog.String("model", e.model),
		slog.Int("embedding_count", len(out)),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (e *OpenAIEmbedder) Version() string {
	return e.model
}

var _ domain.VectorEncoder = (*OpenAIEmbedder)(nil)
