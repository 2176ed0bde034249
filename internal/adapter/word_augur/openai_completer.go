package word_augur

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"word-orchestrator/internal/domain"
)

// OpenAICompleter talks to any OpenAI-compatible chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAICompleter builds a completer. baseURL may be empty to use the
// public OpenAI endpoint.
func NewOpenAICompleter(apiKey, baseURL, model string, httpClient *http.Client, logger *slog.Logger) *OpenAICompleter {
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(openAIConfig(apiKey, baseURL, httpClient)),
		model:  model,
		logger: logger,
	}
}

func openAIConfig(apiKey, baseURL string, httpClient *http.Client) openai.ClientConfig {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return cfg
}

// requestTemperature maps 0 to the smallest positive float: the request field
// is omitempty, so a literal 0 would silently fall back to the server default.
func requestTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func (c *OpenAICompleter) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: requestTemperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	c.logger.Debug("openai_chat_completed",
		slog.String("model", c.model),
		slog.String("finish_reason", string(choice.FinishReason)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)))

	return &domain.LLMResponse{
		Text: strings.TrimSpace(choice.Message.Content),
		Done: choice.FinishReason == openai.FinishReasonStop,
	}, nil
}

func (c *OpenAICompleter) Version() string {
	return c.model
}

var _ domain.CompletionClient = (*OpenAICompleter)(nil)
