package discovery_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"word-orchestrator/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type mockEncoder struct {
	mock.Mock
}

func (m *mockEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *mockEncoder) Version() string { return "mock-v1" }

type mockStore struct {
	mock.Mock
	convention domain.ScoreConvention
}

func (m *mockStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.VectorCandidate, error) {
	args := m.Called(ctx, collection, vector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorCandidate), args.Error(1)
}

func (m *mockStore) ScoreConvention() domain.ScoreConvention { return m.convention }

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, maxResults int) ([]domain.WebResult, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WebResult), args.Error(1)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.LLMResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *mockCompleter) Version() string { return "mock-llm" }
