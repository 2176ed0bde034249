package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/usecase/discovery"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockVectorEncoder
type MockVectorEncoder struct {
	mock.Mock
}

func (m *MockVectorEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorEncoder) Version() string {
	return "mock-v1"
}

// MockVectorStore
type MockVectorStore struct {
	mock.Mock
	Convention domain.ScoreConvention
}

func (m *MockVectorStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.VectorCandidate, error) {
	args := m.Called(ctx, collection, vector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VectorCandidate), args.Error(1)
}

func (m *MockVectorStore) ScoreConvention() domain.ScoreConvention {
	return m.Convention
}

// MockWebSearcher
type MockWebSearcher struct {
	mock.Mock
}

func (m *MockWebSearcher) Search(ctx context.Context, query string, maxResults int) ([]domain.WebResult, error) {
	args := m.Called(ctx, query, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WebResult), args.Error(1)
}

// MockCompletionClient
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.LLMResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *MockCompletionClient) Version() string {
	return "mock-llm"
}

type recordedStage struct {
	stage   string
	outcome string
}

type recordingMetrics struct {
	mu     sync.Mutex
	stages []recordedStage
	runs   []string
	counts []discovery.SourceCounts
}

func (r *recordingMetrics) ObserveStage(stage, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, recordedStage{stage: stage, outcome: outcome})
}

func (r *recordingMetrics) ObserveRun(outcome string, counts discovery.SourceCounts, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, outcome)
	r.counts = append(r.counts, counts)
}

type MockWordIndexWriter struct {
	mock.Mock
}

func (m *MockWordIndexWriter) UpsertWords(ctx context.Context, collection string, words []domain.WordVector) error {
	args := m.Called(ctx, collection, words)
	return args.Error(0)
}

// MockTransactionManager runs fn directly and counts calls.
type MockTransactionManager struct {
	mu    sync.Mutex
	calls int
}

func (m *MockTransactionManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return fn(ctx)
}
