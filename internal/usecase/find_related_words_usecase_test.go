package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/usecase"
	"word-orchestrator/internal/usecase/discovery"
)

var testVec = []float32{0.3, 0.1, 0.7}

type pipelineMocks struct {
	encoder    *MockVectorEncoder
	store      *MockVectorStore
	searcher   *MockWebSearcher
	webLLM     *MockCompletionClient
	genLLM     *MockCompletionClient
	metrics    *recordingMetrics
	controller usecase.FindRelatedWordsUsecase
}

func newPipeline() *pipelineMocks {
	m := &pipelineMocks{
		encoder:  new(MockVectorEncoder),
		store:    &MockVectorStore{Convention: domain.ScoreShifted},
		searcher: new(MockWebSearcher),
		webLLM:   new(MockCompletionClient),
		genLLM:   new(MockCompletionClient),
		metrics:  &recordingMetrics{},
	}
	m.controller = usecase.NewFindRelatedWordsUsecase(
		m.encoder, m.store, m.searcher, m.webLLM, m.genLLM,
		usecase.DefaultDiscoveryConfig(), discardLogger(),
		usecase.WithPipelineMetrics(m.metrics),
	)
	return m
}

func TestFindRelatedWords_EndToEnd(t *testing.T) {
	p := newPipeline()
	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 10).Return([]domain.VectorCandidate{
		{Form: "만족", Score: 1.93},
		{Form: "평안", Score: 1.91},
		{Form: "즐거움", Score: 1.86},
		{Form: "불행", Score: 1.62},
	}, nil)
	p.searcher.On("Search", mock.Anything, mock.Anything, 5).Return([]domain.WebResult{
		{Title: "행복 유의어", Snippet: "행복과 비슷한 말로 기쁨이 있다"},
	}, nil)
	p.webLLM.On("Complete", mock.Anything, mock.Anything).Return(&domain.LLMResponse{Text: "기쁨", Done: true}, nil)
	p.genLLM.On("Complete", mock.Anything, mock.MatchedBy(func(req domain.CompletionRequest) bool {
		return strings.Contains(req.UserPrompt, "만족, 평안, 즐거움, 기쁨")
	})).Return(&domain.LLMResponse{Text: "환희", Done: true}, nil)

	out, err := p.controller.Execute(context.Background(), usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 5})

	require.NoError(t, err)
	assert.Equal(t, "행복", out.Query)
	assert.Equal(t, 5, out.TargetCount)
	assert.Equal(t, []string{"만족", "평안", "즐거움", "기쁨", "환희"}, out.FinalWords)
	assert.Equal(t, discovery.SourceCounts{Retrieval: 3, Web: 1, LLM: 1}, out.SourceCounts)
	assert.Empty(t, out.Error)
	assert.NotEmpty(t, out.RunID)

	p.searcher.AssertNumberOfCalls(t, "Search", 1)
	p.webLLM.AssertNumberOfCalls(t, "Complete", 1)
	p.genLLM.AssertNumberOfCalls(t, "Complete", 1)
	assert.Equal(t, []string{usecase.OutcomeOK}, p.metrics.runs)
	assert.Equal(t, []recordedStage{
		{stage: "retrieval", outcome: usecase.OutcomeOK},
		{stage: "web_augmented", outcome: usecase.OutcomeOK},
		{stage: "generative", outcome: usecase.OutcomeOK},
	}, p.metrics.stages)
}

func TestFindRelatedWords_RetrievalSatisfiesTarget(t *testing.T) {
	p := newPipeline()
	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 10).Return([]domain.VectorCandidate{
		{Form: "만족", Score: 1.93},
		{Form: "기쁨", Score: 1.91},
	}, nil)

	out, err := p.controller.Execute(context.Background(), usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"만족", "기쁨"}, out.FinalWords)
	p.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	p.webLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	p.genLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFindRelatedWords_ShortfallOfOneSkipsWeb(t *testing.T) {
	p := newPipeline()
	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 10).Return([]domain.VectorCandidate{
		{Form: "만족", Score: 1.93},
	}, nil)
	p.genLLM.On("Complete", mock.Anything, mock.Anything).Return(&domain.LLMResponse{Text: "기쁨, 환희"}, nil)

	out, err := p.controller.Execute(context.Background(), usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"만족", "기쁨"}, out.FinalWords)
	assert.Equal(t, discovery.SourceCounts{Retrieval: 1, Web: 0, LLM: 1}, out.SourceCounts)
	p.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindRelatedWords_VectorStoreFailureShortCircuits(t *testing.T) {
	p := newPipeline()
	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 10).Return(nil, errors.New("opensearch unreachable"))

	out, err := p.controller.Execute(context.Background(), usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 5})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Error)
	assert.Equal(t, []string{}, out.FinalWords)
	assert.Equal(t, discovery.SourceCounts{}, out.SourceCounts)
	p.searcher.AssertNumberOfCalls(t, "Search", 0)
	p.webLLM.AssertNumberOfCalls(t, "Complete", 0)
	p.genLLM.AssertNumberOfCalls(t, "Complete", 0)
	assert.Equal(t, []string{usecase.OutcomeFailed}, p.metrics.runs)
}

func TestFindRelatedWords_WebFailureDegrades(t *testing.T) {
	p := newPipeline()
	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 10).Return([]domain.VectorCandidate{
		{Form: "만족", Score: 1.93},
		{Form: "기쁨", Score: 1.91},
	}, nil)
	p.searcher.On("Search", mock.Anything, mock.Anything, 5).Return(nil, context.DeadlineExceeded)
	p.genLLM.On("Complete", mock.Anything, mock.Anything).Return(&domain.LLMResponse{Text: "환희, 희열, 평안"}, nil)

	out, err := p.controller.Execute(context.Background(), usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 5})

	require.NoError(t, err)
	assert.Empty(t, out.Error)
	assert.Equal(t, []string{"만족", "기쁨", "환희", "희열"}, out.FinalWords)
	assert.Equal(t, discovery.SourceCounts{Retrieval: 2, Web: 0, LLM: 2}, out.SourceCounts)
	p.webLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	assert.Equal(t, []string{usecase.OutcomePartial}, p.metrics.runs)
}

func TestFindRelatedWords_AllAugmentationFails(t *testing.T) {
	p := newPipeline()
	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 12).Return([]domain.VectorCandidate{}, nil)
	p.searcher.On("Search", mock.Anything, mock.Anything, 6).Return([]domain.WebResult{{Snippet: "x"}}, nil)
	p.webLLM.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	p.genLLM.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	out, err := p.controller.Execute(context.Background(), usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 6})

	require.NoError(t, err)
	assert.Empty(t, out.Error)
	assert.Equal(t, []string{}, out.FinalWords)
}

func TestFindRelatedWords_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.FindRelatedWordsInput
	}{
		{"blank query", usecase.FindRelatedWordsInput{Query: "  ", TargetCount: 5}},
		{"zero target", usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 0}},
		{"target too large", usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline()

			out, err := p.controller.Execute(context.Background(), tt.input)

			assert.Nil(t, out)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			p.encoder.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
		})
	}
}

func TestFindRelatedWords_CancelledBeforeStart(t *testing.T) {
	p := newPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := p.controller.Execute(ctx, usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 5})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
	p.encoder.AssertNotCalled(t, "Encode", mock.Anything, mock.Anything)
	assert.Equal(t, []string{usecase.OutcomeCancelled}, p.metrics.runs)
}

func TestFindRelatedWords_CancelledMidRunSkipsMerge(t *testing.T) {
	p := newPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	p.store.On("Search", mock.Anything, "words", testVec, 10).
		Run(func(mock.Arguments) { cancel() }).
		Return([]domain.VectorCandidate{{Form: "만족", Score: 1.93}}, nil)

	out, err := p.controller.Execute(ctx, usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 5})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
	p.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	p.genLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}
