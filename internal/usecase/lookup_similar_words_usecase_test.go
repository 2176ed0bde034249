package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/usecase"
)

func TestLookupSimilarWords_NormalizesAndSkipsSelf(t *testing.T) {
	encoder := new(MockVectorEncoder)
	store := &MockVectorStore{Convention: domain.ScoreShifted}
	encoder.On("Encode", mock.Anything, []string{"행복"}).Return([][]float32{testVec}, nil)
	store.On("Search", mock.Anything, "words", testVec, 3).Return([]domain.VectorCandidate{
		{Form: "행복", Score: 2.0},
		{Form: "기쁨", Score: 1.9},
		{Form: "슬픔", Score: 1.2},
	}, nil)

	uc := usecase.NewLookupSimilarWordsUsecase(encoder, store, usecase.DefaultDiscoveryConfig(), discardLogger())
	out, err := uc.Execute(context.Background(), usecase.LookupSimilarWordsInput{Word: "행복", Limit: 2})

	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "기쁨", out.Results[0].Form)
	assert.InDelta(t, 0.9, out.Results[0].Score, 1e-9)
	assert.Equal(t, "슬픔", out.Results[1].Form)
	assert.InDelta(t, 0.2, out.Results[1].Score, 1e-9)
}

func TestLookupSimilarWords_DefaultLimit(t *testing.T) {
	encoder := new(MockVectorEncoder)
	store := &MockVectorStore{Convention: domain.ScoreCosine}
	encoder.On("Encode", mock.Anything, []string{"joy"}).Return([][]float32{testVec}, nil)
	store.On("Search", mock.Anything, "words", testVec, usecase.DefaultSimilarLimit+1).Return([]domain.VectorCandidate{}, nil)

	uc := usecase.NewLookupSimilarWordsUsecase(encoder, store, usecase.DefaultDiscoveryConfig(), discardLogger())
	out, err := uc.Execute(context.Background(), usecase.LookupSimilarWordsInput{Word: "joy"})

	require.NoError(t, err)
	assert.Empty(t, out.Results)
	store.AssertExpectations(t)
}

func TestLookupSimilarWords_Validation(t *testing.T) {
	uc := usecase.NewLookupSimilarWordsUsecase(new(MockVectorEncoder), &MockVectorStore{}, usecase.DefaultDiscoveryConfig(), discardLogger())

	_, err := uc.Execute(context.Background(), usecase.LookupSimilarWordsInput{Word: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), usecase.LookupSimilarWordsInput{Word: "joy", Limit: 51})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLookupSimilarWords_StoreError(t *testing.T) {
	encoder := new(MockVectorEncoder)
	store := &MockVectorStore{}
	encoder.On("Encode", mock.Anything, []string{"joy"}).Return([][]float32{testVec}, nil)
	store.On("Search", mock.Anything, "words", testVec, 6).Return(nil, errors.New("down"))

	uc := usecase.NewLookupSimilarWordsUsecase(encoder, store, usecase.DefaultDiscoveryConfig(), discardLogger())
	_, err := uc.Execute(context.Background(), usecase.LookupSimilarWordsInput{Word: "joy", Limit: 5})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}
