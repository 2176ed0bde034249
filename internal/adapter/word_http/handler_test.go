package word_http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"word-orchestrator/internal/adapter/word_http"
	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/usecase"
	"word-orchestrator/internal/usecase/discovery"
)

type stubFindUsecase struct {
	output *usecase.FindRelatedWordsOutput
	err    error
	got    usecase.FindRelatedWordsInput
}

func (s *stubFindUsecase) Execute(_ context.Context, input usecase.FindRelatedWordsInput) (*usecase.FindRelatedWordsOutput, error) {
	s.got = input
	return s.output, s.err
}

type stubSimilarUsecase struct {
	output *usecase.LookupSimilarWordsOutput
	err    error
	got    usecase.LookupSimilarWordsInput
}

func (s *stubSimilarUsecase) Execute(_ context.Context, input usecase.LookupSimilarWordsInput) (*usecase.LookupSimilarWordsOutput, error) {
	s.got = input
	return s.output, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newServer(t *testing.T, find *stubFindUsecase, similar *stubSimilarUsecase, validate bool) *echo.Echo {
	t.Helper()
	e := echo.New()
	if validate {
		doc, err := word_http.LoadOpenAPI(context.Background())
		require.NoError(t, err)
		mw, err := word_http.OpenAPIValidator(doc)
		require.NoError(t, err)
		e.Use(mw)
	}
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	word_http.NewHandler(find, similar, discardLogger()).Register(e)
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_FindRelatedWords(t *testing.T) {
	find := &stubFindUsecase{output: &usecase.FindRelatedWordsOutput{
		RunID:        "run-1",
		Query:        "행복",
		FinalWords:   []string{"만족", "평안", "즐거움", "기쁨", "환희"},
		TargetCount:  5,
		SourceCounts: discovery.SourceCounts{Retrieval: 3, Web: 1, LLM: 1},
	}}
	e := newServer(t, find, &stubSimilarUsecase{}, false)

	rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"query":"행복","target_word_count":5}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "run-1", rec.Header().Get("X-Run-Id"))
	assert.JSONEq(t, `{
		"query":"행복",
		"final_words":["만족","평안","즐거움","기쁨","환희"],
		"target_word_count":5,
		"source_counts":{"retrieval":3,"web":1,"llm":1}
	}`, rec.Body.String())
	assert.Equal(t, usecase.FindRelatedWordsInput{Query: "행복", TargetCount: 5}, find.got)
}

func TestHandler_FindRelatedWords_DefaultsTargetCount(t *testing.T) {
	find := &stubFindUsecase{output: &usecase.FindRelatedWordsOutput{Query: "행복", FinalWords: []string{}, TargetCount: 5}}
	e := newServer(t, find, &stubSimilarUsecase{}, false)

	rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"query":"행복"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, discovery.DefaultTargetCount, find.got.TargetCount)
}

func TestHandler_FindRelatedWords_RetrievalFailureStillOK(t *testing.T) {
	find := &stubFindUsecase{output: &usecase.FindRelatedWordsOutput{
		Query:       "행복",
		FinalWords:  []string{},
		TargetCount: 5,
		Error:       "retrieval failed: connection refused",
	}}
	e := newServer(t, find, &stubSimilarUsecase{}, false)

	rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"query":"행복"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "retrieval failed: connection refused", body["error"])
	assert.Empty(t, body["final_words"])
}

func TestHandler_FindRelatedWords_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: query is empty", domain.ErrInvalidInput), http.StatusBadRequest},
		{"cancelled", fmt.Errorf("find related words cancelled before retrieval: %w", context.Canceled), http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(t, &stubFindUsecase{err: tt.err}, &stubSimilarUsecase{}, false)
			rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"query":" "}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestHandler_SimilarWords(t *testing.T) {
	similar := &stubSimilarUsecase{output: &usecase.LookupSimilarWordsOutput{
		Word: "행복",
		Results: []usecase.SimilarWord{
			{Form: "기쁨", Score: 0.93},
			{Form: "만족", Score: 0.81},
		},
	}}
	e := newServer(t, &stubFindUsecase{}, similar, false)

	rec := doRequest(e, http.MethodGet, "/v1/words/"+url.PathEscape("행복")+"/similar?limit=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"form":"기쁨","score":0.93},{"form":"만족","score":0.81}]`, rec.Body.String())
	assert.Equal(t, usecase.LookupSimilarWordsInput{Word: "행복", Limit: 2}, similar.got)
}

func TestHandler_SimilarWords_BadLimit(t *testing.T) {
	e := newServer(t, &stubFindUsecase{}, &stubSimilarUsecase{}, false)

	rec := doRequest(e, http.MethodGet, "/v1/words/x/similar?limit=abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenAPIValidator(t *testing.T) {
	find := &stubFindUsecase{output: &usecase.FindRelatedWordsOutput{Query: "행복", FinalWords: []string{}, TargetCount: 3}}
	similar := &stubSimilarUsecase{output: &usecase.LookupSimilarWordsOutput{Word: "x"}}
	e := newServer(t, find, similar, true)

	t.Run("valid body passes", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"query":"행복","target_word_count":3}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, find.got.TargetCount)
	})

	t.Run("target count above bound", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"query":"행복","target_word_count":21}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing query", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/v1/words/find-related", `{"target_word_count":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("limit above bound", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/v1/words/x/similar?limit=51", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("undocumented path passes through", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
