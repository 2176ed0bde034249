package word_http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/infra/logger"
	"word-orchestrator/internal/usecase"
	"word-orchestrator/internal/usecase/discovery"
)

const runIDHeader = "X-Run-Id"

type Handler struct {
	findUsecase    usecase.FindRelatedWordsUsecase
	similarUsecase usecase.LookupSimilarWordsUsecase
	logger         *slog.Logger
}

func NewHandler(
	findUsecase usecase.FindRelatedWordsUsecase,
	similarUsecase usecase.LookupSimilarWordsUsecase,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		findUsecase:    findUsecase,
		similarUsecase: similarUsecase,
		logger:         logger,
	}
}

// Register mounts the word routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/words/find-related", h.FindRelatedWords)
	e.GET("/v1/words/:word/similar", h.SimilarWords)
}

type findRelatedRequest struct {
	Query           string `json:"query"`
	TargetWordCount *int   `json:"target_word_count"`
}

type findRelatedResponse struct {
	Query           string                 `json:"query"`
	FinalWords      []string               `json:"final_words"`
	TargetWordCount int                    `json:"target_word_count"`
	SourceCounts    discovery.SourceCounts `json:"source_counts"`
	Error           string                 `json:"error,omitempty"`
}

type similarWordResponse struct {
	Form  string  `json:"form"`
	Score float64 `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Find related words for a query
// (POST /v1/words/find-related)
func (h *Handler) FindRelatedWords(ctx echo.Context) error {
	var req findRelatedRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	// The request logger reads the query back from the request context.
	ctx.SetRequest(ctx.Request().WithContext(logger.WithQuery(ctx.Request().Context(), req.Query)))

	target := discovery.DefaultTargetCount
	if req.TargetWordCount != nil {
		target = *req.TargetWordCount
	}

	output, err := h.findUsecase.Execute(ctx.Request().Context(), usecase.FindRelatedWordsInput{
		Query:       req.Query,
		TargetCount: target,
	})
	if err != nil {
		return h.errorJSON(ctx, err)
	}

	ctx.Response().Header().Set(runIDHeader, output.RunID)
	return ctx.JSON(http.StatusOK, findRelatedResponse{
		Query:           output.Query,
		FinalWords:      output.FinalWords,
		TargetWordCount: output.TargetCount,
		SourceCounts:    output.SourceCounts,
		Error:           output.Error,
	})
}

// Nearest indexed words
// (GET /v1/words/{word}/similar)
func (h *Handler) SimilarWords(ctx echo.Context) error {
	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be an integer"})
		}
		limit = parsed
	}

	word := ctx.Param("word")
	if unescaped, err := url.PathUnescape(word); err == nil {
		word = unescaped
	}

	output, err := h.similarUsecase.Execute(ctx.Request().Context(), usecase.LookupSimilarWordsInput{
		Word:  word,
		Limit: limit,
	})
	if err != nil {
		return h.errorJSON(ctx, err)
	}

	resp := make([]similarWordResponse, 0, len(output.Results))
	for _, r := range output.Results {
		resp = append(resp, similarWordResponse{Form: r.Form, Score: r.Score})
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (h *Handler) errorJSON(ctx echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	h.logger.ErrorContext(ctx.Request().Context(), "word_request_failed",
		slog.String("path", ctx.Path()),
		slog.String("error", err.Error()))
	return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
