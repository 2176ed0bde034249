package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"word-orchestrator/internal/infra/config"
)

func openSearchConfig(t *testing.T, osURL, redisURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Embedder:    config.EmbedderConfig{Provider: config.ProviderOllama, URL: "http://127.0.0.1:1", Model: "bge-m3", Timeout: time.Second},
		Completion:  config.CompletionConfig{Provider: config.ProviderOllama, URL: "http://127.0.0.1:1", WebModel: "a", GenerateModel: "b", Timeout: time.Second},
		WebSearch:   config.WebSearchConfig{Endpoint: "http://127.0.0.1:1", RatePerSecond: 1, Timeout: time.Second},
		VectorStore: config.VectorStoreConfig{Backend: config.BackendOpenSearch},
		OpenSearch:  config.OpenSearchConfig{URL: osURL, VectorField: "embedding"},
		Discovery: config.DiscoveryConfig{
			Collection:          "words",
			CandidateLimit:      10,
			SimilarityThreshold: 0.8,
			EmbedTimeout:        time.Second,
			VectorSearchTimeout: time.Second,
			WebSearchTimeout:    time.Second,
			CompletionTimeout:   time.Second,
			MinWebResults:       5,
			GenerateTemperature: 0.1,
			WebMaxTokens:        64,
			GenerateMaxTokens:   64,
		},
		Cache: config.CacheConfig{EmbedCacheSize: 16, EmbedCacheTTL: time.Minute},
		Redis: config.RedisConfig{URL: redisURL, Prefix: "test:"},
	}
}

func TestNewApplicationComponents_OpenSearchWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	osServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer osServer.Close()

	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app, err := NewApplicationComponents(context.Background(), openSearchConfig(t, osServer.URL, "redis://"+mr.Addr()), log)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.FindRelatedWordsUsecase)
	assert.NotNil(t, app.LookupSimilarWordsUsecase)
	assert.Nil(t, app.IndexVocabularyUsecase)
	assert.Nil(t, app.WordRepo)
	assert.Len(t, app.ReadinessChecks, 2)
	assert.NoError(t, app.Ready(context.Background()))

	mr.Close()
	err = app.Ready(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}

func TestNewApplicationComponents_InvalidConfig(t *testing.T) {
	cfg := openSearchConfig(t, "http://127.0.0.1:1", "")
	cfg.VectorStore.Backend = "faiss"

	_, err := NewApplicationComponents(context.Background(), cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestDiscoveryConfigFrom(t *testing.T) {
	got := DiscoveryConfigFrom(config.DiscoveryConfig{Collection: "w", CandidateLimit: 12, SimilarityThreshold: 0.7})

	assert.Equal(t, "w", got.Collection)
	assert.Equal(t, 12, got.CandidateLimit)
	assert.Equal(t, 0.7, got.SimilarityThreshold)
}
