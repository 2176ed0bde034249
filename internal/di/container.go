package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"word-orchestrator/internal/adapter/embedcache"
	"word-orchestrator/internal/adapter/opensearch"
	"word-orchestrator/internal/adapter/repository"
	"word-orchestrator/internal/adapter/websearch"
	"word-orchestrator/internal/adapter/word_augur"
	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/infra"
	"word-orchestrator/internal/infra/config"
	"word-orchestrator/internal/infra/httpclient"
	"word-orchestrator/internal/infra/metrics"
	"word-orchestrator/internal/usecase"
)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Adapters
	Encoder     domain.VectorEncoder
	VectorStore domain.VectorStore
	WordRepo    *repository.WordVectorRepository

	// Usecases
	FindRelatedWordsUsecase   usecase.FindRelatedWordsUsecase
	LookupSimilarWordsUsecase usecase.LookupSimilarWordsUsecase
	// IndexVocabularyUsecase is nil unless the pgvector backend is selected.
	IndexVocabularyUsecase usecase.IndexVocabularyUsecase

	// Settings the CLI needs
	Collection          string
	EmbeddingDimensions int

	// Observability
	Registry        *prometheus.Registry
	PipelineMetrics *metrics.PipelineMetrics
	ReadinessChecks []ReadinessCheck

	closers []func()
}

// DiscoveryConfigFrom maps environment settings onto the usecase config.
func DiscoveryConfigFrom(cfg config.DiscoveryConfig) usecase.DiscoveryConfig {
	return usecase.DiscoveryConfig{
		Collection:          cfg.Collection,
		CandidateLimit:      cfg.CandidateLimit,
		SimilarityThreshold: cfg.SimilarityThreshold,
		EmbedTimeout:        cfg.EmbedTimeout,
		VectorSearchTimeout: cfg.VectorSearchTimeout,
		WebSearchTimeout:    cfg.WebSearchTimeout,
		CompletionTimeout:   cfg.CompletionTimeout,
		MinWebResults:       cfg.MinWebResults,
		WebTemperature:      cfg.WebTemperature,
		WebMaxTokens:        cfg.WebMaxTokens,
		GenerateTemperature: cfg.GenerateTemperature,
		GenerateMaxTokens:   cfg.GenerateMaxTokens,
		LanguageInstruction: cfg.LanguageInstruction,
	}
}

// NewApplicationComponents wires all dependencies from config. Close must be
// called to release pools and clients.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ApplicationComponents, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	discoveryCfg := DiscoveryConfigFrom(cfg.Discovery)
	if err := discoveryCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid discovery config: %w", err)
	}

	app := &ApplicationComponents{
		Collection:          discoveryCfg.Collection,
		EmbeddingDimensions: cfg.Embedder.Dimensions,
	}

	// 1. Embedding cache (L2 optional)
	var remote word_augur.RemoteVectorCache
	if cfg.Redis.URL != "" {
		redisCache, err := embedcache.NewRedisVectorCache(cfg.Redis.URL, cfg.Redis.Prefix, cfg.Cache.EmbedCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		app.closers = append(app.closers, func() { _ = redisCache.Close() })
		app.ReadinessChecks = append(app.ReadinessChecks, ReadinessCheck{Name: "redis", Check: redisCache.Ping})
		remote = redisCache
	}

	// 2. Embedder
	baseEncoder := newEncoder(cfg.Embedder, log)
	app.Encoder = word_augur.NewCachedEncoder(baseEncoder, cfg.Cache.EmbedCacheSize, cfg.Cache.EmbedCacheTTL, cfg.Embedder.Timeout, remote, log)

	// 3. Vector store
	switch cfg.VectorStore.Backend {
	case config.BackendOpenSearch:
		store := opensearch.NewScriptScoreStore(
			cfg.OpenSearch.URL, cfg.OpenSearch.Username, cfg.OpenSearch.Password,
			cfg.OpenSearch.VectorField, cfg.Discovery.VectorSearchTimeout, log)
		app.VectorStore = store
		app.ReadinessChecks = append(app.ReadinessChecks, ReadinessCheck{Name: "opensearch", Check: store.Ping})
	default:
		pool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		app.wirePgvector(pool, log)
	}

	// 4. Completion clients and web search
	webCompleter := newCompleter(cfg.Completion, cfg.Completion.WebModel, log)
	generateCompleter := webCompleter
	if cfg.Completion.GenerateModel != cfg.Completion.WebModel {
		generateCompleter = newCompleter(cfg.Completion, cfg.Completion.GenerateModel, log)
	}
	searcher := websearch.NewDuckDuckGoClient(
		cfg.WebSearch.Endpoint, cfg.WebSearch.Region,
		cfg.WebSearch.Timeout, cfg.WebSearch.RatePerSecond, log)

	// 5. Metrics
	app.Registry = metrics.NewRegistry()
	app.PipelineMetrics = metrics.NewPipelineMetrics(app.Registry)

	// 6. Usecases
	app.FindRelatedWordsUsecase = usecase.NewFindRelatedWordsUsecase(
		app.Encoder,
		app.VectorStore,
		searcher,
		webCompleter,
		generateCompleter,
		discoveryCfg,
		log,
		usecase.WithPipelineMetrics(app.PipelineMetrics),
	)
	app.LookupSimilarWordsUsecase = usecase.NewLookupSimilarWordsUsecase(app.Encoder, app.VectorStore, discoveryCfg, log)

	log.Info("application components wired",
		slog.String("embedder", baseEncoder.Version()),
		slog.String("vector_store", cfg.VectorStore.Backend),
		slog.String("completion_provider", cfg.Completion.Provider),
		slog.Bool("redis_cache", remote != nil))
	return app, nil
}

func (app *ApplicationComponents) wirePgvector(pool *pgxpool.Pool, log *slog.Logger) {
	repo := repository.NewWordVectorRepository(pool)
	txManager := repository.NewPostgresTransactionManager(pool)
	app.WordRepo = repo
	app.VectorStore = repo
	app.IndexVocabularyUsecase = usecase.NewIndexVocabularyUsecase(repo, txManager, app.Encoder, log)
	app.ReadinessChecks = append(app.ReadinessChecks, ReadinessCheck{Name: "db", Check: repo.Ping})
}

func newEncoder(cfg config.EmbedderConfig, log *slog.Logger) domain.VectorEncoder {
	if cfg.Provider == config.ProviderOpenAI {
		return word_augur.NewOpenAIEmbedder(cfg.APIKey, cfg.OpenAIBaseURL, cfg.Model, cfg.Dimensions,
			httpclient.NewPooledClient(cfg.Timeout), log)
	}
	return word_augur.NewOllamaEmbedder(cfg.URL, cfg.Model, cfg.Timeout, log)
}

func newCompleter(cfg config.CompletionConfig, model string, log *slog.Logger) domain.CompletionClient {
	if cfg.Provider == config.ProviderOpenAI {
		return word_augur.NewOpenAICompleter(cfg.APIKey, cfg.OpenAIBaseURL, model,
			httpclient.NewPooledClient(cfg.Timeout), log)
	}
	return word_augur.NewOllamaGenerator(cfg.URL, model, cfg.Timeout, log)
}

// Ready runs every readiness check and joins the failures.
func (app *ApplicationComponents) Ready(ctx context.Context) error {
	var errs []error
	for _, rc := range app.ReadinessChecks {
		if err := rc.Check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rc.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases resources in reverse order of creation.
func (app *ApplicationComponents) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}
