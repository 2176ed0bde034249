package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	BackendPgvector   = "pgvector"
	BackendOpenSearch = "opensearch"
)

type Config struct {
	Env         string
	Server      ServerConfig
	DB          DBConfig
	Embedder    EmbedderConfig
	Completion  CompletionConfig
	WebSearch   WebSearchConfig
	VectorStore VectorStoreConfig
	OpenSearch  OpenSearchConfig
	Discovery   DiscoveryConfig
	Cache       CacheConfig
	Redis       RedisConfig
	Telemetry   TelemetryConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN builds a pgx connection string.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// EmbedderConfig selects the embedding backend. OpenAIBaseURL overrides the
// OpenAI endpoint and is ignored for Ollama.
type EmbedderConfig struct {
	Provider      string
	URL           string
	OpenAIBaseURL string
	APIKey        string
	Model         string
	Dimensions    int
	Timeout       time.Duration
}

// CompletionConfig selects the chat backend. The web extraction and
// generation steps may use different models on the same backend.
type CompletionConfig struct {
	Provider      string
	URL           string
	OpenAIBaseURL string
	APIKey        string
	WebModel      string
	GenerateModel string
	Timeout       time.Duration
}

type WebSearchConfig struct {
	Endpoint      string
	Region        string
	RatePerSecond float64
	Timeout       time.Duration
}

type VectorStoreConfig struct {
	Backend string
}

type OpenSearchConfig struct {
	URL         string
	Username    string
	Password    string
	VectorField string
}

type DiscoveryConfig struct {
	Collection          string
	CandidateLimit      int
	SimilarityThreshold float64
	EmbedTimeout        time.Duration
	VectorSearchTimeout time.Duration
	WebSearchTimeout    time.Duration
	CompletionTimeout   time.Duration
	MinWebResults       int
	WebTemperature      float64
	WebMaxTokens        int
	GenerateTemperature float64
	GenerateMaxTokens   int
	LanguageInstruction string
}

type CacheConfig struct {
	EmbedCacheSize int
	EmbedCacheTTL  time.Duration
}

// RedisConfig enables the shared embedding cache when URL is set.
type RedisConfig struct {
	URL    string
	Prefix string
}

type TelemetryConfig struct {
	ServiceName  string
	LogLevel     string
	OTelEnabled  bool
	OTLPEndpoint string
	SampleRatio  float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "9010"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "word-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "word_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "word_password"),
			Name:     getEnv("DB_NAME", "word_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 20),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Embedder: EmbedderConfig{
			Provider:      getEnv("EMBEDDER_PROVIDER", ProviderOllama),
			URL:           getEnvWithAlt("EMBEDDER_URL", "OLLAMA_URL", "http://ollama:11434"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			APIKey:        getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
			Model:         getEnv("EMBEDDING_MODEL", "bge-m3"),
			Dimensions:    getEnvInt("EMBEDDING_DIMENSIONS", 1024),
			Timeout:       getEnvDuration("EMBEDDER_TIMEOUT", 30*time.Second),
		},
		Completion: CompletionConfig{
			Provider:      getEnv("LLM_PROVIDER", ProviderOllama),
			URL:           getEnvWithAlt("LLM_URL", "OLLAMA_URL", "http://ollama:11434"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			APIKey:        getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
			WebModel:      getEnvWithAlt("LLM_WEB_SEARCH_MODEL", "LLM_MODEL", "gemma3:4b"),
			GenerateModel: getEnvWithAlt("LLM_GENERATE_MODEL", "LLM_MODEL", "gemma3:4b"),
			Timeout:       getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		},
		WebSearch: WebSearchConfig{
			Endpoint:      getEnv("WEB_SEARCH_ENDPOINT", "https://html.duckduckgo.com/html/"),
			Region:        getEnv("WEB_SEARCH_REGION", "kr-kr"),
			RatePerSecond: getEnvFloat64("WEB_SEARCH_RPS", 1.0),
			Timeout:       getEnvDuration("WEB_SEARCH_HTTP_TIMEOUT", 15*time.Second),
		},
		VectorStore: VectorStoreConfig{
			Backend: getEnv("VECTOR_STORE_BACKEND", BackendPgvector),
		},
		OpenSearch: OpenSearchConfig{
			URL:         getEnv("OPENSEARCH_URL", "http://opensearch:9200"),
			Username:    getEnv("OPENSEARCH_USERNAME", ""),
			Password:    getSecret("OPENSEARCH_PASSWORD", "OPENSEARCH_PASSWORD_FILE", ""),
			VectorField: getEnv("OPENSEARCH_VECTOR_FIELD", "embedding"),
		},
		Discovery: DiscoveryConfig{
			Collection:          getEnv("WORD_COLLECTION", "words"),
			CandidateLimit:      getEnvInt("WORD_CANDIDATE_LIMIT", 10),
			SimilarityThreshold: getEnvFloat64("WORD_SIMILARITY_THRESHOLD", 0.8),
			EmbedTimeout:        getEnvDuration("WORD_EMBED_TIMEOUT", 5*time.Second),
			VectorSearchTimeout: getEnvDuration("WORD_VECTOR_SEARCH_TIMEOUT", 5*time.Second),
			WebSearchTimeout:    getEnvDuration("WORD_WEB_SEARCH_TIMEOUT", 10*time.Second),
			CompletionTimeout:   getEnvDuration("WORD_COMPLETION_TIMEOUT", 15*time.Second),
			MinWebResults:       getEnvInt("WORD_MIN_WEB_RESULTS", 5),
			WebTemperature:      getEnvFloat64("LLM_WEB_SEARCH_TEMPERATURE", 0.0),
			WebMaxTokens:        getEnvInt("LLM_WEB_SEARCH_MAX_TOKENS", 128),
			GenerateTemperature: getEnvFloat64("LLM_GENERATE_TEMPERATURE", 0.1),
			GenerateMaxTokens:   getEnvInt("LLM_GENERATE_MAX_TOKENS", 128),
			LanguageInstruction: getEnv("WORD_LANGUAGE_INSTRUCTION", "Answer in Korean."),
		},
		Cache: CacheConfig{
			EmbedCacheSize: getEnvInt("EMBED_CACHE_SIZE", 4096),
			EmbedCacheTTL:  getEnvDuration("EMBED_CACHE_TTL", time.Hour),
		},
		Redis: RedisConfig{
			URL:    getSecret("REDIS_URL", "REDIS_URL_FILE", ""),
			Prefix: getEnv("REDIS_KEY_PREFIX", "word-orchestrator:"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "word-orchestrator"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel-collector:4318"),
			SampleRatio:  getEnvFloat64("OTEL_TRACE_SAMPLE_RATIO", 1.0),
		},
	}
}

// Validate rejects settings that cannot be wired.
func (c *Config) Validate() error {
	switch c.Embedder.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown EMBEDDER_PROVIDER %q", c.Embedder.Provider)
	}
	switch c.Completion.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Completion.Provider)
	}
	if c.Embedder.Provider == ProviderOpenAI && c.Embedder.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the openai embedder")
	}
	if c.Completion.Provider == ProviderOpenAI && c.Completion.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the openai completion backend")
	}
	switch c.VectorStore.Backend {
	case BackendPgvector, BackendOpenSearch:
	default:
		return fmt.Errorf("unknown VECTOR_STORE_BACKEND %q", c.VectorStore.Backend)
	}
	if c.WebSearch.RatePerSecond <= 0 {
		return fmt.Errorf("WEB_SEARCH_RPS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	// 1. Try direct environment variable
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	// 2. Try reading from file specified by fileEnvKey
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("750ms") or whole seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
