package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreWeaviate   = "weaviate"
	StoreOpenSearch = "opensearch"

	CompletionResponses = "responses"
	CompletionChat      = "chat"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	OpenAI    OpenAIConfig
	Store     StoreConfig
	Retrieval RetrievalConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
}

type OpenAIConfig struct {
	APIKey          string
	EmbeddingModel  string
	CompletionModel string
	CompletionAPI   string
	MaxOutputTokens int
}

type StoreConfig struct {
	Backend string

	WeaviateURL    string
	WeaviateAPIKey string
	WeaviateClass  string

	OpenSearchHost     string
	OpenSearchUsername string
	OpenSearchPassword string
	OpenSearchIndex    string
}

type RetrievalConfig struct {
	DefaultTopK int
	// MaxTopK of zero leaves top_k unbounded.
	MaxTopK int
}

type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          os.Getenv("OPENAI_API_KEY"),
			EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			CompletionModel: getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
			CompletionAPI:   getEnv("COMPLETION_API", CompletionResponses),
			MaxOutputTokens: getEnvAsInt("MAX_OUTPUT_TOKENS", 800),
		},
		Store: StoreConfig{
			Backend:            getEnv("VECTOR_STORE", StoreWeaviate),
			WeaviateURL:        os.Getenv("WEAVIATE_URL"),
			WeaviateAPIKey:     os.Getenv("WEAVIATE_API_KEY"),
			WeaviateClass:      getEnv("WEAVIATE_CLASS", "LegalChunk"),
			OpenSearchHost:     getEnv("OPENSEARCH_HOST", "https://localhost:9200"),
			OpenSearchUsername: getEnv("OPENSEARCH_USERNAME", "admin"),
			OpenSearchPassword: getEnv("OPENSEARCH_PASSWORD", "admin"),
			OpenSearchIndex:    getEnv("OPENSEARCH_INDEX", "legal-chunks"),
		},
		Retrieval: RetrievalConfig{
			DefaultTopK: getEnvAsInt("DEFAULT_TOP_K", 6),
			MaxTopK:     getEnvAsInt("MAX_TOP_K", 50),
		},
		Cache: CacheConfig{
			RedisAddr: os.Getenv("REDIS_ADDR"),
			TTL:       getEnvAsDuration("ANSWER_CACHE_TTL", 10*time.Minute),
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	switch c.OpenAI.CompletionAPI {
	case CompletionResponses, CompletionChat:
	default:
		return fmt.Errorf("COMPLETION_API must be %q or %q, got %q", CompletionResponses, CompletionChat, c.OpenAI.CompletionAPI)
	}

	if err := c.Store.Validate(); err != nil {
		return err
	}

	if c.Retrieval.DefaultTopK < 1 {
		return fmt.Errorf("DEFAULT_TOP_K must be at least 1")
	}
	if c.Retrieval.MaxTopK < 0 {
		return fmt.Errorf("MAX_TOP_K must not be negative")
	}
	if c.Retrieval.MaxTopK > 0 && c.Retrieval.DefaultTopK > c.Retrieval.MaxTopK {
		return fmt.Errorf("DEFAULT_TOP_K (%d) exceeds MAX_TOP_K (%d)", c.Retrieval.DefaultTopK, c.Retrieval.MaxTopK)
	}

	return nil
}

// Validate checks only the vector store settings, for commands that never call OpenAI.
func (s StoreConfig) Validate() error {
	switch s.Backend {
	case StoreWeaviate:
		if s.WeaviateURL == "" {
			return fmt.Errorf("WEAVIATE_URL is required when VECTOR_STORE=%s", StoreWeaviate)
		}
	case StoreOpenSearch:
		if s.OpenSearchHost == "" {
			return fmt.Errorf("OPENSEARCH_HOST is required when VECTOR_STORE=%s", StoreOpenSearch)
		}
	default:
		return fmt.Errorf("VECTOR_STORE must be %q or %q, got %q", StoreWeaviate, StoreOpenSearch, s.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", slog.String("key", key), slog.Int("default", defaultValue))
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", slog.String("key", key), slog.Duration("default", defaultValue))
		return defaultValue
	}

	return value
}
