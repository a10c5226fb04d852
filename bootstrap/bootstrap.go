package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/option"
	"github.com/redis/go-redis/v9"
	"github.com/sashabaranov/go-openai"

	"legal-search/answer"
	"legal-search/completion"
	"legal-search/config"
	"legal-search/embedding"
	"legal-search/search"
)

// Store is a vector store the query path can search and the ingestion tooling can write to.
type Store interface {
	answer.Retriever
	Index(ctx context.Context, id string, chunk search.Chunk, vector []float32) error
}

func NewStore(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreOpenSearch:
		client, err := search.NewOpenSearchClient(cfg.OpenSearchHost, cfg.OpenSearchUsername, cfg.OpenSearchPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to create opensearch client: %w", err)
		}
		return search.NewOpenSearchStore(client, cfg.OpenSearchIndex), nil
	case config.StoreWeaviate:
		client, err := search.NewWeaviateClient(cfg.WeaviateURL, cfg.WeaviateAPIKey)
		if err != nil {
			return nil, err
		}
		return search.NewWeaviateStore(client, cfg.WeaviateClass), nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Backend)
	}
}

func NewEmbedder(cfg config.OpenAIConfig) *embedding.OpenAIEmbedder {
	return embedding.NewOpenAIEmbedder(openai.NewClient(cfg.APIKey), cfg.EmbeddingModel)
}

func NewSynthesizer(cfg config.OpenAIConfig) answer.Synthesizer {
	if cfg.CompletionAPI == config.CompletionChat {
		return completion.NewChatClient(openai.NewClient(cfg.APIKey), cfg.CompletionModel, cfg.MaxOutputTokens)
	}
	return completion.NewResponsesClient(cfg.CompletionModel, cfg.MaxOutputTokens, option.WithAPIKey(cfg.APIKey))
}

// NewCache returns a nil cache and a no-op closer when no redis address is configured.
func NewCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (answer.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		return nil, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		// answers are still served without the cache
		logger.WarnContext(ctx, "redis unreachable at startup", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
	}
	return answer.NewRedisCache(client, cfg.TTL), client.Close, nil
}

// NewOrchestrator wires the provider handles into one orchestrator. The returned closer
// releases the cache connection and must be called on shutdown.
func NewOrchestrator(ctx context.Context, cfg *config.Config, store Store, logger *slog.Logger) (*answer.Orchestrator, func() error, error) {
	cache, closeCache, err := NewCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []answer.Option{
		answer.WithMaxTopK(cfg.Retrieval.MaxTopK),
		answer.WithLogger(logger),
	}
	if cache != nil {
		opts = append(opts, answer.WithCache(cache))
	}

	o := answer.New(NewEmbedder(cfg.OpenAI), store, NewSynthesizer(cfg.OpenAI), opts...)
	return o, closeCache, nil
}
