package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
)

type WeaviateStore struct {
	client    *weaviate.Client
	className string
}

func NewWeaviateStore(client *weaviate.Client, className string) *WeaviateStore {
	return &WeaviateStore{client: client, className: className}
}

// NewWeaviateClient accepts either a bare cluster host or a full URL. The API key is optional.
func NewWeaviateClient(rawURL, apiKey string) (*weaviate.Client, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weaviate url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url %q: missing host", rawURL)
	}

	cfg := weaviate.Config{
		Host:   u.Host,
		Scheme: u.Scheme,
	}
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return client, nil
}

// Search runs a nearVector query against the class and returns up to k chunks in distance order.
func (s *WeaviateStore) Search(ctx context.Context, queryVector []float32, k int) ([]Chunk, error) {
	fields := make([]graphql.Field, len(ChunkProperties))
	for i, name := range ChunkProperties {
		fields[i] = graphql.Field{Name: name}
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(queryVector)
	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to execute near vector query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("near vector query on %s failed: %s", s.className, result.Errors[0].Message)
	}

	data, err := json.Marshal(result.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to read near vector results: %w", err)
	}
	return decodeGetResult(data, s.className), nil
}

// decodeGetResult reads the objects under Get.<class> of a GraphQL Get response.
func decodeGetResult(data []byte, className string) []Chunk {
	objects := gjson.GetBytes(data, "Get."+className).Array()
	chunks := make([]Chunk, 0, len(objects))
	for _, obj := range objects {
		chunks = append(chunks, chunkFromJSON(obj))
	}
	return chunks
}

// Index creates one object with the given id and vector.
func (s *WeaviateStore) Index(ctx context.Context, id string, chunk Chunk, vector []float32) error {
	_, err := s.client.Data().Creator().
		WithClassName(s.className).
		WithID(id).
		WithProperties(chunk.Properties()).
		WithVector(vector).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("error indexing object %s into %s: %w", id, s.className, err)
	}
	return nil
}
