package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/tidwall/gjson"
)

// Opensearch API is stupid :(
type query struct {
	Knn knnSearch `json:"knn"`
}

type knnSearch struct {
	vectorData `json:"vector_data"`
}

type vectorData struct {
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
}

type OpenSearchStore struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchStore(client *opensearch.Client, index string) *OpenSearchStore {
	return &OpenSearchStore{client: client, index: index}
}

// NewOpenSearchClient connects with basic auth. Hosts without a scheme are assumed to be https.
func NewOpenSearchClient(host, username, password string) (*opensearch.Client, error) {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return opensearch.NewClient(opensearch.Config{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
		},
		Addresses: []string{host},
		Username:  username,
		Password:  password,
	})
}

// Search runs a knn query and returns up to k chunks in score order.
func (s *OpenSearchStore) Search(ctx context.Context, queryVector []float32, k int) ([]Chunk, error) {
	queryBytes, err := json.Marshal(struct {
		Size   int      `json:"size"`
		Source []string `json:"_source"`
		Query  query    `json:"query"`
	}{
		Size:   k,
		Source: ChunkProperties,
		Query: query{
			Knn: knnSearch{
				vectorData: vectorData{
					Vector: queryVector,
					K:      k,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vector query: %w", err)
	}

	searchReq := opensearchapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(queryBytes),
	}

	searchResponse, err := searchReq.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector query: %w", err)
	}
	defer searchResponse.Body.Close()

	if searchResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response to vector query: %s", searchResponse.String())
	}

	bodyBytes, err := io.ReadAll(searchResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response body: %w", err)
	}
	if !gjson.ValidBytes(bodyBytes) {
		return nil, fmt.Errorf("failed to deserialize search results")
	}

	hits := gjson.GetBytes(bodyBytes, "hits.hits").Array()
	response := make([]Chunk, 0, len(hits))
	for _, hit := range hits {
		response = append(response, chunkFromJSON(hit.Get("_source")))
	}

	return response, nil
}

// EnsureIndex creates the knn index with a vector field of the given dimension if it does not exist yet.
func (s *OpenSearchStore) EnsureIndex(ctx context.Context, dimension int) error {
	existsResponse, err := opensearchapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to check for index %s: %w", s.index, err)
	}
	existsResponse.Body.Close()
	if existsResponse.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{"knn": true},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"vector_data": map[string]interface{}{
					"type":      "knn_vector",
					"dimension": dimension,
				},
				"text":       map[string]interface{}{"type": "text"},
				"title":      map[string]interface{}{"type": "text"},
				"source_url": map[string]interface{}{"type": "keyword"},
				"page":       map[string]interface{}{"type": "integer"},
				"date":       map[string]interface{}{"type": "keyword"},
				"doc_type":   map[string]interface{}{"type": "keyword"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal index mapping: %w", err)
	}

	createResponse, err := opensearchapi.IndicesCreateRequest{
		Index: s.index,
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", s.index, err)
	}
	defer createResponse.Body.Close()
	if createResponse.IsError() {
		return fmt.Errorf("unexpected response creating index %s: %s", s.index, createResponse.String())
	}

	return nil
}

// Index writes one chunk document under id, replacing any previous version.
func (s *OpenSearchStore) Index(ctx context.Context, id string, chunk Chunk, vector []float32) error {
	docBody, err := json.Marshal(Document{Chunk: chunk, Vectors: vector})
	if err != nil {
		return fmt.Errorf("failed to build search document %s: %w", id, err)
	}

	req := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: id,
		Body:       bytes.NewReader(docBody),
	}

	insertResponse, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("error indexing document %s: %w", id, err)
	}
	defer insertResponse.Body.Close()
	if insertResponse.StatusCode >= 300 {
		return fmt.Errorf("unexpected indexing response writing document %s: %s", id, insertResponse.String())
	}

	return nil
}
