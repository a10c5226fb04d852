package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestChunkFromJSON_OptionalFields(t *testing.T) {
	full := chunkFromJSON(gjson.Parse(`{
		"text": "Notice must be given in writing.",
		"source_url": "https://example.org/act.pdf",
		"title": "TN Apartment Ownership Act",
		"page": 12,
		"date": "1994-05-01",
		"doc_type": "statute"
	}`))
	assert.Equal(t, "Notice must be given in writing.", full.Text)
	require.NotNil(t, full.Page)
	assert.Equal(t, 12, *full.Page)
	assert.Equal(t, "TN Apartment Ownership Act", *full.Title)
	assert.Equal(t, "statute", *full.DocType)

	sparse := chunkFromJSON(gjson.Parse(`{"text": "orphan", "title": null}`))
	assert.Equal(t, "orphan", sparse.Text)
	assert.Nil(t, sparse.Title)
	assert.Nil(t, sparse.SourceURL)
	assert.Nil(t, sparse.Page)
	assert.Nil(t, sparse.Date)
	assert.Nil(t, sparse.DocType)
}

func TestChunkFromJSON_Page(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *int
	}{
		{"integer", `{"text":"t","page":4}`, ptr(4)},
		{"integral float", `{"text":"t","page":4.0}`, ptr(4)},
		{"fractional", `{"text":"t","page":3.7}`, nil},
		{"roman numeral", `{"text":"t","page":"xii"}`, nil},
		{"numeric string", `{"text":"t","page":"7"}`, nil},
		{"null", `{"text":"t","page":null}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkFromJSON(gjson.Parse(tt.json)).Page)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestChunkProperties_SkipsAbsent(t *testing.T) {
	title := "G.O. Ms. No. 41"
	page := 3
	props := Chunk{Text: "body", Title: &title, Page: &page}.Properties()

	assert.Equal(t, map[string]interface{}{"text": "body", "title": title, "page": 3}, props)
}

func TestDecodeGetResult_PreservesOrder(t *testing.T) {
	data := []byte(`{"Get":{"LegalChunk":[
		{"text":"first","title":"A","page":1},
		{"text":"second","title":"B","page":null},
		{"text":"third"}
	]}}`)

	chunks := decodeGetResult(data, "LegalChunk")
	require.Len(t, chunks, 3)
	assert.Equal(t, "first", chunks[0].Text)
	assert.Equal(t, "second", chunks[1].Text)
	assert.Nil(t, chunks[1].Page)
	assert.Equal(t, "third", chunks[2].Text)
}

func TestDecodeGetResult_Empty(t *testing.T) {
	assert.Empty(t, decodeGetResult([]byte(`{"Get":{"LegalChunk":[]}}`), "LegalChunk"))
	assert.Empty(t, decodeGetResult([]byte(`{"Get":{}}`), "LegalChunk"))
}

func newTestOpenSearch(t *testing.T, handler http.HandlerFunc) *OpenSearchStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := opensearch.NewClient(opensearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewOpenSearchStore(client, "legal-chunks")
}

func TestOpenSearchStore_Search(t *testing.T) {
	store := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/legal-chunks/_search", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.EqualValues(t, 2, req["size"])
		assert.Len(t, req["_source"], len(ChunkProperties))
		assert.EqualValues(t, 2, gjson.GetBytes(body, "query.knn.vector_data.k").Int())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_id":"a","_source":{"text":"one","title":"First","page":4,"source_url":"https://x/1"}},
			{"_id":"b","_source":{"text":"two"}}
		]}}`))
	})

	chunks, err := store.Search(context.Background(), []float32{0.1, 0.2}, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "one", chunks[0].Text)
	assert.Equal(t, 4, *chunks[0].Page)
	assert.Equal(t, "https://x/1", *chunks[0].SourceURL)
	assert.Equal(t, "two", chunks[1].Text)
	assert.Nil(t, chunks[1].Title)
}

func TestOpenSearchStore_SearchErrorStatus(t *testing.T) {
	store := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"no such index"}`))
	})

	_, err := store.Search(context.Background(), []float32{1}, 6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response to vector query")
}

func TestOpenSearchStore_Index(t *testing.T) {
	var gotPath string
	var gotBody []byte
	store := newTestOpenSearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	title := "Judgment"
	err := store.Index(context.Background(), "doc-1", Chunk{Text: "held", Title: &title}, []float32{0.5})
	require.NoError(t, err)
	assert.Equal(t, "/legal-chunks/_doc/doc-1", gotPath)
	assert.Equal(t, "held", gjson.GetBytes(gotBody, "text").String())
	assert.Equal(t, "Judgment", gjson.GetBytes(gotBody, "title").String())
	assert.Equal(t, 0.5, gjson.GetBytes(gotBody, "vector_data.0").Float())
}
