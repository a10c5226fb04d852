package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"legal-search/meta"
	"legal-search/search"
)

func testPrompt() meta.Prompt {
	return meta.BuildPrompt(meta.GetPrompt(), []search.Chunk{{Text: "Common areas are maintained by the association."}}, "Who maintains common areas?")
}

func TestExtractText_PrefersDirectText(t *testing.T) {
	raw := gjson.Parse(`{"output":[{"content":[{"text":"nested"}]}]}`)
	assert.Equal(t, "direct", ExtractText(DirectText{Value: "direct"}, NestedOutput{Raw: raw}))
}

func TestExtractText_FallsBackToNestedOutput(t *testing.T) {
	raw := gjson.Parse(`{"output":[
		{"type":"reasoning","content":[]},
		{"type":"message","content":[{"type":"output_text","text":""},{"type":"output_text","text":"The association maintains them."}]}
	]}`)
	assert.Equal(t, "The association maintains them.", ExtractText(DirectText{}, NestedOutput{Raw: raw}))
}

func TestExtractText_NoShapeMatches(t *testing.T) {
	assert.Equal(t, "", ExtractText(DirectText{}, NestedOutput{Raw: gjson.Parse(`{"output":[]}`)}))
	assert.Equal(t, "", ExtractText(NestedOutput{Raw: gjson.Parse(`{}`)}))
	assert.Equal(t, "", ExtractText())
}

func TestResponsesClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		assert.EqualValues(t, 800, req["max_output_tokens"])
		assert.Equal(t, testPrompt().String(), req["input"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"resp_1","object":"response","status":"completed","model":"gpt-4o-mini",
			"output":[{"type":"message","id":"msg_1","role":"assistant","status":"completed",
				"content":[{"type":"output_text","text":"The association maintains common areas [DOC 1].","annotations":[]}]}]
		}`))
	}))
	defer server.Close()

	client := NewResponsesClient("gpt-4o-mini", 800,
		option.WithBaseURL(server.URL),
		option.WithAPIKey("sk-test"),
		option.WithMaxRetries(0),
	)

	text, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "The association maintains common areas [DOC 1].", text)
}

func TestResponsesClient_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer server.Close()

	client := NewResponsesClient("gpt-4o-mini", 800,
		option.WithBaseURL(server.URL),
		option.WithAPIKey("sk-test"),
		option.WithMaxRetries(0),
	)

	_, err := client.Complete(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate a completion")
}

func newTestChatClient(t *testing.T, handler http.HandlerFunc) *ChatClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = server.URL + "/v1"
	return NewChatClient(openai.NewClientWithConfig(cfg), "gpt-4o-mini", 800)
}

func TestChatClient_Complete(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 800, req.MaxTokens)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "Who maintains common areas?", req.Messages[2].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"The association."},"finish_reason":"stop"}]}`))
	})

	text, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)
	assert.Equal(t, "The association.", text)
}

func TestChatClient_NoChoices(t *testing.T) {
	client := newTestChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`))
	})

	_, err := client.Complete(context.Background(), testPrompt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
