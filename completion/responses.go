package completion

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"

	"legal-search/meta"
)

// ResponsesClient generates answers through the OpenAI Responses API.
type ResponsesClient struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
}

func NewResponsesClient(model string, maxOutputTokens int, opts ...option.RequestOption) *ResponsesClient {
	return &ResponsesClient{
		client:          openai.NewClient(opts...),
		model:           model,
		maxOutputTokens: int64(maxOutputTokens),
	}
}

func (c *ResponsesClient) Complete(ctx context.Context, prompt meta.Prompt) (string, error) {
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ResponsesModel(c.model),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt.String())},
		MaxOutputTokens: openai.Int(c.maxOutputTokens),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate a completion: %w", err)
	}

	return ExtractText(
		DirectText{Value: resp.OutputText()},
		NestedOutput{Raw: gjson.Parse(resp.RawJSON())},
	), nil
}
