package completion

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"legal-search/meta"
)

// ChatClient generates answers through the chat completions endpoint, sending the prompt as a
// conversation rather than a single input.
type ChatClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewChatClient(client *openai.Client, model string, maxTokens int) *ChatClient {
	return &ChatClient{client: client, model: model, maxTokens: maxTokens}
}

func (c *ChatClient) Complete(ctx context.Context, prompt meta.Prompt) (string, error) {
	chatResponse, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  meta.CreateConversation(prompt),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate a chat completion: %w", err)
	}
	if len(chatResponse.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return chatResponse.Choices[0].Message.Content, nil
}
