package meta

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"legal-search/search"
)

const (
	defaultBasePrompt = "You are a legal research assistant specialized in Tamil Nadu apartment law." +
		"Answer concisely. When quoting statutory or judgment text, include exact quotes and cite source title, date and page." +
		"If uncertain, say so and provide the chunk text used as evidence.\n\n"

	// absent metadata renders as this in the context header
	missingField = "None"
)

func GetPrompt() string {
	return defaultBasePrompt
}

// Prompt is the assembled input for one question. Context holds one formatted block per
// retrieved chunk, in retrieval order.
type Prompt struct {
	System   string
	Context  []string
	Question string
}

// BuildPrompt formats each chunk as a numbered [DOC i] block under the base prompt.
func BuildPrompt(basePrompt string, chunks []search.Chunk, userQuery string) Prompt {
	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = fmt.Sprintf("[DOC %d] Title: %s | Date: %s | Page: %s | URL: %s\n%s",
			i+1,
			stringOrMissing(chunk.Title),
			stringOrMissing(chunk.Date),
			pageOrMissing(chunk.Page),
			stringOrMissing(chunk.SourceURL),
			chunk.Text,
		)
	}

	return Prompt{
		System:   basePrompt,
		Context:  blocks,
		Question: userQuery,
	}
}

// String renders the single-input form sent to the responses endpoint.
func (p Prompt) String() string {
	var b strings.Builder
	b.WriteString(p.System)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(p.Context, "\n\n"))
	b.WriteString("\n\nUser question: ")
	b.WriteString(p.Question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// CreateConversation combines the base prompt, the retrieved context, and the users query into
// chat messages, which can then be used to generate a longer form response
func CreateConversation(p Prompt) []openai.ChatCompletionMessage {
	contextMessages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: strings.TrimSpace(p.System),
		},
	}

	for _, block := range p.Context {
		contextMessages = append(contextMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: block,
		})
	}

	contextMessages = append(contextMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: p.Question,
	})

	return contextMessages
}

func stringOrMissing(s *string) string {
	if s == nil {
		return missingField
	}
	return *s
}

func pageOrMissing(p *int) string {
	if p == nil {
		return missingField
	}
	return strconv.Itoa(*p)
}
