package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"legal-search/meta"
	"legal-search/search"
)

const (
	DefaultTopK = 6

	// FoundConfidence is a placeholder constant; no score is derived from retrieval or the model.
	FoundConfidence    = 0.85
	NotFoundConfidence = 0.0

	NoDocumentsAnswer = "No relevant documents found."
)

var (
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrInvalidTopK   = errors.New("top_k must be a positive integer")
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever interface {
	Search(ctx context.Context, queryVector []float32, k int) ([]search.Chunk, error)
}

type Synthesizer interface {
	Complete(ctx context.Context, prompt meta.Prompt) (string, error)
}

type Query struct {
	Question string
	TopK     int
}

type Source struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
	Page  *int    `json:"page"`
}

type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}

func NoDocuments() *Answer {
	return &Answer{
		Answer:     NoDocumentsAnswer,
		Sources:    []Source{},
		Confidence: NotFoundConfidence,
	}
}

type Option func(*Orchestrator)

// WithMaxTopK rejects queries asking for more than n chunks. Zero leaves top_k unbounded.
func WithMaxTopK(n int) Option {
	return func(o *Orchestrator) { o.maxTopK = n }
}

func WithCache(cache Cache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithBasePrompt(prompt string) Option {
	return func(o *Orchestrator) { o.basePrompt = prompt }
}

// Orchestrator answers one question with a single embed, search, complete pass. It holds no
// per-request state and is safe for concurrent use when its collaborators are.
type Orchestrator struct {
	embedder    Embedder
	retriever   Retriever
	synthesizer Synthesizer
	cache       Cache
	logger      *slog.Logger
	basePrompt  string
	maxTopK     int
}

func New(embedder Embedder, retriever Retriever, synthesizer Synthesizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		embedder:    embedder,
		retriever:   retriever,
		synthesizer: synthesizer,
		logger:      slog.Default(),
		basePrompt:  meta.GetPrompt(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Handle(ctx context.Context, q Query) (*Answer, error) {
	if q.Question == "" {
		return nil, ErrEmptyQuestion
	}
	if q.TopK < 1 {
		return nil, ErrInvalidTopK
	}
	if o.maxTopK > 0 && q.TopK > o.maxTopK {
		return nil, fmt.Errorf("%w: %d exceeds the maximum of %d", ErrInvalidTopK, q.TopK, o.maxTopK)
	}

	if o.cache != nil {
		cached, err := o.cache.Get(ctx, q)
		if err != nil {
			o.logger.WarnContext(ctx, "answer cache lookup failed", slog.Any("error", err))
		} else if cached != nil {
			o.logger.DebugContext(ctx, "answer cache hit", slog.Int("top_k", q.TopK))
			return cached, nil
		}
	}

	queryVector, err := o.embedder.Embed(ctx, q.Question)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding from question: %w", err)
	}

	chunks, err := o.retriever.Search(ctx, queryVector, q.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to locate nearby chunks for question: %w", err)
	}
	if len(chunks) == 0 {
		o.logger.InfoContext(ctx, "no chunks matched question", slog.Int("top_k", q.TopK))
		return NoDocuments(), nil
	}

	prompt := meta.BuildPrompt(o.basePrompt, chunks, q.Question)
	text, err := o.synthesizer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	sources := make([]Source, len(chunks))
	for i, chunk := range chunks {
		sources[i] = Source{
			Title: chunk.Title,
			URL:   chunk.SourceURL,
			Page:  chunk.Page,
		}
	}

	answer := &Answer{
		Answer:     text,
		Sources:    sources,
		Confidence: FoundConfidence,
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, q, answer); err != nil {
			o.logger.WarnContext(ctx, "answer cache write failed", slog.Any("error", err))
		}
	}

	o.logger.InfoContext(ctx, "answered question", slog.Int("top_k", q.TopK), slog.Int("chunks", len(chunks)))
	return answer, nil
}
