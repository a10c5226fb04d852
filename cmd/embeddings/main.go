package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"legal-search/bootstrap"
	"legal-search/config"
	"legal-search/embedding"
	"legal-search/manifest"
	"legal-search/search"
)

const (
	// Definitely worth experimenting with this
	DefaultWindowSize = 300

	batchSize = 64
)

type batchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

func Embed(ctx *cli.Context) error {
	dataDirectory := ctx.String("data-dir")
	manifestData, err := manifest.Load(dataDirectory)
	if err != nil {
		return fmt.Errorf("failed to load data manifest: %w", err)
	}

	cfg := config.FromEnv()
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	embedder := bootstrap.NewEmbedder(cfg.OpenAI)

	for guid, document := range manifestData.Documents {
		path := manifest.EmbeddingsPath(dataDirectory, guid)
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("embeddings already exist for %s (%s), skipping\n", guid, document.Title)
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if len(document.Pages) == 0 {
			fmt.Printf("no extracted text for %s (%s), run extract first\n", guid, document.Title)
			continue
		}

		stored, err := embedDocument(ctx.Context, embedder, document, ctx.Int("window"))
		if err != nil {
			return err
		}

		embeddingBytes, err := json.MarshalIndent(stored, "", " ")
		if err != nil {
			return fmt.Errorf("failed to serialize embeddings data for document %s: %w", guid, err)
		}
		err = os.WriteFile(path, embeddingBytes, 0644)
		if err != nil {
			return fmt.Errorf("failed to write embeddings data for document %s: %w", guid, err)
		}
		fmt.Printf("generated %d embeddings for %s (%s)\n", len(stored), guid, document.Title)
	}

	return nil
}

// embedDocument splits every page into word windows and embeds them in batches. Chunk ids are
// derived from the document, page and window so re-embedding yields the same ids.
func embedDocument(ctx context.Context, embedder batchEmbedder, document manifest.DocumentData, windowSize int) ([]embedding.Storage, error) {
	var pending []embedding.Storage
	for pageIndex, text := range document.Pages {
		for windowIndex, window := range embedding.Windows(text, windowSize) {
			page := pageIndex + 1
			pending = append(pending, embedding.Storage{
				ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d#%d", document.GUID, page, windowIndex))).String(),
				GUID:       document.GUID,
				WindowSize: windowSize,
				Model:      embedder.Model(),
				Chunk: search.Chunk{
					Text:      window,
					SourceURL: optional(document.Link),
					Title:     optional(document.Title),
					Page:      &page,
					Date:      optional(document.Published),
					DocType:   optional(document.DocType),
				},
			})
		}
	}

	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		texts := make([]string, 0, end-start)
		for _, s := range pending[start:end] {
			texts = append(texts, s.Chunk.Text)
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("error generating embeddings for chunks %d:%d of document %s: %w", start, end, document.GUID, err)
		}
		for i, vector := range vectors {
			pending[start+i].Vector = vector
		}
	}

	return pending, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
