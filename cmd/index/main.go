package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"legal-search/bootstrap"
	"legal-search/config"
	"legal-search/embedding"
	"legal-search/manifest"
)

// indexEnsurer is implemented by stores that need their schema created before the first write.
type indexEnsurer interface {
	EnsureIndex(ctx context.Context, dimension int) error
}

func Index(ctx *cli.Context) error {
	dataDirectory := ctx.String("data-dir")
	manifestData, err := manifest.Load(dataDirectory)
	if err != nil {
		return fmt.Errorf("failed to load data manifest: %w", err)
	}

	cfg := config.FromEnv()
	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}
	store, err := bootstrap.NewStore(cfg.Store)
	if err != nil {
		return err
	}

	return indexDocuments(ctx.Context, store, dataDirectory, manifestData)
}

// indexDocuments loads each document's embeddings and writes them into the store as chunk
// objects carrying their text and document metadata.
func indexDocuments(ctx context.Context, store bootstrap.Store, dataDirectory string, manifestData *manifest.Downloads) error {
	ensured := false
	for guid, document := range manifestData.Documents {
		embeddingBytes, err := os.ReadFile(manifest.EmbeddingsPath(dataDirectory, guid))
		if err != nil {
			return fmt.Errorf("could not load document embeddings: %w", err)
		}

		var embeddings []embedding.Storage
		err = json.Unmarshal(embeddingBytes, &embeddings)
		if err != nil {
			return fmt.Errorf("could not load document embeddings: %w", err)
		}
		if len(embeddings) == 0 {
			continue
		}

		if ensurer, ok := store.(indexEnsurer); ok && !ensured {
			if err := ensurer.EnsureIndex(ctx, len(embeddings[0].Vector)); err != nil {
				return err
			}
			ensured = true
		}

		for i, e := range embeddings {
			if err := store.Index(ctx, e.ID, e.Chunk, e.Vector); err != nil {
				return fmt.Errorf("failed to index embedding %d of document %s: %w", i, guid, err)
			}
		}

		fmt.Printf("Indexed %d chunk documents for %s (%s)\n", len(embeddings), guid, document.Title)
	}

	return nil
}
