package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"legal-search/cmd/download"
	"legal-search/cmd/embeddings"
	"legal-search/cmd/extract"
	"legal-search/cmd/index"
	"legal-search/cmd/query"
)

func main() {
	app := &cli.App{
		Name:  "legal-search",
		Usage: "Build and query the legal chunk index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "directory holding the manifest, downloaded documents and embeddings",
				EnvVars: []string{"DATA_DIR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "download",
				Aliases: []string{"d"},
				Usage:   "Download legal documents listed in a feed to a local cache",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "feed", Required: true, Usage: "RSS or Atom feed listing the documents"},
					&cli.StringFlag{Name: "doc-type", Value: "judgment", Usage: "doc_type recorded for every document in the feed"},
					&cli.IntFlag{Name: "max", Value: 10, Usage: "maximum number of new documents to download"},
					&cli.DurationFlag{Name: "delay", Value: download.DefaultDelay, Usage: "pause between downloads"},
				},
				Action: download.Download,
			},
			{
				Name:    "extract",
				Aliases: []string{"x"},
				Usage:   "Extract per-page text from downloaded PDFs",
				Action:  extract.Extract,
			},
			{
				Name:    "embed",
				Aliases: []string{"e"},
				Usage:   "Generate embeddings from extracted pages",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "window", Value: embeddings.DefaultWindowSize, Usage: "words per chunk"},
				},
				Action: embeddings.Embed,
			},
			{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Load embeddings into the configured vector store",
				Action:  index.Index,
			},
			{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Answer a question with retrieved context",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "question", Required: true},
					&cli.IntFlag{Name: "top-k", Value: 0, Usage: "chunks to retrieve (defaults to DEFAULT_TOP_K)"},
				},
				Action: query.Query,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
