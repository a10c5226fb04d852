package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/urfave/cli/v2"

	"legal-search/manifest"
)

func Extract(ctx *cli.Context) error {
	dataDirectory := ctx.String("data-dir")
	manifestData, err := manifest.Load(dataDirectory)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	for guid, document := range manifestData.Documents {
		if len(document.Pages) > 0 {
			fmt.Printf("text already extracted for %s (%s), skipping\n", guid, document.Title)
			continue
		}

		pages, err := Pages(filepath.Join(dataDirectory, document.Filename))
		if err != nil {
			return fmt.Errorf("failed to extract text from %s: %w", document.Filename, err)
		}
		fmt.Printf("extracted %d pages from %s (%s)\n", len(pages), guid, document.Title)

		document.Pages = pages
		manifestData.Documents[guid] = document
	}

	err = manifest.Update(dataDirectory, manifestData)
	if err != nil {
		return fmt.Errorf("failed to update manifest with extracted text: %w", err)
	}

	return nil
}

// Pages returns the plain text of every page in order. Pages without content yield "" so that
// page numbers stay aligned with the slice index.
func Pages(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, reader.NumPage())
	for i := range pages {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i+1, err)
		}
		pages[i] = strings.TrimSpace(text)
	}

	return pages, nil
}
