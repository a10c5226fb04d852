package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/urfave/cli/v2"

	"legal-search/manifest"
)

const DefaultDelay = 2 * time.Second

func Download(ctx *cli.Context) error {
	dataDirectory := ctx.String("data-dir")
	feedURL := ctx.String("feed")

	// Load our data manifest if it exists, if it doesn't we'll create a new one
	manifestData, err := manifest.Load(dataDirectory)
	if err != nil {
		return fmt.Errorf("unexpected error reading download manifest: %w", err)
	}
	if err := os.MkdirAll(dataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx.Context)
	if err != nil {
		return fmt.Errorf("failed to process feed from %s: %w", feedURL, err)
	}

	manifestData.LastUpdated = feed.Updated

	maxDocuments := ctx.Int("max")
	processed := 0
	for _, item := range feed.Items {
		if processed >= maxDocuments {
			break
		}
		guid := documentGUID(item)
		if _, exists := manifestData.Documents[guid]; exists {
			fmt.Printf("skipping existing item %s\n", guid)
			continue
		}

		pdfURL := pdfLink(item)
		if pdfURL == "" {
			fmt.Printf("skipping item %s (%s): no pdf link\n", guid, item.Title)
			continue
		}
		processed++

		filename := fmt.Sprintf("%s.pdf", guid)
		fmt.Printf("Downloading %s...\n", pdfURL)
		if err := fetch(ctx.Context, pdfURL, filepath.Join(dataDirectory, filename)); err != nil {
			return err
		}

		manifestData.Documents[guid] = manifest.DocumentData{
			Title:       item.Title,
			Description: item.Description,
			Link:        pdfURL,
			Filename:    filename,
			GUID:        guid,
			Published:   published(item),
			DocType:     ctx.String("doc-type"),
		}

		// Be nice to the publisher
		time.Sleep(ctx.Duration("delay"))
	}

	err = manifest.Update(dataDirectory, manifestData)
	if err != nil {
		return fmt.Errorf("failed to write updated manifest: %w", err)
	}

	return nil
}

func fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download document %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected http status %d while downloading file: %s", resp.StatusCode, string(bodyBytes))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write file locally: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return fmt.Errorf("downloaded file was not the expected length: expected %d and got %d bytes", resp.ContentLength, written)
	}
	return nil
}

// pdfLink prefers a PDF enclosure and falls back to an item link that points at a PDF.
func pdfLink(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure.Type == "application/pdf" || strings.HasSuffix(strings.ToLower(enclosure.URL), ".pdf") {
			return enclosure.URL
		}
	}
	if strings.HasSuffix(strings.ToLower(item.Link), ".pdf") {
		return item.Link
	}
	return ""
}

func documentGUID(item *gofeed.Item) string {
	guid := item.GUID
	if guid == "" {
		guid = item.Link
	}
	return sanitize(guid)
}

// sanitize makes a guid safe to use as a file name.
func sanitize(guid string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, guid)
}

func published(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format(time.DateOnly)
	}
	return item.Published
}
