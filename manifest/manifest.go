package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const manifestName = "manifest.json"

// DocumentData describes one downloaded legal document. Pages holds the extracted text of each
// page, page 1 first, and stays empty until the extract step has run.
type DocumentData struct {
	Title       string
	Description string
	Link        string
	Filename    string
	GUID        string
	Published   string
	DocType     string
	Pages       []string
}

type Downloads struct {
	LastUpdated string
	Documents   map[string]DocumentData
}

func Load(dataDirectory string) (*Downloads, error) {
	var manifest Downloads
	manifestBytes, err := os.ReadFile(filepath.Join(dataDirectory, manifestName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unexpected error reading download manifest: %w", err)
	}

	if errors.Is(err, os.ErrNotExist) {
		// If the manifest doesn't exist, create it in place
		manifest.Documents = make(map[string]DocumentData)
	} else {
		err = json.Unmarshal(manifestBytes, &manifest)
		if err != nil {
			return nil, fmt.Errorf("unexpected error parsing download manifest: %w", err)
		}
		if manifest.Documents == nil {
			manifest.Documents = make(map[string]DocumentData)
		}
	}

	return &manifest, nil
}

func Update(dataDirectory string, manifest *Downloads) error {
	manifestBytes, err := json.MarshalIndent(manifest, "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest for updating: %w", err)
	}
	if err := os.MkdirAll(dataDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	err = os.WriteFile(filepath.Join(dataDirectory, manifestName), manifestBytes, 0644)
	if err != nil {
		return fmt.Errorf("failed to write updated manifest: %w", err)
	}

	return nil
}

// EmbeddingsPath is where the embed step stores the vectors for a document.
func EmbeddingsPath(dataDirectory, guid string) string {
	return filepath.Join(dataDirectory, fmt.Sprintf("%s.embeddings.json", guid))
}
