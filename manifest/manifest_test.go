package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingManifest(t *testing.T) {
	m, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, m.Documents)
	assert.Empty(t, m.Documents)
}

func TestUpdateThenLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	m := &Downloads{
		LastUpdated: "Mon, 02 Jan 2026 10:00:00 +0530",
		Documents: map[string]DocumentData{
			"go-41": {
				Title:    "G.O. Ms. No. 41",
				Link:     "https://example.org/go41.pdf",
				Filename: "go-41.pdf",
				GUID:     "go-41",
				DocType:  "gov_order",
				Pages:    []string{"page one", "page two"},
			},
		},
	}
	require.NoError(t, Update(dir, m))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestName), []byte("{"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestEmbeddingsPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "abc.embeddings.json"), EmbeddingsPath("data", "abc"))
}
