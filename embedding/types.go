package embedding

import "legal-search/search"

// Storage is one embedded chunk as written to data/<guid>.embeddings.json by the embed command.
type Storage struct {
	ID         string
	GUID       string
	WindowSize int
	Model      string
	Vector     []float32
	Chunk      search.Chunk
}
