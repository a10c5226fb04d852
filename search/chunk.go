package search

import (
	"math"

	"github.com/tidwall/gjson"
)

// ChunkProperties are the only stored fields a query asks the vector store to return.
var ChunkProperties = []string{"text", "source_url", "title", "page", "date", "doc_type"}

// Chunk is a fragment of a legal document as stored in the vector store. Metadata fields are
// optional in the store, so absent values stay nil rather than collapsing to zero values.
type Chunk struct {
	Text      string  `json:"text"`
	SourceURL *string `json:"source_url,omitempty"`
	Title     *string `json:"title,omitempty"`
	Page      *int    `json:"page,omitempty"`
	Date      *string `json:"date,omitempty"`
	DocType   *string `json:"doc_type,omitempty"`
}

// Document is a chunk plus the vector it is indexed under.
type Document struct {
	Chunk
	Vectors []float32 `json:"vector_data"`
}

// Properties flattens the chunk into the property map written to the store, leaving out absent fields.
func (c Chunk) Properties() map[string]interface{} {
	props := map[string]interface{}{"text": c.Text}
	if c.SourceURL != nil {
		props["source_url"] = *c.SourceURL
	}
	if c.Title != nil {
		props["title"] = *c.Title
	}
	if c.Page != nil {
		props["page"] = *c.Page
	}
	if c.Date != nil {
		props["date"] = *c.Date
	}
	if c.DocType != nil {
		props["doc_type"] = *c.DocType
	}
	return props
}

func chunkFromJSON(r gjson.Result) Chunk {
	c := Chunk{
		Text:      r.Get("text").String(),
		SourceURL: optionalString(r.Get("source_url")),
		Title:     optionalString(r.Get("title")),
		Date:      optionalString(r.Get("date")),
		DocType:   optionalString(r.Get("doc_type")),
	}
	// Non-integral page values are dropped rather than coerced.
	if page := r.Get("page"); page.Type == gjson.Number && page.Num == math.Trunc(page.Num) {
		p := int(page.Num)
		c.Page = &p
	}
	return c
}

func optionalString(r gjson.Result) *string {
	if !present(r) {
		return nil
	}
	s := r.String()
	return &s
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
