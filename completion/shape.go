package completion

import "github.com/tidwall/gjson"

// Shape is one known layout of a completion response that may carry the generated text.
type Shape interface {
	Text() (string, bool)
}

// DirectText is the aggregated output_text the provider exposes directly.
type DirectText struct {
	Value string
}

func (d DirectText) Text() (string, bool) {
	return d.Value, d.Value != ""
}

// NestedOutput is the raw output[].content[].text layout; the first non-empty segment wins.
type NestedOutput struct {
	Raw gjson.Result
}

func (n NestedOutput) Text() (string, bool) {
	var text string
	n.Raw.Get("output").ForEach(func(_, item gjson.Result) bool {
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			text = part.Get("text").String()
			return text == ""
		})
		return text == ""
	})
	return text, text != ""
}

// ExtractText returns the text of the first shape that has any, or "" if none do.
func ExtractText(shapes ...Shape) string {
	for _, s := range shapes {
		if text, ok := s.Text(); ok {
			return text
		}
	}
	return ""
}
