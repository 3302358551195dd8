// Package markdown renders the lightweight markup editors use in preview
// and category descriptions.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// Render converts markdown text to HTML. Output is deterministic for a
// given input. Returns an empty string for empty input.
func Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		// Conversion failures only occur on writer errors, which a
		// bytes.Buffer cannot produce. Fall back to the raw text.
		return text
	}
	return buf.String()
}
