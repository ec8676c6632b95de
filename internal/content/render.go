package content

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// renderHTML converts generated text to the HTML stored for full_html records.
func renderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
