// Package trafilatura reduces documents to their main content with
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/unhtml"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns a document holding only the page title and the main
// content of rawHTML.
func (e *Extractor) Extract(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", unhtml.Errorf(unhtml.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		return "", err
	}

	var content string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return "", err
		}
		content = buf.String()
	}
	return unhtml.Document(result.Metadata.Title, content), nil
}
