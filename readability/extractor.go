// Package readability reduces documents to their main content with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/unhtml"
	"github.com/go-shiori/go-readability"
)

// Extractor wraps go-readability to extract main content from HTML.
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

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", err
	}
	return unhtml.Document(article.Title, article.Content), nil
}
