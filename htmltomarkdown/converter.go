// Package htmltomarkdown renders selected HTML as Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/unhtml"
)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter with CommonMark and table support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", unhtml.Errorf(unhtml.EINVALID, "empty HTML input")
	}
	return c.conv.ConvertString(html)
}

var defaultConverter = NewConverter()

// Ensure Markdown implements unhtml.Unmarshaler at compile time.
var _ unhtml.Unmarshaler = (*Markdown)(nil)

// Markdown is an element rendered as Markdown. Decoded from a whole
// element it converts the element's outer HTML; decoded from text or an
// attribute it holds that text unchanged.
type Markdown string

// UnmarshalHTML converts the first element of scope.
func (m *Markdown) UnmarshalHTML(scope unhtml.Scope) error {
	e, err := unhtml.First(scope)
	if err != nil {
		return err
	}
	html, err := e.HTML()
	if err != nil {
		return err
	}
	md, err := defaultConverter.Convert(html)
	if err != nil {
		return err
	}
	*m = Markdown(md)
	return nil
}
