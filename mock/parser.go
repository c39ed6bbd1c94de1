package mock

import (
	"iter"

	"github.com/fwojciec/unhtml"
)

var _ unhtml.Parser = (*Parser)(nil)

// Parser is a mock implementation of unhtml.Parser.
type Parser struct {
	ParseFn   func(html string) (unhtml.Element, error)
	CompileFn func(css string) (unhtml.Selector, error)
}

func (p *Parser) Parse(html string) (unhtml.Element, error) {
	return p.ParseFn(html)
}

func (p *Parser) Compile(css string) (unhtml.Selector, error) {
	return p.CompileFn(css)
}

var _ unhtml.Element = (*Element)(nil)

// Element is a mock implementation of unhtml.Element.
type Element struct {
	AttrFn func(name string) (string, bool)
	TextFn func() iter.Seq[string]
	HTMLFn func() (string, error)
}

func (e *Element) Attr(name string) (string, bool) {
	return e.AttrFn(name)
}

func (e *Element) Text() iter.Seq[string] {
	return e.TextFn()
}

func (e *Element) HTML() (string, error) {
	return e.HTMLFn()
}

var _ unhtml.Selector = (*Selector)(nil)

// Selector is a mock implementation of unhtml.Selector.
type Selector struct {
	StringFn func() string
	SelectFn func(e unhtml.Element) iter.Seq[unhtml.Element]
}

func (s *Selector) String() string {
	return s.StringFn()
}

func (s *Selector) Select(e unhtml.Element) iter.Seq[unhtml.Element] {
	return s.SelectFn(e)
}
