// Package goquery implements unhtml.Parser on top of goquery, cascadia and
// golang.org/x/net/html.
package goquery

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/unhtml"
	"golang.org/x/net/html"
)

// Ensure Parser implements unhtml.Parser at compile time.
var _ unhtml.Parser = (*Parser)(nil)

// Parser parses documents with goquery and compiles selectors with cascadia.
//
// Every input is parsed as a full HTML document, so fragments are wrapped
// in implicit html, head and body elements. The root element is <html>;
// selectors match its descendants, which makes a bare fragment such as
// `<a>1</a>` addressable with the selector "a".
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses html and returns the <html> element.
func (p *Parser) Parse(s string) (unhtml.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, unhtml.Errorf(unhtml.EINVALID, "failed to parse HTML: %v", err)
	}
	root := doc.Children().First()
	if root.Length() == 0 {
		return nil, unhtml.Errorf(unhtml.EINTERNAL, "document has no root element")
	}
	return &Element{sel: root}, nil
}

// Compile compiles a CSS selector or selector group.
func (p *Parser) Compile(css string) (unhtml.Selector, error) {
	m, err := cascadia.Compile(css)
	if err != nil {
		return nil, &unhtml.SelectorError{Selector: css, Err: err}
	}
	return &Selector{css: css, matcher: m}, nil
}

// Ensure Element implements unhtml.Element at compile time.
var _ unhtml.Element = (*Element)(nil)

// Element wraps a goquery selection holding exactly one element node.
type Element struct {
	sel *goquery.Selection
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Text yields the element's descendant text nodes in document order.
func (e *Element) Text() iter.Seq[string] {
	return func(yield func(string) bool) {
		walkText(e.sel.Get(0), yield)
	}
}

func walkText(n *html.Node, yield func(string) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if !yield(c.Data) {
				return false
			}
		case html.ElementNode:
			if !walkText(c, yield) {
				return false
			}
		}
	}
	return true
}

// HTML returns the outer HTML of the element.
func (e *Element) HTML() (string, error) {
	return goquery.OuterHtml(e.sel)
}

// Ensure Selector implements unhtml.Selector at compile time.
var _ unhtml.Selector = (*Selector)(nil)

// Selector is a compiled cascadia selector.
type Selector struct {
	css     string
	matcher goquery.Matcher
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.css
}

// Select yields the descendants of el matching the selector.
// Elements from other parsers never match.
func (s *Selector) Select(el unhtml.Element) iter.Seq[unhtml.Element] {
	return func(yield func(unhtml.Element) bool) {
		e, ok := el.(*Element)
		if !ok {
			return
		}
		e.sel.FindMatcher(s.matcher).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			return yield(&Element{sel: m})
		})
	}
}

// Unmarshal parses html with a default Parser and stores the result in
// the value pointed to by v.
func Unmarshal(s string, v any) error {
	return unhtml.Unmarshal(NewParser(), s, v)
}

// NewDecoder compiles the schema of T against a default Parser.
func NewDecoder[T any]() (*unhtml.Decoder[T], error) {
	return unhtml.NewDecoder[T](NewParser())
}

// MustDecoder is like NewDecoder but panics if the schema of T is invalid.
func MustDecoder[T any]() *unhtml.Decoder[T] {
	return unhtml.MustDecoder[T](NewParser())
}
