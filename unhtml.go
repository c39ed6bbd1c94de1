// Package unhtml deserializes HTML documents into typed Go values.
//
// Each field declares a CSS selector that narrows the current search scope
// and a source (inner text, a named attribute or the whole element) that
// supplies the text handed to the field type's own parser. Pointers lift a
// field to an optional value and slices lift it to one value per matched
// element.
//
// This package contains the domain types, interfaces and the field
// resolution core. The HTML parser and selector engine are supplied through
// the Parser interface; the goquery/ package implements it.
package unhtml

import (
	"html"
	"iter"
	"slices"
	"strings"
)

// Element is a read-only handle to one element of a parsed document.
type Element interface {
	// Attr returns the value of the named attribute.
	Attr(name string) (string, bool)

	// Text yields the element's descendant text nodes in document order.
	Text() iter.Seq[string]

	// HTML serializes the element together with its whole subtree.
	HTML() (string, error)
}

// Selector is a compiled CSS selector.
type Selector interface {
	// String returns the source text of the selector.
	String() string

	// Select yields the descendants of e that match the selector,
	// in document order.
	Select(e Element) iter.Seq[Element]
}

// Parser turns HTML text into a document tree and compiles selectors
// that can be matched against it.
type Parser interface {
	// Parse parses html and returns the root element of the document.
	Parse(html string) (Element, error)

	// Compile compiles a CSS selector.
	// Returns a *SelectorError if css is malformed.
	Compile(css string) (Selector, error)
}

// Scope is the ordered sequence of elements under consideration for the
// next selection or extraction step.
type Scope = iter.Seq[Element]

// ScopeOf returns a scope yielding the given elements in order.
func ScopeOf(elems ...Element) Scope {
	return slices.Values(elems)
}

// First returns the first element of scope.
// Returns ErrSourceEmpty if the scope yields nothing.
func First(scope Scope) (Element, error) {
	for e := range scope {
		return e, nil
	}
	return nil, ErrSourceEmpty
}

// Narrow applies sel to every element of scope and concatenates the
// matches, members in scope order and matches in document order per
// member. Matches shared by several members are yielded once per member.
// A nil selector returns scope unchanged.
func Narrow(scope Scope, sel Selector) Scope {
	if sel == nil {
		return scope
	}
	return func(yield func(Element) bool) {
		for e := range scope {
			for m := range sel.Select(e) {
				if !yield(m) {
					return
				}
			}
		}
	}
}

// Root is a marker type for declaring a struct-level selector.
// A field of type Root with an html tag narrows the scope of the whole
// struct before its fields are resolved:
//
//	type Link struct {
//		_    unhtml.Root `html:"a"`
//		Href string      `attr:"href"`
//		Text string      `attr:"inner"`
//	}
type Root struct{}

// Unmarshaler is implemented by types that construct themselves from an
// entire scope of elements.
type Unmarshaler interface {
	UnmarshalHTML(scope Scope) error
}

// Document returns a minimal HTML document with the given title and body
// markup. The title is escaped; body is inserted as is.
func Document(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title></head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}
