package unhtml

import (
	"reflect"
	"strings"
)

// InnerText is the attr tag value that selects an element's inner text.
const InnerText = "inner"

// Struct tag keys.
const (
	TagSelector = "html"
	TagAttr     = "attr"
	TagDefault  = "default"
)

// SourceKind identifies where the text for a value comes from.
type SourceKind int

// SourceKind constants.
const (
	// SourceHTML serializes the whole element, tags included.
	SourceHTML SourceKind = iota

	// SourceText concatenates the element's trimmed text nodes.
	SourceText

	// SourceAttr reads a named attribute.
	SourceAttr
)

// Source is the attribute strategy of a field.
type Source struct {
	Kind SourceKind
	Attr string
}

// ParseSource interprets an attr annotation. An empty annotation selects
// the whole element, InnerText selects the inner text and anything else
// names an attribute.
func ParseSource(attr string) Source {
	switch attr {
	case "":
		return Source{Kind: SourceHTML}
	case InnerText:
		return Source{Kind: SourceText}
	}
	return Source{Kind: SourceAttr, Attr: attr}
}

func (s Source) String() string {
	switch s.Kind {
	case SourceText:
		return InnerText
	case SourceAttr:
		return "attr " + s.Attr
	}
	return "html"
}

// Field is the declarative configuration of a single struct field.
type Field struct {
	Name     string
	Selector string
	Source   Source

	// Default is nil when no default is configured. An empty literal
	// stands for the zero value.
	Default *string
}

// ParseField reads the configuration of a struct field from its tags.
// Returns false if the field does not take part in deserialization.
func ParseField(sf reflect.StructField) (Field, bool) {
	if !sf.IsExported() {
		return Field{}, false
	}
	sel := sf.Tag.Get(TagSelector)
	if sel == "-" {
		return Field{}, false
	}
	f := Field{
		Name:     fieldName(sf),
		Selector: sel,
		Source:   ParseSource(sf.Tag.Get(TagAttr)),
	}
	if def, ok := sf.Tag.Lookup(TagDefault); ok {
		f.Default = &def
	}
	return f, true
}

// fieldName is the name reported in error paths. A json tag name wins
// over the Go field name.
func fieldName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}
