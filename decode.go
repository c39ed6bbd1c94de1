package unhtml

import (
	"reflect"
)

// Decoder deserializes documents into values of type T.
// Selectors and default literals are compiled once by NewDecoder and
// reused by every call. A Decoder is safe for concurrent use as long as
// the Parser is.
type Decoder[T any] struct {
	parser Parser
	codec  codec
}

// NewDecoder compiles the schema of T.
// Returns a *SelectorError for malformed selectors and EINVALID for
// unsupported types or tag combinations.
func NewDecoder[T any](p Parser) (*Decoder[T], error) {
	c, err := newCompiler(p).compile(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return &Decoder[T]{parser: p, codec: c}, nil
}

// MustDecoder is like NewDecoder but panics if the schema of T is invalid.
func MustDecoder[T any](p Parser) *Decoder[T] {
	d, err := NewDecoder[T](p)
	if err != nil {
		panic(err)
	}
	return d
}

// Decode parses html and deserializes the document's root element.
func (d *Decoder[T]) Decode(html string) (T, error) {
	root, err := d.parser.Parse(html)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.DecodeScope(ScopeOf(root))
}

// DecodeScope deserializes a T from an existing scope.
func (d *Decoder[T]) DecodeScope(scope Scope) (T, error) {
	var v T
	if err := d.codec.extract(scope, Source{Kind: SourceHTML}, reflect.ValueOf(&v).Elem()); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// DecodeAll parses html and deserializes one T from every element
// matching css. No match yields an empty slice.
func (d *Decoder[T]) DecodeAll(html, css string) ([]T, error) {
	sel, err := d.parser.Compile(css)
	if err != nil {
		return nil, err
	}
	root, err := d.parser.Parse(html)
	if err != nil {
		return nil, err
	}
	return Each(d.DecodeScope)(Narrow(ScopeOf(root), sel))
}

// Unmarshal parses html and stores the result in the value pointed to by
// v. The schema of v is compiled on every call; use a Decoder to compile
// it once. v is left untouched on error.
func Unmarshal(p Parser, html string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Errorf(EINVALID, "unmarshal target must be a non-nil pointer, got %T", v)
	}
	c, err := newCompiler(p).compile(rv.Type().Elem())
	if err != nil {
		return err
	}
	root, err := p.Parse(html)
	if err != nil {
		return err
	}
	out := reflect.New(rv.Type().Elem()).Elem()
	if err := c.extract(ScopeOf(root), Source{Kind: SourceHTML}, out); err != nil {
		return err
	}
	rv.Elem().Set(out)
	return nil
}
