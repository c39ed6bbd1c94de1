package unhtml

import (
	"reflect"
	"strconv"
	"sync"
)

// ExtractFunc produces a T from a scope.
type ExtractFunc[T any] func(scope Scope) (T, error)

// ExtractText builds a T from the inner text of the first element of
// scope: every descendant text node, trimmed, concatenated in document
// order.
func ExtractText[T any](scope Scope) (T, error) {
	return extract[T](scope, Source{Kind: SourceText})
}

// ExtractAttr builds a T from the trimmed value of the named attribute
// of the first element of scope.
func ExtractAttr[T any](scope Scope, name string) (T, error) {
	return extract[T](scope, Source{Kind: SourceAttr, Attr: name})
}

// ExtractHTML builds a T from the serialized HTML of the first element
// of scope, tags included.
func ExtractHTML[T any](scope Scope) (T, error) {
	return extract[T](scope, Source{Kind: SourceHTML})
}

// ParseText parses text with the parser of T.
func ParseText[T any](text string) (T, error) {
	var v T
	t := reflect.TypeFor[T]()
	parse := textParser(t)
	if parse == nil {
		return v, Errorf(EINVALID, "%s cannot be read from text", t)
	}
	c := &textCodec{typ: t, parse: parse}
	if err := c.parseText(text, reflect.ValueOf(&v).Elem()); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func extract[T any](scope Scope, src Source) (T, error) {
	var v T
	t := reflect.TypeFor[T]()
	c, err := leafCodec(t)
	if err != nil {
		return v, err
	}
	if src.Kind != SourceHTML && !textual(c) {
		return v, Errorf(EINVALID, "%s cannot be read from %s", t, src)
	}
	if err := c.extract(scope, src, reflect.ValueOf(&v).Elem()); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// leafCodecs caches the codecs of types read without a Decoder, keyed by
// reflect.Type. Codecs are immutable once compiled.
var leafCodecs sync.Map

func leafCodec(t reflect.Type) (codec, error) {
	if c, ok := leafCodecs.Load(t); ok {
		return c.(codec), nil
	}
	c, err := newCompiler(nil).compile(t)
	if err != nil {
		return nil, err
	}
	actual, _ := leafCodecs.LoadOrStore(t, c)
	return actual.(codec), nil
}

// Text returns an ExtractFunc reading inner text.
func Text[T any]() ExtractFunc[T] {
	return ExtractText[T]
}

// Attr returns an ExtractFunc reading the named attribute.
func Attr[T any](name string) ExtractFunc[T] {
	return func(scope Scope) (T, error) {
		return ExtractAttr[T](scope, name)
	}
}

// HTML returns an ExtractFunc reading the serialized element.
func HTML[T any]() ExtractFunc[T] {
	return ExtractHTML[T]
}

// Within narrows the scope by sel before calling fn.
func Within[T any](sel Selector, fn ExtractFunc[T]) ExtractFunc[T] {
	return func(scope Scope) (T, error) {
		return fn(Narrow(scope, sel))
	}
}

// Optional lifts fn to a pointer result. Any error from fn becomes a nil
// pointer; the returned function never fails.
func Optional[T any](fn ExtractFunc[T]) ExtractFunc[*T] {
	return func(scope Scope) (*T, error) {
		v, err := fn(scope)
		if err != nil {
			return nil, nil
		}
		return &v, nil
	}
}

// Each lifts fn to a slice result by running it against a single-element
// scope for every element of scope, in order. The first failure aborts
// the whole list. An empty scope yields an empty slice.
func Each[T any](fn ExtractFunc[T]) ExtractFunc[[]T] {
	return func(scope Scope) ([]T, error) {
		out := []T{}
		for e := range scope {
			v, err := fn(ScopeOf(e))
			if err != nil {
				return nil, fieldError("["+strconv.Itoa(len(out))+"]", err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// WithDefault substitutes def whenever fn fails.
func WithDefault[T any](fn ExtractFunc[T], def T) ExtractFunc[T] {
	return func(scope Scope) (T, error) {
		v, err := fn(scope)
		if err != nil {
			return def, nil
		}
		return v, nil
	}
}
