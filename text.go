package unhtml

import (
	"encoding"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	durationType        = reflect.TypeFor[time.Duration]()
	urlType             = reflect.TypeFor[url.URL]()
)

// textFunc parses text into v, which is addressable and of the codec's type.
type textFunc func(text string, v reflect.Value) error

// textParser returns the parser for types that can be built from text,
// or nil if t cannot be.
func textParser(t reflect.Type) textFunc {
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return func(text string, v reflect.Value) error {
			return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text))
		}
	}

	switch t {
	case durationType:
		return func(text string, v reflect.Value) error {
			d, err := time.ParseDuration(text)
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
	case urlType:
		return func(text string, v reflect.Value) error {
			u, err := url.Parse(text)
			if err != nil {
				return err
			}
			v.Set(reflect.ValueOf(*u))
			return nil
		}
	}

	switch t.Kind() {
	case reflect.String:
		return func(text string, v reflect.Value) error {
			v.SetString(text)
			return nil
		}
	case reflect.Bool:
		return func(text string, v reflect.Value) error {
			b, err := strconv.ParseBool(text)
			if err != nil {
				return err
			}
			v.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(text string, v reflect.Value) error {
			n, err := strconv.ParseInt(text, 10, t.Bits())
			if err != nil {
				return err
			}
			v.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(text string, v reflect.Value) error {
			n, err := strconv.ParseUint(text, 10, t.Bits())
			if err != nil {
				return err
			}
			v.SetUint(n)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		return func(text string, v reflect.Value) error {
			f, err := strconv.ParseFloat(text, t.Bits())
			if err != nil {
				return err
			}
			v.SetFloat(f)
			return nil
		}
	}
	return nil
}

// textCodec decodes types that are built from a single piece of text.
type textCodec struct {
	typ   reflect.Type
	parse textFunc
}

func (c *textCodec) extract(scope Scope, src Source, v reflect.Value) error {
	text, err := sourceText(scope, src)
	if err != nil {
		return err
	}
	return c.parseText(text, v)
}

func (c *textCodec) parseText(text string, v reflect.Value) error {
	if err := c.parse(text, v); err != nil {
		return &TextParseError{Text: text, Type: c.typ.String(), Err: err}
	}
	return nil
}

// sourceText returns the text src selects from the first element of scope.
func sourceText(scope Scope, src Source) (string, error) {
	e, err := First(scope)
	if err != nil {
		return "", err
	}
	switch src.Kind {
	case SourceText:
		return innerText(e), nil
	case SourceAttr:
		val, ok := e.Attr(src.Attr)
		if !ok {
			return "", &AttrNotFoundError{Attr: src.Attr, Element: snapshot(e)}
		}
		return strings.TrimSpace(val), nil
	}
	return e.HTML()
}

// innerText concatenates the element's text nodes, each trimmed, with no
// separator.
func innerText(e Element) string {
	var b strings.Builder
	for s := range e.Text() {
		b.WriteString(strings.TrimSpace(s))
	}
	return b.String()
}

// maxSnapshot bounds the element HTML quoted in error messages.
const maxSnapshot = 256

func snapshot(e Element) string {
	s, err := e.HTML()
	if err != nil {
		return "<unknown>"
	}
	if len(s) > maxSnapshot {
		return s[:maxSnapshot] + "..."
	}
	return s
}
