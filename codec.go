package unhtml

import (
	"reflect"
	"slices"
	"strconv"
)

var (
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	rootType        = reflect.TypeFor[Root]()
)

// codec decodes values of one Go type from a scope.
type codec interface {
	// extract resolves v from scope using src. v is addressable and is
	// only written on success.
	extract(scope Scope, src Source, v reflect.Value) error
}

// textual reports whether c can decode from inner text or an attribute.
func textual(c codec) bool {
	switch c := c.(type) {
	case *textCodec:
		return true
	case *unmarshalerCodec:
		return c.text != nil
	case *optionCodec:
		return textual(c.elem)
	case *listCodec:
		return textual(c.elem)
	}
	return false
}

// compiler builds codecs for Go types, compiling every selector and
// default literal up front so that schema errors surface before any
// document is processed.
type compiler struct {
	parser  Parser
	structs map[reflect.Type]*structCodec
}

func newCompiler(p Parser) *compiler {
	return &compiler{
		parser:  p,
		structs: make(map[reflect.Type]*structCodec),
	}
}

func (c *compiler) compile(t reflect.Type) (codec, error) {
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(unmarshalerType) {
		uc := &unmarshalerCodec{typ: t}
		if parse := textParser(t); parse != nil {
			uc.text = &textCodec{typ: t, parse: parse}
		}
		return uc, nil
	}
	if parse := textParser(t); parse != nil {
		return &textCodec{typ: t, parse: parse}, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := c.compileElem(t)
		if err != nil {
			return nil, err
		}
		return &optionCodec{typ: t, elem: elem}, nil
	case reflect.Slice:
		elem, err := c.compileElem(t)
		if err != nil {
			return nil, err
		}
		return &listCodec{typ: t, elem: elem}, nil
	case reflect.Struct:
		return c.compileStruct(t)
	}
	return nil, Errorf(EINVALID, "unsupported type %s", t)
}

// compileElem compiles the element type of an option or list, which may
// not itself be an option or list.
func (c *compiler) compileElem(t reflect.Type) (codec, error) {
	elem, err := c.compile(t.Elem())
	if err != nil {
		return nil, err
	}
	switch elem.(type) {
	case *optionCodec, *listCodec:
		return nil, Errorf(EINVALID, "unsupported nested type %s", t)
	}
	return elem, nil
}

func (c *compiler) compileStruct(t reflect.Type) (codec, error) {
	if sc, ok := c.structs[t]; ok {
		return sc, nil
	}
	if c.parser == nil {
		return nil, Errorf(EINVALID, "struct type %s requires a Decoder", t)
	}

	// Registered before the fields so recursive types terminate.
	sc := &structCodec{typ: t}
	c.structs[t] = sc

	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Type == rootType {
			if sc.selector != nil {
				return nil, Errorf(EINVALID, "%s declares more than one struct selector", t)
			}
			sel, err := c.selector(sf.Tag.Get(TagSelector))
			if err != nil {
				return nil, err
			}
			sc.selector = sel
			continue
		}
		field, ok := ParseField(sf)
		if !ok {
			continue
		}
		fc, err := c.compileField(sf, field)
		if err != nil {
			return nil, fieldError(field.Name, err)
		}
		sc.fields = append(sc.fields, fc)
	}
	return sc, nil
}

func (c *compiler) compileField(sf reflect.StructField, field Field) (*fieldCodec, error) {
	sel, err := c.selector(field.Selector)
	if err != nil {
		return nil, err
	}
	fc, err := c.compile(sf.Type)
	if err != nil {
		return nil, err
	}
	if field.Source.Kind != SourceHTML && !textual(fc) {
		return nil, Errorf(EINVALID, "%s cannot be read from %s", sf.Type, field.Source)
	}
	if _, ok := fc.(*listCodec); ok && sel == nil {
		return nil, Errorf(EINVALID, "list of %s requires a selector", sf.Type.Elem())
	}

	f := &fieldCodec{
		name:     field.Name,
		index:    sf.Index,
		typ:      sf.Type,
		selector: sel,
		source:   field.Source,
		codec:    fc,
	}
	if field.Default != nil {
		lit := *field.Default
		f.def = func() (reflect.Value, error) {
			return c.literal(sf.Type, fc, lit)
		}
		// Parsed once here to reject bad literals at schema time.
		if _, err := f.def(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (c *compiler) selector(css string) (Selector, error) {
	if css == "" {
		return nil, nil
	}
	return c.parser.Compile(css)
}

// literal builds a default value of type t from lit. Text types use their
// own parser; structured types read lit as an HTML document.
func (c *compiler) literal(t reflect.Type, fc codec, lit string) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	if lit == "" {
		return v, nil
	}
	switch fc := fc.(type) {
	case *textCodec:
		return v, fc.parseText(lit, v)
	case *unmarshalerCodec:
		if fc.text != nil {
			return v, fc.text.parseText(lit, v)
		}
	case *optionCodec:
		elem, err := c.literal(t.Elem(), fc.elem, lit)
		if err != nil {
			return v, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(elem)
		v.Set(p)
		return v, nil
	case *listCodec:
		return v, Errorf(EINVALID, "list default must be empty")
	}
	root, err := c.parser.Parse(lit)
	if err != nil {
		return v, err
	}
	return v, fc.extract(ScopeOf(root), Source{Kind: SourceHTML}, v)
}

// structCodec resolves each field of a struct in declaration order and
// stops at the first field that fails without a default.
type structCodec struct {
	typ      reflect.Type
	selector Selector
	fields   []*fieldCodec
}

type fieldCodec struct {
	name     string
	index    []int
	typ      reflect.Type
	selector Selector
	source   Source
	codec    codec
	def      func() (reflect.Value, error)
}

func (c *structCodec) extract(scope Scope, src Source, v reflect.Value) error {
	if src.Kind != SourceHTML {
		return Errorf(EINVALID, "%s cannot be read from %s", c.typ, src)
	}
	elems := slices.Collect(Narrow(scope, c.selector))

	out := reflect.New(c.typ).Elem()
	for _, f := range c.fields {
		fv, err := f.resolve(ScopeOf(elems...))
		if err != nil {
			return fieldError(f.name, err)
		}
		out.FieldByIndex(f.index).Set(fv)
	}
	v.Set(out)
	return nil
}

func (f *fieldCodec) resolve(scope Scope) (reflect.Value, error) {
	v := reflect.New(f.typ).Elem()
	err := f.codec.extract(Narrow(scope, f.selector), f.source, v)
	if err == nil {
		return v, nil
	}
	if f.def == nil {
		return v, err
	}
	return f.def()
}

// unmarshalerCodec delegates whole-scope decoding to the type's
// UnmarshalHTML method and text decoding to its text parser, if any.
type unmarshalerCodec struct {
	typ  reflect.Type
	text *textCodec
}

func (c *unmarshalerCodec) extract(scope Scope, src Source, v reflect.Value) error {
	if src.Kind != SourceHTML {
		if c.text == nil {
			return Errorf(EINVALID, "%s cannot be read from %s", c.typ, src)
		}
		return c.text.extract(scope, src, v)
	}
	out := reflect.New(c.typ)
	if err := out.Interface().(Unmarshaler).UnmarshalHTML(scope); err != nil {
		return err
	}
	v.Set(out.Elem())
	return nil
}

// optionCodec lifts a codec to a pointer that is nil whenever the
// wrapped extraction fails. It never returns an error.
type optionCodec struct {
	typ  reflect.Type
	elem codec
}

func (c *optionCodec) extract(scope Scope, src Source, v reflect.Value) error {
	p := reflect.New(c.typ.Elem())
	if err := c.elem.extract(scope, src, p.Elem()); err != nil {
		v.SetZero()
		return nil
	}
	v.Set(p)
	return nil
}

// listCodec lifts a codec to a slice holding one value per element of
// the scope. The first failing element aborts the whole list.
type listCodec struct {
	typ  reflect.Type
	elem codec
}

func (c *listCodec) extract(scope Scope, src Source, v reflect.Value) error {
	out := reflect.MakeSlice(c.typ, 0, 0)
	i := 0
	for e := range scope {
		ev := reflect.New(c.typ.Elem()).Elem()
		if err := c.elem.extract(ScopeOf(e), src, ev); err != nil {
			return fieldError("["+strconv.Itoa(i)+"]", err)
		}
		out = reflect.Append(out, ev)
		i++
	}
	v.Set(out)
	return nil
}
