package unhtml

import (
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Schema describes a document layout at runtime, as an alternative to
// declaring Go struct types with tags.
type Schema struct {
	Selector string        `yaml:"selector"`
	Fields   []SchemaField `yaml:"fields"`
}

// SchemaField describes one field of a Schema. A field with nested Fields
// is an object; otherwise Type names a text type.
type SchemaField struct {
	Name     string        `yaml:"name"`
	Selector string        `yaml:"selector"`
	Attr     string        `yaml:"attr"`
	Default  *string       `yaml:"default"`
	Type     string        `yaml:"type"`
	Optional bool          `yaml:"optional"`
	List     bool          `yaml:"list"`
	Fields   []SchemaField `yaml:"fields"`
}

// Schema field types.
var schemaTypes = map[string]reflect.Type{
	"":         reflect.TypeFor[string](),
	"string":   reflect.TypeFor[string](),
	"int":      reflect.TypeFor[int64](),
	"uint":     reflect.TypeFor[uint64](),
	"float":    reflect.TypeFor[float64](),
	"bool":     reflect.TypeFor[bool](),
	"ip":       reflect.TypeFor[netip.Addr](),
	"addrport": reflect.TypeFor[netip.AddrPort](),
	"time":     reflect.TypeFor[time.Time](),
	"duration": reflect.TypeFor[time.Duration](),
}

// ParseSchema reads a YAML schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, Errorf(EINVALID, "invalid schema: %v", err)
	}
	return &s, nil
}

// Type builds the struct type the schema describes. Fields carry the same
// tags a hand-written struct would, plus json tags with the schema names.
func (s *Schema) Type() (reflect.Type, error) {
	return structType(s.Selector, s.Fields)
}

func structType(selector string, fields []SchemaField) (reflect.Type, error) {
	var sfs []reflect.StructField
	if selector != "" {
		sfs = append(sfs, reflect.StructField{
			Name: "Root",
			Type: rootType,
			Tag:  tag(TagSelector, selector) + ` json:"-"`,
		})
	}

	seen := make(map[string]bool)
	for i, f := range fields {
		if f.Name == "" {
			return nil, Errorf(EINVALID, "schema field %d has no name", i)
		}
		if seen[f.Name] {
			return nil, Errorf(EINVALID, "duplicate schema field %q", f.Name)
		}
		seen[f.Name] = true

		t, err := f.fieldType()
		if err != nil {
			return nil, err
		}

		tags := []string{string(tag("json", f.Name))}
		if f.Selector != "" {
			tags = append(tags, string(tag(TagSelector, f.Selector)))
		}
		if f.Attr != "" {
			tags = append(tags, string(tag(TagAttr, f.Attr)))
		}
		if f.Default != nil {
			tags = append(tags, string(tag(TagDefault, *f.Default)))
		}
		sfs = append(sfs, reflect.StructField{
			Name: "F" + strconv.Itoa(i),
			Type: t,
			Tag:  reflect.StructTag(strings.Join(tags, " ")),
		})
	}
	return reflect.StructOf(sfs), nil
}

func (f SchemaField) fieldType() (reflect.Type, error) {
	var t reflect.Type
	if len(f.Fields) > 0 {
		st, err := structType("", f.Fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		t = st
	} else {
		var ok bool
		if t, ok = schemaTypes[f.Type]; !ok {
			return nil, Errorf(EINVALID, "schema field %q has unknown type %q", f.Name, f.Type)
		}
	}

	switch {
	case f.List && f.Optional:
		return nil, Errorf(EINVALID, "schema field %q cannot be both list and optional", f.Name)
	case f.List:
		return reflect.SliceOf(t), nil
	case f.Optional:
		return reflect.PointerTo(t), nil
	}
	return t, nil
}

func tag(key, value string) reflect.StructTag {
	return reflect.StructTag(key + ":" + strconv.Quote(value))
}

// SchemaDecoder deserializes documents according to a Schema.
type SchemaDecoder struct {
	parser Parser
	typ    reflect.Type
	codec  codec
}

// NewSchemaDecoder compiles s.
func NewSchemaDecoder(p Parser, s *Schema) (*SchemaDecoder, error) {
	t, err := s.Type()
	if err != nil {
		return nil, err
	}
	c, err := newCompiler(p).compile(t)
	if err != nil {
		return nil, err
	}
	return &SchemaDecoder{parser: p, typ: t, codec: c}, nil
}

// Decode parses html and returns a pointer to a value of the schema's
// struct type. The value marshals to JSON with the schema's field names.
func (d *SchemaDecoder) Decode(html string) (any, error) {
	root, err := d.parser.Parse(html)
	if err != nil {
		return nil, err
	}
	v := reflect.New(d.typ)
	if err := d.codec.extract(ScopeOf(root), Source{Kind: SourceHTML}, v.Elem()); err != nil {
		return nil, err
	}
	return v.Interface(), nil
}
