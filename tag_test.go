package unhtml_test

import (
	"reflect"
	"testing"

	"github.com/fwojciec/unhtml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	assert.Equal(t, unhtml.Source{Kind: unhtml.SourceHTML}, unhtml.ParseSource(""))
	assert.Equal(t, unhtml.Source{Kind: unhtml.SourceText}, unhtml.ParseSource("inner"))
	assert.Equal(t, unhtml.Source{Kind: unhtml.SourceAttr, Attr: "href"}, unhtml.ParseSource("href"))
}

func TestParseField(t *testing.T) {
	t.Parallel()

	type sample struct {
		Href    string `html:"a" attr:"href" default:""`
		Text    string `html:"a" attr:"inner"`
		Source  string
		Age     uint8  `default:"10"`
		Skipped string `html:"-"`
		Named   string `json:"named_field"`
		private string
	}
	typ := reflect.TypeFor[sample]()

	field := func(name string) (unhtml.Field, bool) {
		sf, ok := typ.FieldByName(name)
		require.True(t, ok)
		return unhtml.ParseField(sf)
	}

	t.Run("selector attribute and empty default", func(t *testing.T) {
		t.Parallel()

		f, ok := field("Href")
		require.True(t, ok)
		assert.Equal(t, "a", f.Selector)
		assert.Equal(t, unhtml.Source{Kind: unhtml.SourceAttr, Attr: "href"}, f.Source)
		require.NotNil(t, f.Default)
		assert.Empty(t, *f.Default)
	})

	t.Run("inner text without default", func(t *testing.T) {
		t.Parallel()

		f, ok := field("Text")
		require.True(t, ok)
		assert.Equal(t, unhtml.Source{Kind: unhtml.SourceText}, f.Source)
		assert.Nil(t, f.Default)
	})

	t.Run("untagged field reads whole element", func(t *testing.T) {
		t.Parallel()

		f, ok := field("Source")
		require.True(t, ok)
		assert.Empty(t, f.Selector)
		assert.Equal(t, unhtml.SourceHTML, f.Source.Kind)
	})

	t.Run("literal default", func(t *testing.T) {
		t.Parallel()

		f, ok := field("Age")
		require.True(t, ok)
		require.NotNil(t, f.Default)
		assert.Equal(t, "10", *f.Default)
	})

	t.Run("dash skips field", func(t *testing.T) {
		t.Parallel()

		_, ok := field("Skipped")
		assert.False(t, ok)
	})

	t.Run("json name is used for error paths", func(t *testing.T) {
		t.Parallel()

		f, ok := field("Named")
		require.True(t, ok)
		assert.Equal(t, "named_field", f.Name)
	})

	t.Run("unexported fields are skipped", func(t *testing.T) {
		t.Parallel()

		_, ok := field("private")
		assert.False(t, ok)
	})
}
