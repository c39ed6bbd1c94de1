package goquery_test

import (
	"slices"
	"testing"

	"github.com/fwojciec/unhtml"
	"github.com/fwojciec/unhtml/goquery"
	"github.com/fwojciec/unhtml/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectHTML(t *testing.T, p *goquery.Parser, root unhtml.Element, css string) []string {
	t.Helper()
	sel, err := p.Compile(css)
	require.NoError(t, err)
	var out []string
	for e := range sel.Select(root) {
		s, err := e.HTML()
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("fragment root is html element", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser()
		root, err := p.Parse(`<a>1</a>`)
		require.NoError(t, err)

		s, err := root.HTML()
		require.NoError(t, err)
		assert.Equal(t, "<html><head></head><body><a>1</a></body></html>", s)
		assert.Equal(t, []string{"<a>1</a>"}, selectHTML(t, p, root, "a"))
	})

	t.Run("full document", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser()
		root, err := p.Parse(`<!DOCTYPE html><html lang="en"><head><title>T</title></head><body><p>x</p></body></html>`)
		require.NoError(t, err)

		lang, ok := root.Attr("lang")
		assert.True(t, ok)
		assert.Equal(t, "en", lang)
		assert.Equal(t, []string{"<title>T</title>"}, selectHTML(t, p, root, "title"))
	})

	t.Run("empty input still has a root", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser()
		root, err := p.Parse("")
		require.NoError(t, err)
		assert.Empty(t, selectHTML(t, p, root, "p"))
	})
}

func TestParser_Compile(t *testing.T) {
	t.Parallel()

	t.Run("rejects malformed selectors", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser()
		for _, css := range []string{"a[", "#", "p:nope", ""} {
			_, err := p.Compile(css)
			var se *unhtml.SelectorError
			require.ErrorAs(t, err, &se, css)
			assert.Equal(t, css, se.Selector)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser()
		root, err := p.Parse(`<ul><li class="x">1</li><li>2</li><li class="x">3</li></ul>`)
		require.NoError(t, err)

		first := selectHTML(t, p, root, "li.x, li:nth-child(2)")
		second := selectHTML(t, p, root, "li.x, li:nth-child(2)")
		assert.Equal(t, first, second)
		assert.Equal(t, []string{`<li class="x">1</li>`, "<li>2</li>", `<li class="x">3</li>`}, first)
	})

	t.Run("keeps source", func(t *testing.T) {
		t.Parallel()

		sel, err := goquery.NewParser().Compile("div > p")
		require.NoError(t, err)
		assert.Equal(t, "div > p", sel.String())
	})
}

func TestSelector_Select(t *testing.T) {
	t.Parallel()

	t.Run("matches descendants only", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewParser()
		root, err := p.Parse(`<div id="a"><div id="b"></div></div>`)
		require.NoError(t, err)
		sel, err := p.Compile("div")
		require.NoError(t, err)

		var outer unhtml.Element
		for e := range sel.Select(root) {
			outer = e
			break
		}
		require.NotNil(t, outer)
		var ids []string
		for e := range sel.Select(outer) {
			id, _ := e.Attr("id")
			ids = append(ids, id)
		}
		assert.Equal(t, []string{"b"}, ids)
	})

	t.Run("foreign elements never match", func(t *testing.T) {
		t.Parallel()

		sel, err := goquery.NewParser().Compile("a")
		require.NoError(t, err)
		assert.Empty(t, slices.Collect(sel.Select(&mock.Element{})))
	})
}

func TestElement_Text(t *testing.T) {
	t.Parallel()

	p := goquery.NewParser()
	root, err := p.Parse(`<p>Hello <b>big</b> world<!-- note --></p>`)
	require.NoError(t, err)
	sel, err := p.Compile("p")
	require.NoError(t, err)

	for e := range sel.Select(root) {
		assert.Equal(t, []string{"Hello ", "big", " world"}, slices.Collect(e.Text()))

		var first []string
		for s := range e.Text() {
			first = append(first, s)
			break
		}
		assert.Equal(t, []string{"Hello "}, first)
	}
}

func TestElement_HTML(t *testing.T) {
	t.Parallel()

	p := goquery.NewParser()
	root, err := p.Parse(`<div><a href="https://github.com" class="x">Git<i>hub</i></a></div>`)
	require.NoError(t, err)

	got := selectHTML(t, p, root, "a")
	require.Len(t, got, 1)
	assert.Equal(t, `<a href="https://github.com" class="x">Git<i>hub</i></a>`, got[0])
}
