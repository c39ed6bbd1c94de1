package readability_test

import (
	"testing"

	"github.com/fwojciec/unhtml"
	"github.com/fwojciec/unhtml/goquery"
	"github.com/fwojciec/unhtml/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const story = `<!DOCTYPE html>
<html>
<head><title>Release Notes</title></head>
<body>
<nav><a href="/">Home Nav Link</a><a href="/blog">Blog Nav Link</a></nav>
<aside class="sidebar"><p>Sidebar related posts</p></aside>
<article>
<h2>What changed</h2>
<p>This release rewrites the selector engine so that every query is compiled exactly once.</p>
<ul><li>Faster decoding</li><li>Clearer errors</li></ul>
<p>Install it with <code>go get</code>:</p>
<pre><code>go get example.com/tool@latest</code></pre>
<table><tr><th>Version</th><th>Date</th></tr><tr><td>1.2.0</td><td>2024-05-01</td></tr></table>
</article>
<footer><p>Footer copyright text 2024</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	result, err := readability.NewExtractor().Extract(story)
	require.NoError(t, err)

	t.Run("drops boilerplate", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"Home Nav Link", "Blog Nav Link", "Sidebar related posts", "Footer copyright text"} {
			assert.NotContains(t, result, s)
		}
	})

	t.Run("keeps article content", func(t *testing.T) {
		t.Parallel()

		for _, s := range []string{"What changed", "compiled exactly once", "Faster decoding", "<pre", "go get example.com/tool@latest", "1.2.0"} {
			assert.Contains(t, result, s)
		}
	})

	t.Run("keeps the title", func(t *testing.T) {
		t.Parallel()

		assert.Contains(t, result, "<title>Release Notes</title>")
	})
}

func TestExtractor_ResultDecodes(t *testing.T) {
	t.Parallel()

	type notes struct {
		Title   string   `html:"title" attr:"inner"`
		Changes []string `html:"li" attr:"inner"`
	}

	result, err := readability.NewExtractor().Extract(story)
	require.NoError(t, err)

	var got notes
	require.NoError(t, goquery.Unmarshal(result, &got))
	assert.Equal(t, notes{Title: "Release Notes", Changes: []string{"Faster decoding", "Clearer errors"}}, got)
}

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "  \n\t"} {
		_, err := readability.NewExtractor().Extract(in)
		require.Error(t, err)
		assert.Equal(t, unhtml.EINVALID, unhtml.ErrorCode(err))
	}
}
