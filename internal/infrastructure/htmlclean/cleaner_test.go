package htmlclean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_RemovesScriptStyle(t *testing.T) {
	in := `
<body>
    <div id="main">Hello</div>
    <script>alert("hi")</script>
    <style>.x {}</style>
</body>`

	out := New(DefaultCleanConfig).Clean(in)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.Contains(t, out, `id="main"`)
}

func TestClean_RemovesComments(t *testing.T) {
	out := New(DefaultCleanConfig).Clean(`<body><!-- comment --><div>Text</div></body>`)

	assert.NotContains(t, out, "comment")
	assert.Contains(t, out, "Text")
}

func TestClean_KeepsOnlyAllowlistedAttributes(t *testing.T) {
	in := `<body><a href="https://example.com" class="link" id="x" data-x="1" aria-label="Go home" onclick="f()">Go</a></body>`

	out := New(DefaultCleanConfig).Clean(in)

	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `id="x"`)
	assert.Contains(t, out, `aria-label="Go home"`)
	assert.NotContains(t, out, `class=`)
	assert.NotContains(t, out, `data-x`)
	assert.NotContains(t, out, `onclick`)
}

func TestClean_DropsAriaHiddenSubtrees(t *testing.T) {
	in := `<body><div aria-hidden="true"><span>decor</span></div><p>visible</p></body>`

	out := New(DefaultCleanConfig).Clean(in)

	assert.NotContains(t, out, "decor")
	assert.Contains(t, out, "visible")
}

func TestClean_RemovesHeadAndReturnsInnerBody(t *testing.T) {
	in := `<html><head><meta charset="utf-8"><title>T</title></head><body><p>Hi</p></body></html>`

	out := New(DefaultCleanConfig).Clean(in)

	assert.Equal(t, "<p>Hi</p>", out)
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	in := "<body>\n  <ul>\n    <li>one   two</li>\n    <li>three</li>\n  </ul>\n</body>"

	out := New(DefaultCleanConfig).Clean(in)

	assert.Equal(t, "<ul><li>one two</li><li>three</li></ul>", out)
}

func TestClean_EmptyAllowlistKeepsAttributes(t *testing.T) {
	cfg := DefaultCleanConfig
	cfg.KeepAttrs = nil

	out := New(cfg).Clean(`<body><div class="card">x</div></body>`)

	assert.Contains(t, out, `class="card"`)
}
