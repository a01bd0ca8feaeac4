package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docrefactor/internal/fetch"
	"git.home.luguber.info/inful/docrefactor/internal/refactor"
)

const pageP = `<!DOCTYPE html><html><head><title>P</title></head><body>` +
	`<nav class="sidebar"><div class="sidebar-elems"><section>` +
	`<h3><a href="#implementations">Methods</a></h3><ul class="block">` +
	`<li><a href="#method.foo">foo</a></li><li><a href="#method.bar">bar</a></li></ul>` +
	`</section></div></nav><main><section id="main-content">` +
	`<h2 id="implementations" class="section-header">Implementations` +
	` <a data-inherits href="struct.Q.html">Q</a> <a data-inherits href="struct.R.html">R</a>` +
	`<a href="#implementations" class="anchor">§</a></h2>` +
	`<div id="implementations-list">` +
	`<details class="toggle method-toggle" open><summary><section id="method.foo" class="method">` +
	`<h4 class="code-header">pub fn <a href="#method.foo" class="fn">foo</a>(&amp;self) -&gt; Var</h4></section></summary>` +
	`<div class="docblock"><span data-tag="property">P</span></div></details>` +
	`<details class="toggle method-toggle" open><summary><section id="method.bar" class="method">` +
	`<h4 class="code-header">pub fn <a href="#method.bar" class="fn">bar</a>(&amp;self)</h4></section></summary></details>` +
	`</div></section></main></body></html>`

const pageR = `<!DOCTYPE html><html><head><title>R</title></head><body>` +
	`<main><section id="main-content">` +
	`<h2 id="implementations" class="section-header">Implementations</h2>` +
	`<div id="implementations-list">` +
	`<details class="toggle method-toggle" open><summary><section id="method.rm" class="method">` +
	`<h4 class="code-header">pub fn <a href="#method.rm" class="fn">rm</a>(&amp;self)</h4></section></summary>` +
	`<div class="docblock"><a href="../other/struct.X.html">X</a></div></details>` +
	`</div></section></main></body></html>`

const redirectPage = `<!DOCTYPE html><html><head>` +
	`<meta http-equiv="refresh" content="0;URL=struct.P.html"></head><body></body></html>`

// writeTree creates a small rustdoc-like output tree and returns its root.
func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"zng/struct.P.html":     pageP,
		"zng/struct.R.html":     pageR,
		"zng/redirect.html":     redirectPage,
		"src/zng/lib.rs.html":   "<html><body>source</body></html>",
		"static.files/main.css": "body{}",
		"settings.html":         "<html><body>settings</body></html>",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func fileEngine() *refactor.Engine {
	return refactor.NewEngine(fetch.NewLoader(fetch.NewFileFetcher(0, nil)))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
