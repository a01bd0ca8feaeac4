package refactor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
)

const baseURL = "https://docs.test/zng/"

type testMethod struct {
	name     string
	property bool
	static   bool
}

type testRef struct {
	href string
	name string
}

type testSection struct {
	id      string
	title   string
	refs    []testRef
	methods []testMethod
}

func prop(name string) testMethod   { return testMethod{name: name, property: true} }
func method(name string) testMethod { return testMethod{name: name} }
func static(name string) testMethod { return testMethod{name: name, static: true} }

func impls(refs []testRef, methods ...testMethod) testSection {
	return testSection{id: implementationsID, title: "Implementations", refs: refs, methods: methods}
}

func deref(target string, refs []testRef, methods ...testMethod) testSection {
	return testSection{
		id: derefPrefix + target,
		title: fmt.Sprintf(`Methods from Deref&lt;Target = <a class="struct" href="struct.%[1]s.html">%[1]s</a>&gt;`,
			target),
		refs:    refs,
		methods: methods,
	}
}

func refs(names ...string) []testRef {
	out := make([]testRef, 0, len(names))
	for _, n := range names {
		out = append(out, testRef{href: "struct." + n + ".html", name: n})
	}
	return out
}

func methodHTML(m testMethod) string {
	recv := "&amp;self"
	if m.static {
		recv = ""
	}
	marker := ""
	if m.property {
		marker = `<span class="stab" data-tag="property">P</span>`
	}
	return fmt.Sprintf(`<details class="toggle method-toggle" open><summary>`+
		`<section id="method.%[1]s" class="method"><h4 class="code-header">pub fn <a href="#method.%[1]s" class="fn">%[1]s</a>(%[2]s)</h4></section>`+
		`</summary><div class="docblock">%[3]s<p>See <a href="struct.Other.html">Other</a>.</p></div></details>`,
		m.name, recv, marker)
}

func pageHTML(name string, sections ...testSection) string {
	var main, side strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&main, `<h2 id="%s" class="section-header">%s`, s.id, s.title)
		for _, r := range s.refs {
			fmt.Fprintf(&main, ` <a data-inherits href="%s">%s</a>`, r.href, r.name)
		}
		fmt.Fprintf(&main, `<a href="#%[1]s" class="anchor">§</a></h2><div id="%[1]s-list" class="impl-items">`, s.id)
		for _, m := range s.methods {
			main.WriteString(methodHTML(m))
		}
		main.WriteString(`</div>`)

		title := "Methods"
		if s.id != implementationsID {
			title = "Methods from Deref"
		}
		fmt.Fprintf(&side, `<h3><a href="#%s">%s</a></h3><ul class="block">`, s.id, title)
		for _, m := range s.methods {
			fmt.Fprintf(&side, `<li><a href="#method.%[1]s">%[1]s</a></li>`, m.name)
		}
		side.WriteString(`</ul>`)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head><title>%[1]s</title></head><body>`+
		`<nav class="sidebar"><div class="sidebar-elems"><section>%[2]s</section></div></nav>`+
		`<main><section id="main-content" class="content"><h1>Struct %[1]s</h1>%[3]s</section></main></body></html>`,
		name, side.String(), main.String())
}

func parsePage(t *testing.T, src, pageURL string) *htmldom.Document {
	t.Helper()
	doc, err := htmldom.ParseString(src, pageURL)
	require.NoError(t, err)
	return doc
}

// fakeLoader serves pages from memory, re-parsing on every load.
type fakeLoader struct {
	pages map[string]string
	calls map[string]int
}

func newFakeLoader(pages map[string]string) *fakeLoader {
	return &fakeLoader{pages: pages, calls: make(map[string]int)}
}

func (f *fakeLoader) Load(_ context.Context, pageURL string) (*htmldom.Document, error) {
	f.calls[pageURL]++
	src, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("HTTP 404: %s", pageURL)
	}
	return htmldom.ParseString(src, pageURL)
}

func (f *fakeLoader) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// entryNames lists the names of method entries under n, in document order.
func entryNames(n *html.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, e := range methodEntries([]*html.Node{n}) {
		out = append(out, entryName(e))
	}
	return out
}

func sidebarNames(list *html.Node) []string {
	if list == nil {
		return nil
	}
	var out []string
	for _, li := range htmldom.ElementChildren(list) {
		out = append(out, sidebarName(li))
	}
	return out
}

// before reports whether a precedes b in document order.
func before(doc *htmldom.Document, a, b *html.Node) bool {
	pos := map[*html.Node]int{}
	i := 0
	htmldom.Walk(doc.Root, func(n *html.Node) bool {
		pos[n] = i
		i++
		return true
	})
	pa, okA := pos[a]
	pb, okB := pos[b]
	return okA && okB && pa < pb
}

func inheritBlocks(doc *htmldom.Document) []*html.Node {
	return htmldom.FindAll(doc.Root, htmldom.ByAttr(inheritsURLAttr, ""))
}
