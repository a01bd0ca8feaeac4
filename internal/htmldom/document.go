package htmldom

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// SentinelAttr marks insertion-point elements.
const SentinelAttr = "data-sentinel"

// Document is one parsed page plus the side-table of its insertion anchors.
type Document struct {
	Root *html.Node
	URL  *url.URL

	anchors map[string]*html.Node
}

// Parse reads an HTML page. pageURL is used to resolve relative links later on.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, URL: u, anchors: make(map[string]*html.Node)}, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(s), pageURL)
}

// Render writes the document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// Bytes renders the document to memory.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.Bytes()
}

// ByID returns the first element with the given id.
func (d *Document) ByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return FindFirst(d.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && ID(n) == id
	})
}

// HasID reports whether an element with id exists.
func (d *Document) HasID(id string) bool { return d.ByID(id) != nil }

// Body returns the body element, or the root when missing.
func (d *Document) Body() *html.Node {
	if b := FindFirst(d.Root, ByTag("body")); b != nil {
		return b
	}
	return d.Root
}

// MainContent returns rustdoc's #main-content section, falling back to the body.
func (d *Document) MainContent() *html.Node {
	if m := d.ByID("main-content"); m != nil {
		return m
	}
	return d.Body()
}

// Sidebar returns the sidebar item list container, or nil.
func (d *Document) Sidebar() *html.Node {
	if s := FindFirst(d.Root, ByClass("sidebar-elems")); s != nil {
		return s
	}
	return FindFirst(d.Root, ByClass("sidebar"))
}

// Anchor returns the sentinel called name, adopting one already present in the tree.
func (d *Document) Anchor(name string) *html.Node {
	if n, ok := d.anchors[name]; ok && Contains(d.Root, n) {
		return n
	}
	n := FindFirst(d.Root, ByAttr(SentinelAttr, name))
	if n != nil {
		d.anchors[name] = n
	}
	return n
}

// EnsureAnchor returns the sentinel called name, creating it with place when absent.
// place inserts the fresh node into the tree and reports success; nil is returned when it cannot.
func (d *Document) EnsureAnchor(name string, place func(sentinel *html.Node) bool) *html.Node {
	if n := d.Anchor(name); n != nil {
		return n
	}
	n := Element("div", SentinelAttr, name, "hidden", "")
	if !place(n) || n.Parent == nil {
		return nil
	}
	d.anchors[name] = n
	return n
}

// Resolve resolves ref against the document URL.
func (d *Document) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if d.URL == nil {
		return u, nil
	}
	return d.URL.ResolveReference(u), nil
}
