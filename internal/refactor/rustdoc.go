package refactor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
)

// Markup produced by rustdoc and by the property/widget doc attributes.
const (
	implementationsID = "implementations"
	derefPrefix       = "deref-methods-"
	propertiesID      = "properties"
	propertiesPrefix  = "properties-"
	fromPrefix        = "properties-from-"

	markerAttr        = "data-tag"
	propertyTag       = "property"
	widgetTag         = "widget"
	inheritsAttr      = "data-inherits"
	inheritsURLAttr   = "data-inherits-url"
	inheritsStateAttr = "data-inherits-state"

	propertiesClass = "properties"
	inheritsClass   = "inherits"

	sentinelProperties        = "properties"
	sentinelInherits          = "inherits"
	sentinelSidebarProperties = "sidebar-properties"
)

// selfReceiver matches a method signature taking self, &self, &mut self, &'a self or self: T.
var selfReceiver = regexp.MustCompile(`\(\s*(?:&\s*(?:'\w+\s+)?(?:mut\s+)?|mut\s+)?self\b`)

// methodSectionHeaders returns the implementations and deref-methods headers in document order.
func methodSectionHeaders(doc *htmldom.Document) []*html.Node {
	return htmldom.FindAll(doc.MainContent(), func(n *html.Node) bool {
		if !htmldom.IsElement(n, "h2") {
			return false
		}
		id := htmldom.ID(n)
		return id == implementationsID || strings.HasPrefix(id, derefPrefix)
	})
}

func derefHeaders(doc *htmldom.Document) []*html.Node {
	return htmldom.FindAll(doc.MainContent(), func(n *html.Node) bool {
		return htmldom.IsElement(n, "h2") && strings.HasPrefix(htmldom.ID(n), derefPrefix)
	})
}

// sectionBody returns the elements following header up to the next h2 or inserted marker.
func sectionBody(header *html.Node) []*html.Node {
	var out []*html.Node
	for c := htmldom.NextElement(header); c != nil; c = htmldom.NextElement(c) {
		if htmldom.IsElement(c, "h2") || htmldom.HasAttr(c, htmldom.SentinelAttr) || htmldom.HasClass(c, inheritsClass) {
			break
		}
		out = append(out, c)
	}
	return out
}

func isMethodToggle(n *html.Node) bool {
	return htmldom.IsElement(n, "details") && htmldom.HasClass(n, "method-toggle")
}

func isMethodEntry(n *html.Node) bool {
	if isMethodToggle(n) {
		return true
	}
	if !htmldom.IsElement(n, "section") || !htmldom.HasClass(n, "method") {
		return false
	}
	return n.Parent == nil || htmldom.Closest(n.Parent, isMethodToggle) == nil
}

// methodEntries lists method entries under the given nodes, in document order.
func methodEntries(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		out = append(out, htmldom.FindAll(n, isMethodEntry)...)
	}
	return out
}

func codeHeader(entry *html.Node) *html.Node {
	return htmldom.FindFirst(entry, htmldom.ByClass("code-header"))
}

// entryID returns the anchor id of a method entry ("method.foo").
func entryID(entry *html.Node) string {
	s := htmldom.FindFirst(entry, func(n *html.Node) bool {
		return htmldom.IsElement(n, "section") && htmldom.ID(n) != ""
	})
	return htmldom.ID(s)
}

// entryName returns the function name of a method entry.
func entryName(entry *html.Node) string {
	if fn := htmldom.FindFirst(entry, htmldom.And(htmldom.ByTag("a"), htmldom.ByClass("fn"))); fn != nil {
		if name := strings.TrimSpace(htmldom.Text(fn)); name != "" {
			return name
		}
	}
	id := entryID(entry)
	for _, prefix := range []string{"method.", "tymethod."} {
		if strings.HasPrefix(id, prefix) {
			return strings.TrimPrefix(id, prefix)
		}
	}
	return ""
}

func isInstanceMethod(entry *html.Node) bool {
	h := codeHeader(entry)
	if h == nil {
		return false
	}
	return selfReceiver.MatchString(htmldom.NormalizedText(h))
}

func hasMarker(n *html.Node, tag string) bool {
	return htmldom.FindFirst(n, htmldom.ByAttr(markerAttr, tag)) != nil
}

func stripMarkers(n *html.Node, tag string) {
	for _, m := range htmldom.FindAll(n, htmldom.ByAttr(markerAttr, tag)) {
		htmldom.Detach(m)
	}
}

// headerLabel returns a header's children except its "§" self-anchor, cloned.
func headerLabel(h *html.Node) []*html.Node {
	var out []*html.Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if htmldom.IsElement(c, "a") && htmldom.HasClass(c, "anchor") {
			continue
		}
		out = append(out, htmldom.Clone(c))
	}
	return out
}

func headerText(h *html.Node) string {
	var b strings.Builder
	for _, c := range headerLabel(h) {
		b.WriteString(htmldom.Text(c))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// derefTarget returns the link naming the type a deref-methods section comes from.
func derefTarget(header *html.Node) *html.Node {
	var target *html.Node
	for _, a := range htmldom.FindAll(header, htmldom.ByTag("a")) {
		if htmldom.HasClass(a, "anchor") || htmldom.HasAttr(a, inheritsAttr) {
			continue
		}
		target = a
	}
	return target
}

func derefTargetName(header *html.Node) string {
	if a := derefTarget(header); a != nil {
		if name := strings.TrimSpace(htmldom.Text(a)); name != "" {
			return name
		}
	}
	return strings.TrimPrefix(htmldom.ID(header), derefPrefix)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// newSectionHeader builds <h2 id class="section-header">label<a class="anchor">§</a></h2>.
func newSectionHeader(tag, id string, label ...*html.Node) *html.Node {
	h := htmldom.Element(tag, "id", id, "class", "section-header")
	for _, n := range label {
		htmldom.AppendChild(h, n)
	}
	a := htmldom.Element("a", "href", "#"+id, "class", "anchor")
	a.AppendChild(htmldom.TextNode("§"))
	h.AppendChild(a)
	return h
}

// propertiesContainer returns the entry container that follows a properties header.
func propertiesContainer(h *html.Node) *html.Node {
	c := htmldom.NextElement(h)
	if htmldom.IsElement(c, "div") && htmldom.HasClass(c, propertiesClass) {
		return c
	}
	return nil
}

// propertiesHeaders lists the headers of Properties sections built on type pages.
func propertiesHeaders(doc *htmldom.Document) []*html.Node {
	return htmldom.FindAll(doc.MainContent(), func(n *html.Node) bool {
		if !htmldom.IsElement(n, "h2") {
			return false
		}
		id := htmldom.ID(n)
		if id != propertiesID && !strings.HasPrefix(id, propertiesPrefix) {
			return false
		}
		return propertiesContainer(n) != nil
	})
}
