package refactor

import (
	"context"
	"strconv"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
)

// pendingInherit is a registered link waiting for its fetch.
type pendingInherit struct {
	link    *InheritLink
	loading *html.Node
}

// refactorSections walks the implementations section and every deref-methods section in
// document order. The first inherit reference of a page is skipped: rustdoc already inlines
// that level as the deref section itself.
func (e *Engine) refactorSections(ctx context.Context, doc *htmldom.Document, pass *Pass) []*pendingInherit {
	var pending []*pendingInherit
	refs := 0
	for _, header := range methodSectionHeaders(doc) {
		sid := htmldom.ID(header)
		for _, ref := range htmldom.FindAll(header, htmldom.ByAttr(inheritsAttr, "")) {
			refs++
			if refs == 1 {
				continue
			}
			if p := registerInherit(doc, pass, ref); p != nil {
				pending = append(pending, p)
			}
		}

		touched := e.refactorProperties(ctx, doc, pass, sid)
		if touched > 0 && len(methodEntries(sectionBody(header))) == 0 {
			removeSection(header)
			observability.DebugContext(ctx, "Removed emptied section", logfields.Section(sid))
		}
	}
	return pending
}

func removeSection(header *html.Node) {
	for _, n := range sectionBody(header) {
		htmldom.Detach(n)
	}
	htmldom.Detach(header)
}

// registerInherit marks the referenced page visited and inserts its "Inherits from" block
// with a loading placeholder. It returns nil when the page was already seen in this pass.
func registerInherit(doc *htmldom.Document, pass *Pass, ref *html.Node) *pendingInherit {
	href := htmldom.Attr(ref, "href")
	if href == "" {
		return nil
	}
	target, err := doc.Resolve(href)
	if err != nil {
		return nil
	}
	key := pageKey(target)
	if !pass.Fetched.AddNew(key) {
		return nil
	}
	anchor := inheritsAnchor(doc)
	if anchor == nil {
		return nil
	}

	name := htmldom.NormalizedText(ref)
	a := htmldom.Element("a", "href", linkTo(doc, target))
	if cls := htmldom.Attr(ref, "class"); cls != "" {
		htmldom.SetAttr(a, "class", cls)
	}
	a.AppendChild(htmldom.TextNode(name))

	heading := newSectionHeader("h3", uniqueID(doc, "inherits-"+slug(name)), htmldom.TextNode("Inherits from "), a)
	summary := htmldom.Element("summary")
	summary.AppendChild(heading)

	loading := htmldom.Element("div", "class", "inherits-loading")
	loading.AppendChild(htmldom.TextNode("Loading…"))

	block := htmldom.Element("details",
		"class", "toggle "+inheritsClass,
		"open", "",
		inheritsURLAttr, key,
		inheritsStateAttr, StateFetchPending.String())
	block.AppendChild(summary)
	block.AppendChild(loading)
	htmldom.InsertBefore(anchor, block)

	return &pendingInherit{
		link: &InheritLink{
			Name:     name,
			LinkHTML: htmldom.OuterHTML(a),
			URL:      key,
			State:    StateFetchPending,
			block:    block,
			origin:   doc.URL,
		},
		loading: loading,
	}
}

// inheritsAnchor returns the sentinel after the last method section, where
// "Inherits from" blocks are queued.
func inheritsAnchor(doc *htmldom.Document) *html.Node {
	return doc.EnsureAnchor(sentinelInherits, func(s *html.Node) bool {
		headers := methodSectionHeaders(doc)
		if len(headers) == 0 {
			return false
		}
		last := headers[len(headers)-1]
		ref := last
		if body := sectionBody(last); len(body) > 0 {
			ref = body[len(body)-1]
		}
		htmldom.InsertAfter(ref, s)
		return true
	})
}

// propertiesAnchor returns the sentinel before the first method section, where
// Properties sections are queued.
func propertiesAnchor(doc *htmldom.Document) *html.Node {
	return doc.EnsureAnchor(sentinelProperties, func(s *html.Node) bool {
		if headers := methodSectionHeaders(doc); len(headers) > 0 {
			htmldom.InsertBefore(headers[0], s)
			return true
		}
		if inh := doc.Anchor(sentinelInherits); inh != nil {
			htmldom.InsertBefore(inh, s)
			return true
		}
		return false
	})
}

func uniqueID(doc *htmldom.Document, base string) string {
	id := base
	for i := 1; doc.HasID(id); i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	return id
}
