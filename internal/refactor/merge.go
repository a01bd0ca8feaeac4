package refactor

import (
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
	"git.home.luguber.info/inful/docrefactor/internal/util/sets"
)

// MergeInherits moves the content of every fetched page into root, in discovery order.
// Blocks of failed links are moved as well so their error note shows in root.
// It runs once per top-level pass, after all fetches have settled.
func (e *Engine) MergeInherits(root *htmldom.Document, pass *Pass) {
	for _, link := range pass.Inherits {
		if link.State == StateFetchFailed {
			placeBlock(root, link)
			continue
		}
		if link.State != StateParsed || link.Page == nil {
			continue
		}
		e.mergeLink(root, link)
		link.State = StateMerged
		htmldom.SetAttr(link.block, inheritsStateAttr, link.State.String())
		pass.Stats.InheritsMerged++
		e.recorder.IncInheritResult(metrics.ResultSuccess)
	}
	sweepEmptyProperties(root)
}

func (e *Engine) mergeLink(root *htmldom.Document, link *InheritLink) {
	page := link.Page
	placeBlock(root, link)

	var moved []*html.Node
	moved = append(moved, mergeProperties(root, page, link)...)

	content := htmldom.Element("div", "class", "inherits-content")
	if h := page.ByID(implementationsID); htmldom.IsElement(h, "h2") {
		if items := instanceItems(root, sectionBody(h)); items != nil {
			content.AppendChild(items)
		}
	}
	for _, h := range derefHeaders(page) {
		id := htmldom.ID(h)
		if root.HasID(id) {
			continue
		}
		items := instanceItems(root, sectionBody(h))
		if items == nil {
			continue
		}
		sub := newSectionHeader("h3", id, headerLabel(h)...)
		content.AppendChild(sub)
		content.AppendChild(items)
	}

	if content.FirstChild == nil {
		htmldom.SetAttr(link.block, "hidden", "")
	} else {
		link.block.AppendChild(content)
		moved = append(moved, content)
	}
	for _, n := range moved {
		rewriteLinks(root, page.URL, n)
	}
}

// placeBlock queues link's block at root's inherits anchor. Blocks of nested links were
// built in the page that found them, so the heading id is re-derived against root and
// the header links are rewritten from that page.
func placeBlock(root *htmldom.Document, link *InheritLink) {
	anchor := inheritsAnchor(root)
	if anchor == nil {
		return
	}
	htmldom.Detach(link.block)
	if h := htmldom.FindFirst(link.block, htmldom.ByClass("section-header")); h != nil {
		id := uniqueID(root, "inherits-"+slug(link.Name))
		htmldom.SetAttr(h, "id", id)
		if a := htmldom.FindFirst(h, htmldom.ByClass("anchor")); a != nil {
			htmldom.SetAttr(a, "href", "#"+id)
		}
	}
	htmldom.InsertBefore(anchor, link.block)
	if summary := htmldom.FindFirst(link.block, htmldom.ByTag("summary")); summary != nil {
		rewriteLinks(root, link.origin, summary)
	}
}

// instanceItems gathers the self-receiver methods of a section body that root does not
// already define, or returns nil when there are none.
func instanceItems(root *htmldom.Document, body []*html.Node) *html.Node {
	var items *html.Node
	for _, entry := range methodEntries(body) {
		if !isInstanceMethod(entry) {
			continue
		}
		if id := entryID(entry); id != "" && root.HasID(id) {
			continue
		}
		if items == nil {
			items = htmldom.Element("div", "class", "impl-items")
		}
		htmldom.AppendChild(items, entry)
	}
	return items
}

// mergeProperties moves every Properties section of page into root as
// "Properties from X", together with its sidebar list.
func mergeProperties(root, page *htmldom.Document, link *InheritLink) []*html.Node {
	var moved []*html.Node
	rootSidebar := root.Sidebar()
	names := sets.New[string]()
	if rootSidebar != nil {
		names = sidebarPropertyNames(rootSidebar)
	}

	for _, h := range propertiesHeaders(page) {
		entries := methodEntries([]*html.Node{propertiesContainer(h)})
		if len(entries) == 0 {
			continue
		}
		name, label := propertiesOrigin(h, link)
		id := fromPrefix + slug(name)

		dst := root.ByID(id + "-list")
		if dst == nil {
			anchor := propertiesAnchor(root)
			if anchor == nil {
				continue
			}
			header := newSectionHeader("h2", id, label...)
			dst = htmldom.Element("div", "id", id+"-list", "class", "impl-items "+propertiesClass)
			htmldom.InsertBefore(anchor, header)
			htmldom.InsertBefore(anchor, dst)
			moved = append(moved, header)
		}
		for _, entry := range entries {
			if eid := entryID(entry); eid != "" && root.HasID(eid) {
				continue
			}
			htmldom.AppendChild(dst, entry)
			moved = append(moved, entry)
		}

		src := sidebarListFor(page.Sidebar(), htmldom.ID(h))
		if src == nil || rootSidebar == nil {
			continue
		}
		var list *html.Node
		for _, li := range htmldom.ElementChildren(src) {
			n := sidebarName(li)
			if names.Has(n) {
				continue
			}
			if list == nil {
				list = ensureSidebarList(root, rootSidebar, id, headerText(root.ByID(id)), propertiesClass, nil)
				if list == nil {
					break
				}
			}
			names.Add(n)
			htmldom.AppendChild(list, li)
			moved = append(moved, li)
		}
	}
	return moved
}

// propertiesOrigin names the type a fetched Properties section belongs to and builds
// the label of its merged header.
func propertiesOrigin(h *html.Node, link *InheritLink) (string, []*html.Node) {
	id := htmldom.ID(h)
	if id == propertiesID {
		a := htmldom.Element("a", "href", link.URL)
		a.AppendChild(htmldom.TextNode(link.Name))
		return link.Name, []*html.Node{htmldom.TextNode("Properties from "), a}
	}
	label := headerLabel(h)
	name := strings.TrimPrefix(headerText(h), "Properties from ")
	return name, label
}

// sweepEmptyProperties drops Properties sections left without entries, with their sidebar lists.
func sweepEmptyProperties(root *htmldom.Document) {
	sidebar := root.Sidebar()
	for _, h := range propertiesHeaders(root) {
		c := propertiesContainer(h)
		if len(methodEntries([]*html.Node{c})) > 0 {
			continue
		}
		id := htmldom.ID(h)
		htmldom.Detach(c)
		htmldom.Detach(h)
		if list := sidebarListFor(sidebar, id); list != nil {
			htmldom.Detach(prevElement(list))
			htmldom.Detach(list)
		}
	}
	if sidebar == nil {
		return
	}
	for _, list := range htmldom.FindAll(sidebar, isSidebarPropertyList) {
		if len(htmldom.ElementChildren(list)) > 0 {
			continue
		}
		if heading := prevElement(list); htmldom.IsElement(heading, "h3") {
			htmldom.Detach(heading)
		}
		htmldom.Detach(list)
	}
}

func prevElement(n *html.Node) *html.Node {
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
