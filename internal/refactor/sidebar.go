package refactor

import (
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/util/sets"
)

// refactorSidebar mirrors the main content into the sidebar: property links leave the
// Methods lists for the list of the Properties section that now holds their target.
// Links whose target was dropped as an override disappear, and names listed twice
// are kept once.
func (e *Engine) refactorSidebar(doc *htmldom.Document, pass *Pass) {
	sidebar := doc.Sidebar()
	if sidebar == nil {
		return
	}
	seen := sidebarPropertyNames(sidebar)

	for _, heading := range htmldom.FindAll(sidebar, isMethodsHeading) {
		list := htmldom.NextElement(heading)
		if !htmldom.IsElement(list, "ul") {
			continue
		}
		changed := false
		for _, li := range htmldom.ElementChildren(list) {
			name := sidebarName(li)
			if name == "" || !pass.Properties.Has(name) {
				continue
			}
			target := doc.ByID(strings.TrimPrefix(sidebarHref(li), "#"))
			var section *html.Node
			if target != nil {
				section = htmldom.Closest(target, isPropertiesContainer)
				if section == nil {
					// an ordinary method sharing a property's name
					continue
				}
			}
			changed = true
			if section == nil || !seen.AddNew(name) {
				htmldom.Detach(li)
				continue
			}
			id := strings.TrimSuffix(htmldom.ID(section), "-list")
			dst := ensureSidebarList(doc, sidebar, id, headerText(doc.ByID(id)), propertiesClass, nil)
			if dst == nil {
				continue
			}
			htmldom.AppendChild(dst, li)
		}
		if changed && len(htmldom.ElementChildren(list)) == 0 {
			htmldom.Detach(heading)
			htmldom.Detach(list)
		}
	}
}

func isPropertiesContainer(n *html.Node) bool {
	return htmldom.IsElement(n, "div") && htmldom.HasClass(n, propertiesClass)
}

func isMethodsHeading(n *html.Node) bool {
	return htmldom.IsElement(n, "h3") && strings.HasPrefix(htmldom.NormalizedText(n), "Methods")
}

func sidebarHref(li *html.Node) string {
	return htmldom.Attr(htmldom.FindFirst(li, htmldom.ByTag("a")), "href")
}

func sidebarName(li *html.Node) string {
	if a := htmldom.FindFirst(li, htmldom.ByTag("a")); a != nil {
		return htmldom.NormalizedText(a)
	}
	return ""
}

// sidebarListFor returns the ul following the sidebar heading that links to #id.
func sidebarListFor(sidebar *html.Node, id string) *html.Node {
	if sidebar == nil {
		return nil
	}
	heading := htmldom.FindFirst(sidebar, func(n *html.Node) bool {
		return htmldom.IsElement(n, "h3") &&
			htmldom.FindFirst(n, htmldom.ByAttr("href", "#"+id)) != nil
	})
	if heading == nil {
		return nil
	}
	if list := htmldom.NextElement(heading); htmldom.IsElement(list, "ul") {
		return list
	}
	return nil
}

// sidebarPropertyNames collects names already listed under any Properties heading.
func sidebarPropertyNames(sidebar *html.Node) sets.Set[string] {
	names := sets.New[string]()
	for _, list := range htmldom.FindAll(sidebar, isSidebarPropertyList) {
		for _, li := range htmldom.ElementChildren(list) {
			names.Add(sidebarName(li))
		}
	}
	return names
}

func isSidebarPropertyList(n *html.Node) bool {
	return htmldom.IsElement(n, "ul") && htmldom.HasClass(n, propertiesClass)
}

// ensureSidebarList returns the sidebar list for section id, creating heading and list.
// New lists go before `before`, or before the sidebar-properties sentinel when nil.
func ensureSidebarList(doc *htmldom.Document, sidebar *html.Node, id, title, class string, before *html.Node) *html.Node {
	if list := sidebarListFor(sidebar, id); list != nil {
		return list
	}
	if before == nil {
		before = doc.EnsureAnchor(sentinelSidebarProperties, func(s *html.Node) bool {
			if first := htmldom.FindFirst(sidebar, isMethodsHeading); first != nil {
				htmldom.InsertBefore(first, s)
				return true
			}
			htmldom.AppendChild(sidebar, s)
			return true
		})
		if before == nil {
			return nil
		}
	}
	heading := htmldom.Element("h3")
	a := htmldom.Element("a", "href", "#"+id)
	a.AppendChild(htmldom.TextNode(title))
	heading.AppendChild(a)
	list := htmldom.Element("ul", "class", "block "+class)
	htmldom.InsertBefore(before, heading)
	htmldom.InsertBefore(before, list)
	return list
}
