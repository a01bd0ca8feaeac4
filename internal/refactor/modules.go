package refactor

import (
	"context"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
)

// moduleGroup reclassifies tagged rows of one module index table.
type moduleGroup struct {
	sourceID string
	tag      string
	targetID string
	title    string
}

var moduleGroups = []moduleGroup{
	{sourceID: "functions", tag: propertyTag, targetID: "properties", title: "Properties"},
	{sourceID: "modules", tag: widgetTag, targetID: "widgets", title: "Widgets"},
}

// refactorModuleIndex moves property functions and widget modules listed on a module
// page into their own tables, placed before the table they came from.
func (e *Engine) refactorModuleIndex(ctx context.Context, doc *htmldom.Document, pass *Pass) {
	for _, g := range moduleGroups {
		header := doc.ByID(g.sourceID)
		if !htmldom.IsElement(header, "h2") {
			continue
		}
		table := htmldom.NextElement(header)
		if !isItemTable(table) {
			continue
		}

		touched := 0
		var dst *html.Node
		for _, row := range tableRows(table) {
			if !hasMarker(row[0], g.tag) {
				continue
			}
			name := htmldom.NormalizedText(htmldom.FindFirst(row[0], htmldom.ByTag("a")))
			touched++
			if g.tag == propertyTag && !pass.Properties.AddNew(name) {
				for _, n := range row {
					htmldom.Detach(n)
				}
				pass.Stats.Overrides++
				continue
			}
			if dst == nil {
				dst = ensureModuleTable(doc, header, table, g)
			}
			for _, n := range row {
				stripMarkers(n, g.tag)
				htmldom.AppendChild(dst, n)
			}
			if g.tag == propertyTag {
				pass.Stats.PropertiesMoved++
			} else {
				pass.Stats.WidgetsMoved++
			}
		}
		if touched == 0 {
			continue
		}

		emptied := len(htmldom.ElementChildren(table)) == 0
		if emptied {
			htmldom.Detach(header)
			htmldom.Detach(table)
		}
		mirrorModuleSidebar(doc, g, dst != nil, emptied)
		observability.DebugContext(ctx, "Reclassified module items",
			logfields.Section(g.targetID), logfields.Count(touched))
	}
}

func isItemTable(n *html.Node) bool {
	return (htmldom.IsElement(n, "ul") || htmldom.IsElement(n, "dl")) && htmldom.HasClass(n, "item-table")
}

// tableRows groups a table's children: one li, or a dt with its dd descriptions.
func tableRows(table *html.Node) [][]*html.Node {
	var rows [][]*html.Node
	for _, c := range htmldom.ElementChildren(table) {
		if htmldom.IsElement(c, "dd") && len(rows) > 0 {
			rows[len(rows)-1] = append(rows[len(rows)-1], c)
			continue
		}
		rows = append(rows, []*html.Node{c})
	}
	return rows
}

func ensureModuleTable(doc *htmldom.Document, before, like *html.Node, g moduleGroup) *html.Node {
	if h := doc.ByID(g.targetID); h != nil {
		if t := htmldom.NextElement(h); isItemTable(t) {
			return t
		}
	}
	h := newSectionHeader("h2", g.targetID, htmldom.TextNode(g.title))
	t := htmldom.Element(like.Data, "class", "item-table")
	htmldom.InsertBefore(before, h)
	htmldom.InsertBefore(before, t)
	return t
}

// mirrorModuleSidebar keeps the sidebar's section links in step with the module page.
func mirrorModuleSidebar(doc *htmldom.Document, g moduleGroup, created, emptied bool) {
	sidebar := doc.Sidebar()
	if sidebar == nil {
		return
	}
	src := htmldom.FindFirst(sidebar, func(n *html.Node) bool {
		return htmldom.IsElement(n, "li") && htmldom.FindFirst(n, htmldom.ByAttr("href", "#"+g.sourceID)) != nil
	})
	if src == nil {
		return
	}
	if created && htmldom.FindFirst(sidebar, htmldom.ByAttr("href", "#"+g.targetID)) == nil {
		li := htmldom.Element("li")
		a := htmldom.Element("a", "href", "#"+g.targetID, "title", g.title)
		a.AppendChild(htmldom.TextNode(g.title))
		li.AppendChild(a)
		htmldom.InsertBefore(src, li)
	}
	if emptied {
		htmldom.Detach(src)
	}
}
