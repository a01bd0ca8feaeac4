package refactor

import (
	"context"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
)

// refactorProperties moves property-tagged entries of one method section into its
// Properties section. Entries for names already classified are overrides and get dropped.
// It returns how many entries left the section.
func (e *Engine) refactorProperties(ctx context.Context, doc *htmldom.Document, pass *Pass, sectionID string) int {
	header := doc.ByID(sectionID)
	if header == nil {
		return 0
	}

	touched := 0
	var container *html.Node
	for _, entry := range methodEntries(sectionBody(header)) {
		if !hasMarker(entry, propertyTag) {
			continue
		}
		name := entryName(entry)
		if name == "" {
			continue
		}
		if !pass.Properties.AddNew(name) {
			htmldom.Detach(entry)
			pass.Stats.Overrides++
			touched++
			observability.DebugContext(ctx, "Dropped overridden property",
				logfields.Property(name), logfields.Section(sectionID))
			continue
		}
		if container == nil {
			container = ensurePropertiesSection(doc, propertiesIDFor(sectionID), propertiesLabel(header))
			if container == nil {
				pass.Properties.Delete(name)
				break
			}
		}
		stripMarkers(entry, propertyTag)
		rewritePropertyHeader(entry, name)
		htmldom.AppendChild(container, entry)
		pass.Stats.PropertiesMoved++
		touched++
	}
	return touched
}

func propertiesIDFor(sectionID string) string {
	if sectionID == implementationsID {
		return propertiesID
	}
	return propertiesPrefix + sectionID
}

func propertiesLabel(header *html.Node) []*html.Node {
	if htmldom.ID(header) == implementationsID {
		return []*html.Node{htmldom.TextNode("Properties")}
	}
	label := []*html.Node{htmldom.TextNode("Properties from ")}
	if a := derefTarget(header); a != nil {
		link := htmldom.Element("a", "href", htmldom.Attr(a, "href"))
		if cls := htmldom.Attr(a, "class"); cls != "" {
			htmldom.SetAttr(link, "class", cls)
		}
		link.AppendChild(htmldom.TextNode(htmldom.NormalizedText(a)))
		return append(label, link)
	}
	return append(label, htmldom.TextNode(derefTargetName(header)))
}

// ensurePropertiesSection returns the entry container of the Properties section id,
// creating header and container before the properties sentinel.
func ensurePropertiesSection(doc *htmldom.Document, id string, label []*html.Node) *html.Node {
	if h := doc.ByID(id); h != nil {
		if c := propertiesContainer(h); c != nil {
			return c
		}
	}
	anchor := propertiesAnchor(doc)
	if anchor == nil {
		return nil
	}
	h := newSectionHeader("h2", id, label...)
	c := htmldom.Element("div", "id", id+"-list", "class", "impl-items "+propertiesClass)
	htmldom.InsertBefore(anchor, h)
	htmldom.InsertBefore(anchor, c)
	return c
}

// rewritePropertyHeader renders a property as "name;" instead of a full signature.
func rewritePropertyHeader(entry *html.Node, name string) {
	h := codeHeader(entry)
	if h == nil {
		return
	}
	href := "#method." + name
	if fn := htmldom.FindFirst(h, htmldom.And(htmldom.ByTag("a"), htmldom.ByClass("fn"))); fn != nil {
		if v := htmldom.Attr(fn, "href"); v != "" {
			href = v
		}
	}
	htmldom.RemoveChildren(h)
	a := htmldom.Element("a", "href", href, "class", "fn")
	a.AppendChild(htmldom.TextNode(name))
	h.AppendChild(a)
	h.AppendChild(htmldom.TextNode(";"))
}
