// Package linkverify checks that links in a refactored doc tree resolve offline:
// the target file exists and, for fragments, the target page carries that id.
package linkverify

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL       string // The URL or path
	Text      string // Link text/title
	Tag       string // HTML tag (a, img, script, link)
	Attribute string // Attribute containing the link (href, src)
}

var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"source": "src",
}

// ExtractLinks returns every checkable link in doc in document order.
func ExtractLinks(doc *htmldom.Document) []*Link {
	var links []*Link
	htmldom.Walk(doc.Root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		attr, ok := linkAttrs[n.Data]
		if !ok {
			return true
		}
		if val := htmldom.Attr(n, attr); val != "" {
			text := htmldom.NormalizedText(n)
			if n.Data == "img" {
				text = htmldom.Attr(n, "alt")
			}
			links = append(links, &Link{URL: val, Text: text, Tag: n.Data, Attribute: attr})
		}
		return true
	})
	return links
}

// isExternal reports links that cannot be checked against the tree.
func isExternal(u *url.URL) bool {
	switch u.Scheme {
	case "", "file":
		return u.Host != ""
	default:
		return true
	}
}

// isSkipped filters rustdoc's script-driven links: search queries and bare "#".
func isSkipped(raw string) bool {
	return raw == "#" || strings.HasPrefix(raw, "?") || strings.HasPrefix(raw, "javascript:")
}
