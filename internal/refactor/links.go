package refactor

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
)

var linkAttrs = []string{"href", "src"}

// pageKey identifies a page: its URL without fragment.
func pageKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	cp := *u
	cp.Fragment = ""
	cp.RawFragment = ""
	return cp.String()
}

// rewriteLinks makes links inside n, which was moved from the page at origin, valid from root.
// Inherit markers are dropped so a later pass does not treat moved headers as references.
func rewriteLinks(root *htmldom.Document, origin *url.URL, n *html.Node) {
	htmldom.Walk(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return true
		}
		for _, key := range linkAttrs {
			if htmldom.HasAttr(c, key) {
				htmldom.SetAttr(c, key, relink(root, origin, htmldom.Attr(c, key)))
			}
		}
		htmldom.RemoveAttr(c, inheritsAttr)
		return true
	})
}

func relink(root *htmldom.Document, origin *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || isOpaqueLink(raw) {
		return raw
	}
	if strings.HasPrefix(raw, "#") && root.HasID(raw[1:]) {
		return raw
	}
	if origin == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return linkTo(root, origin.ResolveReference(ref))
}

func isOpaqueLink(raw string) bool {
	lower := strings.ToLower(raw)
	for _, scheme := range []string{"javascript:", "mailto:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// linkTo writes target as seen from root's page: a bare fragment for anchors inside root,
// a relative path between two local files, and an absolute URL otherwise.
func linkTo(root *htmldom.Document, target *url.URL) string {
	base := root.URL
	if base == nil {
		return target.String()
	}
	if pageKey(base) == pageKey(target) && target.Fragment != "" && root.HasID(target.Fragment) {
		return "#" + target.EscapedFragment()
	}
	if base.Scheme == "file" && target.Scheme == "file" && base.Host == target.Host {
		out := relativePath(path.Dir(base.Path), target.Path)
		if target.RawQuery != "" {
			out += "?" + target.RawQuery
		}
		if target.Fragment != "" {
			out += "#" + target.EscapedFragment()
		}
		return out
	}
	return target.String()
}

// relativePath returns the slash path leading from directory fromDir to file to.
func relativePath(fromDir, to string) string {
	from := splitPath(fromDir)
	dst := splitPath(to)
	i := 0
	for i < len(from) && i < len(dst)-1 && from[i] == dst[i] {
		i++
	}
	parts := make([]string, 0, len(from)-i+len(dst)-i)
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, dst[i:]...)
	if len(parts) == 0 {
		return "./"
	}
	return strings.Join(parts, "/")
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
