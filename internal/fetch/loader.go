package fetch

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
)

// Loader fetches and parses pages, following one level of <meta http-equiv="refresh"> redirect.
type Loader struct {
	fetcher Fetcher
}

// NewLoader wraps a Fetcher.
func NewLoader(f Fetcher) *Loader {
	return &Loader{fetcher: f}
}

// Load retrieves pageURL and returns the parsed document, located at its final URL.
func (l *Loader) Load(ctx context.Context, pageURL string) (*htmldom.Document, error) {
	doc, err := l.loadOnce(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	target := MetaRefreshTarget(doc.Root)
	if target == "" {
		return doc, nil
	}
	next, err := doc.Resolve(target)
	if err != nil {
		return nil, derrors.ParseFailed(pageURL, err)
	}
	// Redirect pages of re-exported items point at the canonical page; never chase further.
	return l.loadOnce(ctx, next.String())
}

func (l *Loader) loadOnce(ctx context.Context, pageURL string) (*htmldom.Document, error) {
	resp, err := l.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := htmldom.Parse(bytes.NewReader(resp.Body), resp.URL)
	if err != nil {
		return nil, derrors.ParseFailed(resp.URL, err)
	}
	return doc, nil
}

// MetaRefreshTarget returns the URL of a meta refresh redirect, or "".
func MetaRefreshTarget(root *html.Node) string {
	meta := htmldom.FindFirst(root, func(n *html.Node) bool {
		return htmldom.IsElement(n, "meta") && strings.EqualFold(htmldom.Attr(n, "http-equiv"), "refresh")
	})
	if meta == nil {
		return ""
	}
	content := htmldom.Attr(meta, "content")
	// content is "<delay>;URL=<target>" with optional spaces and quotes.
	_, rest, ok := strings.Cut(content, ";")
	if !ok {
		return ""
	}
	rest = strings.TrimSpace(rest)
	if len(rest) >= 4 && strings.EqualFold(rest[:4], "url=") {
		rest = rest[4:]
	}
	return strings.Trim(strings.TrimSpace(rest), `'"`)
}
