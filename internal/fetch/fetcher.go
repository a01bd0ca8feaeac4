// Package fetch retrieves documentation pages referenced by "inherits from" links.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
)

// Response is a fetched page body together with the URL it was finally served from.
type Response struct {
	URL  string
	Body []byte
}

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Response, error)
}

// Mux dispatches to a Fetcher by URL scheme.
type Mux map[string]Fetcher

// NewMux registers http and https on httpFetcher and file on fileFetcher; nil fetchers are skipped.
func NewMux(httpFetcher, fileFetcher Fetcher) Mux {
	m := Mux{}
	if httpFetcher != nil {
		m["http"] = httpFetcher
		m["https"] = httpFetcher
	}
	if fileFetcher != nil {
		m["file"] = fileFetcher
	}
	return m
}

// Fetch implements Fetcher.
func (m Mux) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, derrors.FetchFailed(pageURL, fmt.Errorf("invalid URL: %w", err))
	}
	f, ok := m[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, derrors.FetchFailed(pageURL, fmt.Errorf("unsupported URL scheme: %q", u.Scheme))
	}
	return f.Fetch(ctx, pageURL)
}
