package linkverify

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
	"git.home.luguber.info/inful/docrefactor/internal/util/sets"
)

// Broken-link reasons.
const (
	ReasonMissingFile   = "missing file"
	ReasonMissingAnchor = "missing anchor"
	ReasonOutsideRoot   = "outside doc root"
	ReasonInvalidURL    = "invalid url"
)

// BrokenLink is a link whose target does not exist in the tree.
type BrokenLink struct {
	Page   string // page path relative to the root, slash separated
	URL    string
	Reason string
}

// PageMatcher selects the pages whose links are checked.
type PageMatcher interface {
	Match(rel string) bool
}

// Verifier checks links below one directory. Parsed target ids are cached per file.
type Verifier struct {
	root string
	ids  map[string]sets.Set[string]
}

// NewVerifier creates a Verifier for the absolute directory root.
func NewVerifier(root string) *Verifier {
	return &Verifier{root: root, ids: make(map[string]sets.Set[string])}
}

// VerifyTree checks every matching HTML page below the root.
func (v *Verifier) VerifyTree(ctx context.Context, matcher PageMatcher) ([]BrokenLink, error) {
	var pages []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return walkErr
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return err
		}
		if rel = filepath.ToSlash(rel); matcher == nil || matcher.Match(rel) {
			pages = append(pages, rel)
		}
		return nil
	})
	if err != nil {
		return nil, derrors.PageFailed(v.root, err)
	}

	var broken []BrokenLink
	for _, rel := range pages {
		if err := ctx.Err(); err != nil {
			return broken, err
		}
		found, err := v.VerifyPage(rel)
		if err != nil {
			observability.WarnContext(ctx, "Skipping unreadable page", logfields.Page(rel), logfields.Error(err))
			continue
		}
		broken = append(broken, found...)
	}
	return broken, nil
}

// VerifyPage checks the links of one page given relative to the root.
func (v *Verifier) VerifyPage(rel string) ([]BrokenLink, error) {
	doc, err := v.parse(rel)
	if err != nil {
		return nil, err
	}
	var broken []BrokenLink
	for _, link := range ExtractLinks(doc) {
		if reason := v.check(rel, doc, link.URL); reason != "" {
			broken = append(broken, BrokenLink{Page: rel, URL: link.URL, Reason: reason})
		}
	}
	return broken, nil
}

func (v *Verifier) check(page string, doc *htmldom.Document, raw string) string {
	if isSkipped(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ReasonInvalidURL
	}
	if isExternal(u) {
		return ""
	}

	target := page
	switch {
	case u.Scheme == "file":
		rel, relErr := filepath.Rel(v.root, filepath.FromSlash(u.Path))
		if relErr != nil {
			return ReasonOutsideRoot
		}
		target = filepath.ToSlash(rel)
	case u.Path != "":
		target = path.Join(path.Dir(page), u.Path)
	}
	if target == ".." || strings.HasPrefix(target, "../") {
		return ReasonOutsideRoot
	}

	full := filepath.Join(v.root, filepath.FromSlash(target))
	st, err := os.Stat(full)
	if err != nil {
		return ReasonMissingFile
	}
	if st.IsDir() {
		target = path.Join(target, "index.html")
		if _, err := os.Stat(filepath.Join(v.root, filepath.FromSlash(target))); err != nil {
			return ReasonMissingFile
		}
	}

	if u.Fragment == "" || !strings.HasSuffix(target, ".html") {
		return ""
	}
	if target == page {
		if doc.HasID(u.Fragment) {
			return ""
		}
		return ReasonMissingAnchor
	}
	ids, err := v.targetIDs(target)
	if err != nil {
		return ReasonMissingFile
	}
	if !ids.Has(u.Fragment) {
		return ReasonMissingAnchor
	}
	return ""
}

func (v *Verifier) targetIDs(rel string) (sets.Set[string], error) {
	if ids, ok := v.ids[rel]; ok {
		return ids, nil
	}
	doc, err := v.parse(rel)
	if err != nil {
		return nil, err
	}
	ids := sets.New[string]()
	htmldom.Walk(doc.Root, func(n *html.Node) bool {
		if id := htmldom.ID(n); id != "" {
			ids.Add(id)
		}
		return true
	})
	v.ids[rel] = ids
	return ids, nil
}

func (v *Verifier) parse(rel string) (*htmldom.Document, error) {
	f, err := os.Open(filepath.Join(v.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	doc, err := htmldom.Parse(f, "")
	if err != nil {
		return nil, derrors.ParseFailed(rel, err)
	}
	return doc, nil
}
