package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/fetch"
	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
	"git.home.luguber.info/inful/docrefactor/internal/refactor"
)

// PageMatcher decides which pages are refactored.
type PageMatcher interface {
	Match(rel string) bool
}

// DocsHandlers serves a rustdoc output tree, refactoring each HTML page on request.
type DocsHandlers struct {
	root         string
	engine       *refactor.Engine
	matcher      PageMatcher
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewDocsHandlers creates the docs handler for the absolute directory root.
func NewDocsHandlers(root string, engine *refactor.Engine, matcher PageMatcher) *DocsHandlers {
	return &DocsHandlers{
		root:         root,
		engine:       engine,
		matcher:      matcher,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandlePage serves the file named by the route's wildcard.
func (h *DocsHandlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	full := filepath.Join(h.root, filepath.FromSlash(rel))
	if full != h.root && !strings.HasPrefix(full, h.root+string(filepath.Separator)) {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationFailed("path", "outside the doc root"))
		return
	}

	st, err := os.Stat(full)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.NotFound(rel))
		return
	}
	if st.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		full = filepath.Join(full, "index.html")
		rel = path.Join(rel, "index.html")
		if _, err := os.Stat(full); err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, derrors.NotFound(rel))
			return
		}
	}

	if !strings.HasSuffix(full, ".html") || !h.matcher.Match(rel) {
		http.ServeFile(w, r, full)
		return
	}
	h.servePage(w, r, full, rel)
}

func (h *DocsHandlers) servePage(w http.ResponseWriter, r *http.Request, full, rel string) {
	data, err := os.ReadFile(full)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.PageFailed(rel, err))
		return
	}
	pageURL, err := fetch.FileURL(full)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.PageFailed(rel, err))
		return
	}
	doc, err := htmldom.Parse(bytes.NewReader(data), pageURL)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.ParseFailed(pageURL, err))
		return
	}

	if fetch.MetaRefreshTarget(doc.Root) == "" {
		ctx := observability.WithPage(r.Context(), rel)
		if _, err := h.engine.Refactor(ctx, doc); err != nil {
			h.errorAdapter.WriteErrorResponse(w, r, err)
			return
		}
		data = doc.Bytes()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
