// Package refactor reorganizes rendered API documentation pages: property
// functions get their own sections, inherited pages reached through Deref
// chains are fetched and merged, and the sidebar follows the main content.
package refactor

import (
	"context"
	"errors"
	"time"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
)

// PageLoader fetches and parses an inherited page.
type PageLoader interface {
	Load(ctx context.Context, pageURL string) (*htmldom.Document, error)
}

var errNoLoader = errors.New("no page loader configured")

// Engine runs refactor passes. It holds no per-pass state and is safe for concurrent use
// as long as each call works on its own documents.
type Engine struct {
	loader   PageLoader
	recorder metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewEngine creates an engine fetching inherited pages through loader. A nil loader
// disables fetching; every inherit link then fails with an inline error.
func NewEngine(loader PageLoader, opts ...Option) *Engine {
	e := &Engine{loader: loader, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Refactor runs a complete top-level pass over doc: reorganize, fetch inherited pages
// depth first, then merge everything fetched into doc.
func (e *Engine) Refactor(ctx context.Context, doc *htmldom.Document) (*Pass, error) {
	start := time.Now()
	pass := NewPass()

	if err := e.RefactorDocument(ctx, doc, pass); err != nil {
		e.recorder.IncPageResult(metrics.ResultFailed)
		return pass, err
	}
	e.MergeInherits(doc, pass)

	e.recorder.ObservePageDuration(time.Since(start))
	e.recorder.AddPropertiesMoved(pass.Stats.PropertiesMoved)
	e.recorder.IncPageResult(metrics.ResultSuccess)
	observability.DebugContext(ctx, "Page refactored",
		logfields.Count(pass.Stats.PropertiesMoved),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return pass, nil
}

// RefactorDocument reorganizes one page and recursively fetches the pages it inherits from,
// accumulating into pass. Running it again over its own output changes nothing.
// The only error returned is context cancellation; fetch failures are reported inline.
func (e *Engine) RefactorDocument(ctx context.Context, doc *htmldom.Document, pass *Pass) error {
	if doc.URL != nil {
		pass.Fetched.Add(pageKey(doc.URL))
	}
	seedFromDocument(doc, pass)

	pending := e.refactorSections(ctx, doc, pass)
	e.refactorModuleIndex(ctx, doc, pass)
	e.refactorSidebar(doc, pass)

	return e.fetchInherits(ctx, pass, pending)
}

// seedFromDocument records what an earlier run over doc already produced.
func seedFromDocument(doc *htmldom.Document, pass *Pass) {
	for _, h := range propertiesHeaders(doc) {
		for _, entry := range methodEntries([]*html.Node{propertiesContainer(h)}) {
			if name := entryName(entry); name != "" {
				pass.Properties.Add(name)
			}
		}
	}
	for _, block := range htmldom.FindAll(doc.Root, htmldom.ByAttr(inheritsURLAttr, "")) {
		pass.Fetched.Add(htmldom.Attr(block, inheritsURLAttr))
	}
}

func (e *Engine) load(ctx context.Context, pageURL string) (*htmldom.Document, error) {
	if e.loader == nil {
		return nil, errNoLoader
	}
	return e.loader.Load(ctx, pageURL)
}
