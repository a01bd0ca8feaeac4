package refactor

import (
	"context"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
)

// fetchInherits loads registered pages one at a time in discovery order and refactors
// each fetched page before moving on, so nested links are discovered depth first.
// A failed fetch only affects its own block.
func (e *Engine) fetchInherits(ctx context.Context, pass *Pass, pending []*pendingInherit) error {
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		link := p.link
		link.State = StateFetchInFlight
		htmldom.SetAttr(link.block, inheritsStateAttr, link.State.String())

		page, err := e.load(ctx, link.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failInherit(link, p.loading, err)
			pass.Inherits = append(pass.Inherits, link)
			pass.Stats.InheritsFailed++
			e.recorder.IncInheritResult(metrics.ResultFailed)
			observability.WarnContext(ctx, "Failed to load inherited page",
				logfields.Inherit(link.Name), logfields.URL(link.URL), logfields.Error(err))
			continue
		}

		// a meta refresh may land on a page reached through another link already
		if final := pageKey(page.URL); final != link.URL && !pass.Fetched.AddNew(final) {
			htmldom.Detach(link.block)
			e.recorder.IncInheritResult(metrics.ResultSkipped)
			continue
		}

		link.Page = page
		link.State = StateParsed
		htmldom.SetAttr(link.block, inheritsStateAttr, link.State.String())
		htmldom.Detach(p.loading)
		pass.Inherits = append(pass.Inherits, link)
		observability.DebugContext(ctx, "Loaded inherited page",
			logfields.Inherit(link.Name), logfields.URL(link.URL))

		if err := e.RefactorDocument(observability.Nested(ctx), page, pass); err != nil {
			return err
		}
	}
	return nil
}

// failInherit swaps the loading placeholder for an inline error.
func failInherit(link *InheritLink, loading *html.Node, err error) {
	link.State = StateFetchFailed
	link.Err = err
	msg := htmldom.Element("div", "class", "inherits-error", "role", "alert")
	msg.AppendChild(htmldom.TextNode("Failed to load " + link.Name + ": " + err.Error()))
	if loading.Parent != nil {
		htmldom.InsertBefore(loading, msg)
		htmldom.Detach(loading)
	} else {
		htmldom.AppendChild(link.block, msg)
	}
	htmldom.SetAttr(link.block, inheritsStateAttr, link.State.String())
}
