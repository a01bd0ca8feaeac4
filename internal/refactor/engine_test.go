package refactor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
)

const rootURL = baseURL + "struct.P.html"

func TestRefactor_SplitsPropertiesFromMethods(t *testing.T) {
	doc := parsePage(t, pageHTML("P", impls(nil, prop("foo"), method("bar"))), rootURL)

	pass, err := NewEngine(nil).Refactor(context.Background(), doc)
	require.NoError(t, err)

	props := doc.ByID("properties-list")
	require.Equal(t, []string{"foo"}, entryNames(props))
	require.Equal(t, []string{"bar"}, entryNames(doc.ByID("implementations-list")))
	require.True(t, before(doc, doc.ByID("properties"), doc.ByID(implementationsID)))
	require.Equal(t, "Properties", headerText(doc.ByID("properties")))
	require.Equal(t, "foo;", htmldom.NormalizedText(codeHeader(props)))
	require.False(t, hasMarker(props, propertyTag))
	require.Equal(t, 1, pass.Stats.PropertiesMoved)

	sidebar := doc.Sidebar()
	require.Equal(t, []string{"foo"}, sidebarNames(sidebarListFor(sidebar, "properties")))
	require.Equal(t, []string{"bar"}, sidebarNames(sidebarListFor(sidebar, implementationsID)))
}

func TestRefactor_PreservesOrder(t *testing.T) {
	doc := parsePage(t, pageHTML("P", impls(nil, prop("a"), method("b"), prop("c"), prop("d"))), rootURL)

	_, err := NewEngine(nil).Refactor(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, []string{"a", "c", "d"}, entryNames(doc.ByID("properties-list")))
	require.Equal(t, []string{"b"}, entryNames(doc.ByID("implementations-list")))
	require.Equal(t, []string{"a", "c", "d"}, sidebarNames(sidebarListFor(doc.Sidebar(), "properties")))
}

func TestRefactor_InnerPropertyOverridesInherited(t *testing.T) {
	doc := parsePage(t, pageHTML("P",
		impls(nil, prop("foo")),
		deref("Q", nil, prop("foo"), prop("baz"), method("qm")),
	), rootURL)

	pass, err := NewEngine(nil).Refactor(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, []string{"foo"}, entryNames(doc.ByID("properties-list")))
	require.Equal(t, []string{"baz"}, entryNames(doc.ByID("properties-deref-methods-Q-list")))
	require.Equal(t, "Properties from Q", headerText(doc.ByID("properties-deref-methods-Q")))
	require.Equal(t, []string{"qm"}, entryNames(doc.ByID("deref-methods-Q-list")))
	require.Equal(t, 1, pass.Stats.Overrides)

	// the implementations section held only the property and is gone
	require.Nil(t, doc.ByID(implementationsID))

	sidebar := doc.Sidebar()
	require.Nil(t, sidebarListFor(sidebar, implementationsID))
	require.Equal(t, []string{"foo"}, sidebarNames(sidebarListFor(sidebar, "properties")))
	require.Equal(t, []string{"baz"}, sidebarNames(sidebarListFor(sidebar, "properties-deref-methods-Q")))
	require.Equal(t, []string{"qm"}, sidebarNames(sidebarListFor(sidebar, "deref-methods-Q")))
}

func TestRefactor_PageWithoutPropertiesIsUnchanged(t *testing.T) {
	doc := parsePage(t, pageHTML("P", impls(nil, method("a"), method("b")), deref("Q", nil, method("c"))), rootURL)
	want := string(doc.Bytes())

	pass, err := NewEngine(nil).Refactor(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, want, string(doc.Bytes()))
	require.Empty(t, pass.Inherits)
}

func TestRefactor_FailedFetchIsIsolated(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.R.html": pageHTML("R", impls(nil, method("rm"), static("new"))),
	})
	doc := parsePage(t, pageHTML("P",
		impls(refs("Q"), method("own")),
		deref("Q", refs("Missing", "R"), method("qm")),
	), rootURL)

	pass, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	blocks := inheritBlocks(doc)
	require.Len(t, blocks, 2)

	failed := blocks[0]
	require.Equal(t, baseURL+"struct.Missing.html", htmldom.Attr(failed, inheritsURLAttr))
	require.Equal(t, StateFetchFailed.String(), htmldom.Attr(failed, inheritsStateAttr))
	msg := htmldom.FindFirst(failed, htmldom.ByClass("inherits-error"))
	require.NotNil(t, msg)
	require.Contains(t, htmldom.Text(msg), "HTTP 404")
	require.Nil(t, htmldom.FindFirst(failed, htmldom.ByClass("inherits-loading")))

	merged := blocks[1]
	require.Equal(t, StateMerged.String(), htmldom.Attr(merged, inheritsStateAttr))
	require.Equal(t, []string{"rm"}, entryNames(merged), "static functions are not inherited")
	require.NotNil(t, htmldom.FindFirst(merged, htmldom.ByAttr("href", baseURL+"struct.Other.html")))
	require.NotNil(t, htmldom.FindFirst(merged, htmldom.ByAttr("href", "#method.rm")))
	require.True(t, before(doc, doc.ByID("deref-methods-Q-list"), failed))

	require.Len(t, pass.Inherits, 2)
	require.Equal(t, StateFetchFailed, pass.Inherits[0].State)
	require.Equal(t, StateMerged, pass.Inherits[1].State)
	require.Equal(t, 1, pass.Stats.InheritsFailed)
	require.Equal(t, 1, pass.Stats.InheritsMerged)
	require.Equal(t, 1, loader.calls[baseURL+"struct.Missing.html"])
	require.Zero(t, loader.calls[baseURL+"struct.Q.html"], "first reference is inlined already")
}

func TestRefactor_NestedFailedFetchShowsInRoot(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.R.html": pageHTML("R", impls(refs("S", "Missing"), method("r1"))),
	})
	doc := parsePage(t, pageHTML("P", impls(refs("Q", "R"), method("p1"))), rootURL)

	pass, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	blocks := inheritBlocks(doc)
	require.Len(t, blocks, 2)
	require.Equal(t, baseURL+"struct.R.html", htmldom.Attr(blocks[0], inheritsURLAttr))
	require.Equal(t, StateMerged.String(), htmldom.Attr(blocks[0], inheritsStateAttr))
	require.Equal(t, []string{"r1"}, entryNames(blocks[0]))

	failed := blocks[1]
	require.True(t, htmldom.Contains(doc.MainContent(), failed))
	require.Equal(t, StateFetchFailed.String(), htmldom.Attr(failed, inheritsStateAttr))
	msg := htmldom.FindFirst(failed, htmldom.ByClass("inherits-error"))
	require.NotNil(t, msg)
	require.Contains(t, htmldom.Text(msg), "Failed to load Missing: HTTP 404")
	require.NotNil(t, htmldom.FindFirst(failed, htmldom.ByAttr("href", baseURL+"struct.Missing.html")))
	require.NotNil(t, doc.ByID("inherits-missing"))

	require.Len(t, pass.Inherits, 2)
	require.Equal(t, "Missing", pass.Inherits[1].Name)
	require.Equal(t, 1, pass.Stats.InheritsFailed)
	require.Equal(t, 1, pass.Stats.InheritsMerged)
}

func TestRefactor_NestedInheritHeaderLinksFollowRoot(t *testing.T) {
	const (
		pURL = "file:///docs/zng/widget/struct.P.html"
		rURL = "file:///docs/zng_wgt/struct.R.html"
		tURL = "file:///docs/zng_wgt/struct.T.html"
	)
	loader := newFakeLoader(map[string]string{
		rURL: pageHTML("R", impls(refs("S", "T"), method("r1"))),
		tURL: pageHTML("T", impls(nil, method("t1"))),
	})
	r := testRef{href: "../../zng_wgt/struct.R.html", name: "R"}
	doc := parsePage(t, pageHTML("P", impls([]testRef{{href: "struct.Q.html", name: "Q"}, r}, method("p1"))), pURL)
	// an unrelated element already owns the id the nested block would take
	htmldom.AppendChild(doc.MainContent(), htmldom.Element("div", "id", "inherits-t"))

	_, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	blocks := inheritBlocks(doc)
	require.Len(t, blocks, 2)
	require.NotNil(t, htmldom.FindFirst(blocks[0], htmldom.ByAttr("href", "../../zng_wgt/struct.R.html")))

	nested := blocks[1]
	require.Equal(t, []string{"t1"}, entryNames(nested))
	summary := htmldom.FindFirst(nested, htmldom.ByTag("summary"))
	require.NotNil(t, htmldom.FindFirst(summary, htmldom.ByAttr("href", "../../zng_wgt/struct.T.html")))
	require.Nil(t, htmldom.FindFirst(summary, htmldom.ByAttr("href", "struct.T.html")))
	require.NotNil(t, htmldom.FindFirst(nested, htmldom.ByAttr("href", "../../zng_wgt/struct.Other.html")))

	heading := htmldom.FindFirst(summary, htmldom.ByClass("section-header"))
	require.Equal(t, "inherits-t-1", htmldom.ID(heading))
	require.NotNil(t, htmldom.FindFirst(heading, htmldom.ByAttr("href", "#inherits-t-1")))
	require.Len(t, htmldom.FindAll(doc.Root, htmldom.ByAttr("id", "inherits-t")), 1)
}

func TestRefactor_RootPropertyOverridesFetchedPage(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.Q.html": pageHTML("Q", impls(nil, prop("foo"), prop("qp"), method("qm"))),
	})
	doc := parsePage(t, pageHTML("P", impls(refs("X", "Q"), prop("foo"), method("own"))), rootURL)

	pass, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, []string{"foo"}, entryNames(doc.ByID("properties-list")))
	require.Equal(t, []string{"qp"}, entryNames(doc.ByID("properties-from-q-list")))
	require.Equal(t, "Properties from Q", headerText(doc.ByID("properties-from-q")))
	require.Len(t, htmldom.FindAll(doc.Root, htmldom.ByAttr("id", "method.foo")), 1)
	require.Equal(t, []string{"qm"}, entryNames(inheritBlocks(doc)[0]))
	require.Equal(t, 1, pass.Stats.Overrides)
}

func TestRefactor_CycleTerminates(t *testing.T) {
	a := pageHTML("A", impls(refs("X", "B"), method("a1")))
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.A.html": a,
		baseURL + "struct.B.html": pageHTML("B", impls(refs("Y", "A"), method("b1"))),
	})
	doc := parsePage(t, a, baseURL+"struct.A.html")

	pass, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, 1, loader.calls[baseURL+"struct.B.html"])
	require.Zero(t, loader.calls[baseURL+"struct.A.html"])
	require.Len(t, pass.Inherits, 1)
	require.Equal(t, []string{"b1"}, entryNames(inheritBlocks(doc)[0]))
}

func TestRefactor_NestedInheritsDepthFirst(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.R.html": pageHTML("R", impls(refs("S", "T"), method("r1"), prop("rp"))),
		baseURL + "struct.T.html": pageHTML("T", impls(nil, method("t1"))),
		baseURL + "struct.U.html": pageHTML("U", impls(nil, method("u1"))),
	})
	doc := parsePage(t, pageHTML("P", impls(refs("Q", "R", "U"), method("p1"))), rootURL)

	pass, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	var names []string
	for _, l := range pass.Inherits {
		names = append(names, l.Name)
		require.Equal(t, StateMerged, l.State)
	}
	require.Equal(t, []string{"R", "T", "U"}, names)

	blocks := inheritBlocks(doc)
	require.Len(t, blocks, 3)
	require.Equal(t, []string{"r1"}, entryNames(blocks[0]))
	require.Equal(t, []string{"t1"}, entryNames(blocks[1]))
	require.Equal(t, []string{"u1"}, entryNames(blocks[2]))
	for _, b := range blocks {
		require.True(t, htmldom.Contains(doc.MainContent(), b))
	}

	require.Equal(t, []string{"rp"}, entryNames(doc.ByID("properties-from-r-list")))
	require.Equal(t, "Properties from R", headerText(doc.ByID("properties-from-r")))
	require.True(t, before(doc, doc.ByID("properties-from-r"), doc.ByID(implementationsID)))
	require.Equal(t, []string{"rp"}, sidebarNames(sidebarListFor(doc.Sidebar(), "properties-from-r")))
}

func TestRefactor_InheritedDerefSectionsMoveForward(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.R.html": pageHTML("R",
			impls(nil, method("r1")),
			deref("S", nil, method("s1"), static("s_new")),
			deref("Q", nil, method("dup")),
		),
	})
	doc := parsePage(t, pageHTML("P",
		impls(refs("Q", "R"), method("p1")),
		deref("Q", nil, method("q1")),
	), rootURL)

	_, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)

	block := inheritBlocks(doc)[0]
	sub := htmldom.FindFirst(block, htmldom.ByAttr("id", "deref-methods-S"))
	require.NotNil(t, sub)
	require.Equal(t, []string{"r1", "s1"}, entryNames(block))
	// root already shows Q's methods
	require.Len(t, htmldom.FindAll(doc.Root, htmldom.ByAttr("id", "deref-methods-Q")), 1)
}

func TestRefactor_InheritedMethodShadowedByRoot(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.R.html": pageHTML("R", impls(nil, method("shared"), method("only_r"))),
	})
	doc := parsePage(t, pageHTML("P", impls(refs("Q", "R"), method("shared"))), rootURL)

	_, err := NewEngine(loader).Refactor(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []string{"only_r"}, entryNames(inheritBlocks(doc)[0]))
}

func TestRefactor_Idempotent(t *testing.T) {
	loader := newFakeLoader(map[string]string{
		baseURL + "struct.R.html": pageHTML("R", impls(nil, method("rm"), prop("rp"))),
	})
	doc := parsePage(t, pageHTML("P",
		impls(refs("Q"), prop("foo"), method("own")),
		deref("Q", refs("Missing", "R"), prop("qp"), method("qm")),
	), rootURL)

	engine := NewEngine(loader)
	_, err := engine.Refactor(context.Background(), doc)
	require.NoError(t, err)
	first := string(doc.Bytes())
	calls := loader.total()

	again := parsePage(t, first, rootURL)
	pass, err := engine.Refactor(context.Background(), again)
	require.NoError(t, err)

	if diff := cmp.Diff(first, string(again.Bytes())); diff != "" {
		t.Fatalf("second pass changed the page (-first +second):\n%s", diff)
	}
	require.Equal(t, calls, loader.total())
	require.Zero(t, pass.Stats.PropertiesMoved)
	require.Empty(t, pass.Inherits)
}

func TestRefactor_NoLoaderReportsInline(t *testing.T) {
	doc := parsePage(t, pageHTML("P", impls(refs("Q", "R"), method("p1"))), rootURL)

	pass, err := NewEngine(nil).Refactor(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, pass.Stats.InheritsFailed)
	msg := htmldom.FindFirst(doc.Root, htmldom.ByClass("inherits-error"))
	require.Contains(t, htmldom.Text(msg), errNoLoader.Error())
}

func TestRefactor_Canceled(t *testing.T) {
	loader := newFakeLoader(nil)
	doc := parsePage(t, pageHTML("P", impls(refs("Q", "R"), method("p1"))), rootURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(loader).Refactor(ctx, doc)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, loader.total())
}

func TestLinkState_String(t *testing.T) {
	require.Equal(t, "fetch_pending", StateFetchPending.String())
	require.Equal(t, "merged", StateMerged.String())
	require.Equal(t, "unknown", LinkState(42).String())
}
