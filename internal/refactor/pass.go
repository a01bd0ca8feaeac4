package refactor

import (
	"net/url"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docrefactor/internal/htmldom"
	"git.home.luguber.info/inful/docrefactor/internal/util/sets"
)

// LinkState tracks one inherited page through discovery, fetch and merge.
type LinkState int

const (
	StateDiscovered LinkState = iota
	StateFetchPending
	StateFetchInFlight
	StateFetchFailed
	StateParsed
	StateMerged
)

func (s LinkState) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateFetchPending:
		return "fetch_pending"
	case StateFetchInFlight:
		return "fetch_in_flight"
	case StateFetchFailed:
		return "fetch_failed"
	case StateParsed:
		return "parsed"
	case StateMerged:
		return "merged"
	default:
		return "unknown"
	}
}

// InheritLink is one fetched "inherits from" relationship.
type InheritLink struct {
	Name     string // link text, e.g. "Container"
	LinkHTML string // rendered <a> pointing at the inherited page
	URL      string // page URL without fragment
	Page     *htmldom.Document
	State    LinkState
	Err      error

	block  *html.Node // "Inherits from" block; lives in the page that discovered the link until merged
	origin *url.URL   // page that discovered the link; its header links are relative to it
}

// Stats counts what a pass changed.
type Stats struct {
	PropertiesMoved int
	Overrides       int
	WidgetsMoved    int
	InheritsMerged  int
	InheritsFailed  int
}

// Pass is the accumulator threaded through one top-level refactor and all of its recursive fetches.
type Pass struct {
	// Properties holds every property name classified so far; first occurrence wins.
	Properties sets.Set[string]
	// Fetched holds page URLs already requested (or being refactored).
	Fetched sets.Set[string]
	// Inherits lists discovered links in discovery order, failed fetches included.
	Inherits []*InheritLink

	Stats Stats
}

// NewPass creates an empty pass.
func NewPass() *Pass {
	return &Pass{
		Properties: sets.New[string](),
		Fetched:    sets.New[string](),
	}
}
