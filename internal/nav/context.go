// Package nav records how a screen was reached and works out where "back"
// leads from there.
package nav

import "fmt"

// Kind tags the variant held by a Context
type Kind int

const (
	KindRoot Kind = iota
	KindFromSearch
	KindFromBook
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindFromSearch:
		return "from-search"
	case KindFromBook:
		return "from-book"
	default:
		return "unknown"
	}
}

// Context is the provenance of a book screen: a fresh entry, a click on a
// search hit, or a click on another book's recommendation. Values are
// immutable; FromBook stores its own copy of the parent, so a chain can
// never be edited after the fact or loop back on itself, even when the same
// book id appears more than once along it.
//
// The zero value is Root.
type Context struct {
	kind     Kind
	session  SearchSession
	parentID BookID
	parent   *Context
}

// Root returns the context of a screen entered with no history
func Root() Context {
	return Context{}
}

// FromSearch returns the context of a book opened from a search result
func FromSearch(session SearchSession) Context {
	return Context{kind: KindFromSearch, session: session}
}

// FromBook returns the context of a book opened from parentID's
// recommendation list while parentID itself had parentCtx.
func FromBook(parentID BookID, parentCtx Context) Context {
	parent := parentCtx
	return Context{kind: KindFromBook, parentID: parentID, parent: &parent}
}

// Kind returns the variant tag
func (c Context) Kind() Kind {
	return c.kind
}

// Session returns the search session of a FromSearch context
func (c Context) Session() (SearchSession, bool) {
	if c.kind != KindFromSearch {
		return SearchSession{}, false
	}
	return c.session, true
}

// Parent returns the parent book and its context for a FromBook context
func (c Context) Parent() (BookID, Context, bool) {
	if c.kind != KindFromBook || c.parent == nil {
		return 0, Root(), false
	}
	return c.parentID, *c.parent, true
}

// Depth returns the number of FromBook links before the chain ends
func (c Context) Depth() int {
	depth := 0
	for cur := c; cur.kind == KindFromBook && cur.parent != nil; cur = *cur.parent {
		depth++
	}
	return depth
}

// String renders the chain, innermost link first
func (c Context) String() string {
	switch c.kind {
	case KindFromSearch:
		return fmt.Sprintf("search(%q, %s, page %d)", c.session.Query, c.session.Mode, c.session.Page)
	case KindFromBook:
		if c.parent == nil {
			return "book(?)"
		}
		return fmt.Sprintf("book(%d) <- %s", c.parentID, c.parent.String())
	default:
		return "root"
	}
}

// BookView is the state a detail screen needs to render and later go back
type BookView struct {
	ID      BookID
	Context Context
}

// Next returns the context of a book opened from this screen
func (b BookView) Next() Context {
	return FromBook(b.ID, b.Context)
}
