package nav

// Route names a screen "back" can lead to
type Route string

const (
	RouteSearch Route = "search"
	RouteBook   Route = "book"
)

// Destination is where back navigation lands and the state to carry there.
// Session is set for RouteSearch; Target and Context for RouteBook.
type Destination struct {
	Route      Route
	Target     BookID
	Session    SearchSession
	HasSession bool
	Context    Context
}

// ResolveBack computes the destination of a back action from a screen that
// was entered with ctx.
//
// A FromBook link returns to the parent book carrying the parent's own
// context, so repeated calls walk the chain one link at a time. FromSearch
// returns to the search screen with the session restored verbatim. Root and
// anything malformed fall back to an empty search.
func ResolveBack(ctx Context) Destination {
	switch ctx.kind {
	case KindFromBook:
		if ctx.parent != nil && ctx.parentID > 0 {
			return Destination{
				Route:   RouteBook,
				Target:  ctx.parentID,
				Context: *ctx.parent,
			}
		}
	case KindFromSearch:
		if ctx.session.Valid() {
			return Destination{
				Route:      RouteSearch,
				Session:    ctx.session,
				HasSession: true,
			}
		}
	}
	return Destination{
		Route:      RouteSearch,
		Session:    EmptySession(),
		HasSession: true,
	}
}
