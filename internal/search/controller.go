package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/justyntemme/bookseek-t/internal/nav"
)

// Request is one issued search. Token orders requests from the same
// controller; only the newest one may change its state.
type Request struct {
	Token    uint64
	Session  nav.SearchSession
	PageSize int
}

// Do performs the request against backend
func (r Request) Do(ctx context.Context, backend Backend) Response {
	result, err := Run(ctx, backend, r.Session, r.PageSize)
	return Response{Token: r.Token, Session: r.Session, Result: result, Err: err}
}

// Response is the outcome of a Request
type Response struct {
	Token   uint64
	Session nav.SearchSession
	Result  Result
	Err     error
}

// Controller holds the search screen state. It is not safe for concurrent
// use; all calls are expected from the UI event loop, with Request.Do run
// off the loop.
type Controller struct {
	session  nav.SearchSession
	pageSize int

	result  Result
	hasRun  bool
	loading bool
	pending int // page of the newest request
	err     error

	token uint64
	log   zerolog.Logger
}

// NewController creates a controller with an empty session
func NewController(pageSize int, log zerolog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{
		session:  nav.EmptySession(),
		pageSize: pageSize,
		log:      log,
	}
}

// Session returns the current session
func (c *Controller) Session() nav.SearchSession { return c.session }

// Result returns the last applied result
func (c *Controller) Result() Result { return c.result }

// Loading reports whether the newest request is still pending
func (c *Controller) Loading() bool { return c.loading }

// Err returns the error of the newest completed request
func (c *Controller) Err() error { return c.err }

// HasRun reports whether any result has been applied since the last reset
func (c *Controller) HasRun() bool { return c.hasRun }

// PageSize returns the number of hits per page
func (c *Controller) PageSize() int { return c.pageSize }

// SetQuery changes the query; a different query starts again at page 1
func (c *Controller) SetQuery(q string) {
	if q != c.session.Query {
		c.session.Query = q
		c.session.Page = 1
	}
}

// SetMode changes the search mode, resetting the page when it differs
func (c *Controller) SetMode(m nav.Mode) {
	if m != c.session.Mode {
		c.session.Mode = m
		c.session.Page = 1
	}
}

// SetAdvanced toggles regex matching, resetting the page when it differs
func (c *Controller) SetAdvanced(advanced bool) {
	if advanced != c.session.Advanced {
		c.session.Advanced = advanced
		c.session.Page = 1
	}
}

// SetRankMode changes keyword ranking, resetting the page when it differs
func (c *Controller) SetRankMode(r nav.RankMode) {
	if r != c.session.RankMode {
		c.session.RankMode = r
		c.session.Page = 1
	}
}

// SetPage changes only the page
func (c *Controller) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.session.Page = page
}

// Restore installs a session exactly as given, e.g. when navigating back.
// Results of the previous session are dropped along with any request still
// in flight.
func (c *Controller) Restore(s nav.SearchSession) {
	if !s.Valid() {
		s = nav.EmptySession()
	}
	c.session = s
	c.clear()
}

// Reset returns to an empty session and forgets prior results. Any request
// still in flight is invalidated.
func (c *Controller) Reset() {
	c.session = nav.EmptySession()
	c.clear()
}

func (c *Controller) clear() {
	c.result = Result{}
	c.hasRun = false
	c.loading = false
	c.err = nil
	c.token++
}

// Begin issues a request for the current session. It returns false without
// touching any state when the query is blank.
func (c *Controller) Begin() (Request, bool) {
	return c.begin(c.session)
}

func (c *Controller) begin(s nav.SearchSession) (Request, bool) {
	if strings.TrimSpace(s.Query) == "" {
		return Request{}, false
	}
	c.token++
	c.loading = true
	c.pending = s.Page
	return Request{Token: c.token, Session: s, PageSize: c.pageSize}, true
}

// Apply stores resp if it answers the newest request and reports whether it
// did. Replies to superseded requests are dropped.
func (c *Controller) Apply(resp Response) bool {
	if resp.Token != c.token {
		c.log.Debug().
			Uint64("token", resp.Token).
			Uint64("latest", c.token).
			Str("query", resp.Session.Query).
			Msg("discarding stale search response")
		return false
	}

	c.loading = false
	if resp.Err != nil {
		c.err = resp.Err
		return true
	}
	c.err = nil
	c.result = resp.Result
	c.hasRun = true
	c.session.Page = resp.Session.Page
	return true
}

// TotalPages returns the page count of the current result, at least 1
func (c *Controller) TotalPages() int {
	pages := (c.result.Total + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// page is the page of the newest pending request, or the session page
func (c *Controller) page() int {
	if c.loading {
		return c.pending
	}
	return c.session.Page
}

// HasPrev reports whether a previous page exists
func (c *Controller) HasPrev() bool {
	return c.page() > 1
}

// HasNext reports whether a following page exists
func (c *Controller) HasNext() bool {
	return c.page() < c.TotalPages()
}

// NextPage issues a request for the following page, if there is one. The
// session moves to that page only once its results arrive.
func (c *Controller) NextPage() (Request, bool) {
	if !c.HasNext() {
		return Request{}, false
	}
	return c.turn(c.page() + 1)
}

// PrevPage issues a request for the previous page, if there is one
func (c *Controller) PrevPage() (Request, bool) {
	if !c.HasPrev() {
		return Request{}, false
	}
	return c.turn(c.page() - 1)
}

func (c *Controller) turn(page int) (Request, bool) {
	s := c.session
	s.Page = page
	return c.begin(s)
}
