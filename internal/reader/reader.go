// Package reader keeps the reading cursor for one book: which page is shown,
// how large the text is, and whether the dark palette is on.
package reader

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/pkg/models"
)

const (
	DefaultPageSize = 4000 // characters per page
	DefaultFontSize = 18
	MinFontSize     = 12
	FontSizeStep    = 2
)

// Backend is the part of the API client the reader needs
type Backend interface {
	GetBookPage(ctx context.Context, id, page, size int) (*models.BookPage, error)
}

// Cursor is the reading position and display preferences
type Cursor struct {
	BookID   nav.BookID
	Page     int
	PageSize int
	FontSize int
	DarkMode bool
}

// Request is one issued page fetch
type Request struct {
	Token  uint64
	BookID nav.BookID
	Page   int
	Size   int
}

// Do performs the request against backend
func (r Request) Do(ctx context.Context, backend Backend) Response {
	page, err := backend.GetBookPage(ctx, int(r.BookID), r.Page, r.Size)
	return Response{Token: r.Token, Request: r, Page: page, Err: err}
}

// Response is the outcome of a Request
type Response struct {
	Token   uint64
	Request Request
	Page    *models.BookPage
	Err     error
}

// Controller owns the cursor and the text of the current page. Like the
// search controller it is driven from a single event loop.
type Controller struct {
	cursor Cursor

	title      string
	text       string
	totalPages int
	loaded     bool
	loading    bool
	pending    int
	err        error

	token uint64
	log   zerolog.Logger
}

// NewController creates a reader with default preferences
func NewController(pageSize int, log zerolog.Logger) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{
		cursor: Cursor{
			Page:     1,
			PageSize: pageSize,
			FontSize: DefaultFontSize,
		},
		log: log,
	}
}

// Cursor returns a copy of the current cursor
func (c *Controller) Cursor() Cursor { return c.cursor }

// Title returns the title of the loaded book
func (c *Controller) Title() string { return c.title }

// Text returns the text of the loaded page
func (c *Controller) Text() string { return c.text }

// TotalPages returns the page count, 0 before the first page arrives
func (c *Controller) TotalPages() int { return c.totalPages }

// Loaded reports whether a page of the current book is available
func (c *Controller) Loaded() bool { return c.loaded }

// Loading reports whether the newest request is still pending
func (c *Controller) Loading() bool { return c.loading }

// Err returns the error of the newest completed request
func (c *Controller) Err() error { return c.err }

// SetBook switches to another book, starting at page 1 and dropping the
// previous page. Font size and dark mode carry over.
func (c *Controller) SetBook(id nav.BookID) {
	c.cursor.BookID = id
	c.cursor.Page = 1
	c.title = ""
	c.text = ""
	c.totalPages = 0
	c.loaded = false
	c.loading = false
	c.pending = 0
	c.err = nil
	c.token++
}

// SetPreferences restores a saved font size and palette
func (c *Controller) SetPreferences(fontSize int, dark bool) {
	if fontSize < MinFontSize {
		fontSize = DefaultFontSize
	}
	c.cursor.FontSize = fontSize
	c.cursor.DarkMode = dark
}

// Begin issues a request for the current page
func (c *Controller) Begin() (Request, bool) {
	return c.begin(c.cursor.Page)
}

// begin issues a request for page. The cursor only moves once the page
// arrives, so a failed fetch leaves it on the page still shown.
func (c *Controller) begin(page int) (Request, bool) {
	if c.cursor.BookID <= 0 {
		return Request{}, false
	}
	c.token++
	c.loading = true
	c.pending = page
	return Request{Token: c.token, BookID: c.cursor.BookID, Page: page, Size: c.cursor.PageSize}, true
}

// target is the page the newest request asks for, or the shown page
func (c *Controller) target() int {
	if c.loading {
		return c.pending
	}
	return c.cursor.Page
}

// HasPrev reports whether Prev would issue a request
func (c *Controller) HasPrev() bool {
	return c.target() > 1
}

// HasNext reports whether Next would issue a request
func (c *Controller) HasNext() bool {
	return c.loaded && c.target() < c.totalPages
}

// Next moves to the following page. Nothing is issued on the last page.
func (c *Controller) Next() (Request, bool) {
	if !c.HasNext() {
		return Request{}, false
	}
	return c.begin(c.target() + 1)
}

// Prev moves to the previous page. Nothing is issued on page 1.
func (c *Controller) Prev() (Request, bool) {
	if !c.HasPrev() {
		return Request{}, false
	}
	return c.begin(c.target() - 1)
}

// GoTo jumps to page n, clamped to the known page range
func (c *Controller) GoTo(n int) (Request, bool) {
	n = c.clamp(n)
	if c.loaded && n == c.target() {
		return Request{}, false
	}
	return c.begin(n)
}

func (c *Controller) clamp(n int) int {
	if c.totalPages > 0 && n > c.totalPages {
		n = c.totalPages
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Apply stores resp if it answers the newest request. The cursor moves to
// the requested page only when the page arrived.
func (c *Controller) Apply(resp Response) bool {
	if resp.Token != c.token || resp.Request.BookID != c.cursor.BookID {
		c.log.Debug().
			Uint64("token", resp.Token).
			Uint64("latest", c.token).
			Int("book", int(resp.Request.BookID)).
			Msg("discarding stale page response")
		return false
	}

	c.loading = false
	if resp.Err != nil {
		c.err = resp.Err
		return true
	}
	if resp.Page == nil {
		return true
	}

	c.err = nil
	c.title = resp.Page.Title
	c.text = resp.Page.Text
	c.totalPages = resp.Page.TotalPages
	c.loaded = true
	c.cursor.Page = resp.Request.Page
	if resp.Page.Page > 0 {
		c.cursor.Page = resp.Page.Page
	}
	c.cursor.Page = c.clamp(c.cursor.Page)
	return true
}

// Smaller decreases the font size by one step, never below MinFontSize
func (c *Controller) Smaller() {
	c.cursor.FontSize -= FontSizeStep
	if c.cursor.FontSize < MinFontSize {
		c.cursor.FontSize = MinFontSize
	}
}

// Larger increases the font size by one step
func (c *Controller) Larger() {
	c.cursor.FontSize += FontSizeStep
}

// ToggleDark flips the palette; the fetched text is unaffected
func (c *Controller) ToggleDark() {
	c.cursor.DarkMode = !c.cursor.DarkMode
}
