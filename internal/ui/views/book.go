package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/justyntemme/bookseek-t/internal/config"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/ui/styles"
	"github.com/justyntemme/bookseek-t/internal/ui/terminal"
	"github.com/justyntemme/bookseek-t/pkg/models"
)

// Cover size in terminal cells
const (
	coverCols = 24
	coverRows = 14
)

// BookBackend is the part of the API client the book screen needs
type BookBackend interface {
	GetBook(ctx context.Context, id int) (*models.Book, error)
	GetRecommendations(ctx context.Context, id int) ([]models.Recommendation, error)
	GetPageRankRecommendations(ctx context.Context, id int) ([]models.Recommendation, error)
	FetchCover(ctx context.Context, rel string) ([]byte, error)
}

type recMode int

const (
	recSimilar recMode = iota
	recPageRank
)

func (m recMode) Label() string {
	if m == recPageRank {
		return "PageRank"
	}
	return "Similar"
}

// copyFunc writes text to the clipboard
type copyFunc func(text string) error

// BookView shows one book, its cover and its recommendations
type BookView struct {
	backend  BookBackend
	config   *config.Config
	log      zerolog.Logger
	termMode terminal.ImageMode
	copy     copyFunc

	id  nav.BookID
	ctx nav.Context

	book    *models.Book
	err     error
	loading bool

	recMode     recMode
	recs        []models.Recommendation
	recsErr     error
	recsLoading bool
	cursor      int

	cover string

	width  int
	height int
}

type bookLoadedMsg struct {
	id   nav.BookID
	book *models.Book
	err  error
}

type recsLoadedMsg struct {
	id   nav.BookID
	mode recMode
	recs []models.Recommendation
	err  error
}

type coverLoadedMsg struct {
	id    nav.BookID
	cover string
	err   error
}

// NewBookView creates the book screen. termMode decides whether covers are
// fetched at all.
func NewBookView(backend BookBackend, cfg *config.Config, termMode terminal.ImageMode, log zerolog.Logger) *BookView {
	return &BookView{
		backend:  backend,
		config:   cfg,
		log:      log,
		termMode: termMode,
		copy:     clipboard.WriteAll,
		width:    80,
		height:   24,
	}
}

// SetBook switches to book id, reached from ctx
func (v *BookView) SetBook(id nav.BookID, ctx nav.Context) {
	v.id = id
	v.ctx = ctx
	v.book = nil
	v.err = nil
	v.recs = nil
	v.recsErr = nil
	v.cursor = 0
	v.cover = ""
}

// BookID returns the shown book
func (v *BookView) BookID() nav.BookID { return v.id }

// Context returns the context the shown book was opened with
func (v *BookView) Context() nav.Context { return v.ctx }

// State returns the shown book and how it was reached
func (v *BookView) State() nav.BookView {
	return nav.BookView{ID: v.id, Context: v.ctx}
}

// Init implements View
func (v *BookView) Init() tea.Cmd {
	if v.id <= 0 {
		return nil
	}
	v.loading = true
	v.recsLoading = true
	return tea.Batch(v.loadBook(), v.loadRecs())
}

// Update implements View
func (v *BookView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case bookLoadedMsg:
		if msg.id != v.id {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			v.log.Warn().Err(msg.err).Int("book", int(msg.id)).Msg("load book")
			return v, nil
		}
		v.book = msg.book
		if v.config != nil {
			if err := v.config.AddRecentlyViewed(v.id, v.book.Title); err != nil {
				v.log.Warn().Err(err).Msg("save recently viewed")
			}
		}
		return v, v.loadCover()

	case recsLoadedMsg:
		if msg.id != v.id || msg.mode != v.recMode {
			return v, nil
		}
		v.recsLoading = false
		v.recsErr = msg.err
		if msg.err == nil {
			v.recs = msg.recs
		}
		v.cursor = min(v.cursor, max(0, len(v.recs)-1))
		return v, nil

	case coverLoadedMsg:
		if msg.id != v.id {
			return v, nil
		}
		if msg.err != nil {
			v.log.Debug().Err(msg.err).Int("book", int(msg.id)).Msg("cover unavailable")
			return v, nil
		}
		v.cover = msg.cover
	}

	return v, nil
}

func (v *BookView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		ctx := v.ctx
		return v, func() tea.Msg { return BackMsg{Context: ctx} }
	case "j", "down":
		if v.cursor < len(v.recs)-1 {
			v.cursor++
		}
	case "k", "up":
		if v.cursor > 0 {
			v.cursor--
		}
	case "enter":
		if v.cursor < len(v.recs) {
			next := nav.BookID(v.recs[v.cursor].BookID)
			return v, openBook(next, v.State().Next())
		}
	case "r":
		title := ""
		if v.book != nil {
			title = v.book.Title
		}
		id, ctx := v.id, v.ctx
		return v, func() tea.Msg { return OpenReaderMsg{ID: id, Title: title, Context: ctx} }
	case "t":
		if v.recMode == recSimilar {
			v.recMode = recPageRank
		} else {
			v.recMode = recSimilar
		}
		v.recs = nil
		v.recsErr = nil
		v.recsLoading = true
		v.cursor = 0
		return v, v.loadRecs()
	case "y":
		if v.book == nil {
			return v, nil
		}
		text := fmt.Sprintf("%s (book #%d)", v.book.Title, v.id)
		if err := v.copy(text); err != nil {
			return v, SendError(fmt.Errorf("copy to clipboard: %w", err))
		}
		return v, SendStatus("Copied title to clipboard")
	}
	return v, nil
}

func (v *BookView) loadBook() tea.Cmd {
	id, backend := v.id, v.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		book, err := backend.GetBook(ctx, int(id))
		return bookLoadedMsg{id: id, book: book, err: err}
	}
}

func (v *BookView) loadRecs() tea.Cmd {
	id, mode, backend := v.id, v.recMode, v.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		var (
			recs []models.Recommendation
			err  error
		)
		if mode == recPageRank {
			recs, err = backend.GetPageRankRecommendations(ctx, int(id))
		} else {
			recs, err = backend.GetRecommendations(ctx, int(id))
		}
		return recsLoadedMsg{id: id, mode: mode, recs: recs, err: err}
	}
}

func (v *BookView) loadCover() tea.Cmd {
	if v.termMode == terminal.ModeNone || v.book == nil || v.book.CoverURL == "" {
		return nil
	}
	if v.config != nil && !v.config.ShowCovers {
		return nil
	}
	id, rel, mode, backend := v.id, v.book.CoverURL, v.termMode, v.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		data, err := backend.FetchCover(ctx, rel)
		if err != nil {
			return coverLoadedMsg{id: id, err: err}
		}
		cover, err := terminal.RenderCover(data, mode, coverCols, coverRows)
		return coverLoadedMsg{id: id, cover: cover, err: err}
	}
}

// View implements View
func (v *BookView) View() string {
	var b strings.Builder

	header := styles.TitleBar.Render(fmt.Sprintf(" Book #%d ", v.id))
	back := styles.MutedText.Render(" back to " + describeBack(v.ctx))
	b.WriteString(header + back + "\n\n")

	switch {
	case v.loading && v.book == nil:
		b.WriteString(styles.MutedText.Render("  Loading book...") + "\n")
	case v.err != nil:
		b.WriteString(styles.ErrorStyle.Render("Error: "+v.err.Error()) + "\n")
	case v.book != nil:
		if v.cover != "" {
			b.WriteString(v.cover + "\n")
		}
		b.WriteString(v.renderDetails())
	}

	b.WriteString("\n")
	b.WriteString(v.renderRecs())
	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

func (v *BookView) renderDetails() string {
	var b strings.Builder
	textWidth := max(20, v.width-4)

	b.WriteString(styles.BookTitle.Render(styles.TruncateText(v.book.Title, textWidth)) + "\n")
	if len(v.book.Authors) > 0 {
		b.WriteString(styles.BookAuthor.Render("by "+strings.Join(v.book.Authors, ", ")) + "\n")
	}

	summary := v.book.Summary
	if summary == "" {
		summary = v.book.Snippet
	}
	if summary != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(textWidth).Render(summary) + "\n")
	}
	return b.String()
}

func (v *BookView) renderRecs() string {
	var b strings.Builder
	b.WriteString(styles.HelpKey.Render(fmt.Sprintf("Recommendations (%s)", v.recMode.Label())) + "\n")

	switch {
	case v.recsLoading:
		b.WriteString(styles.MutedText.Render("  Loading...") + "\n")
		return b.String()
	case v.recsErr != nil:
		b.WriteString(styles.ErrorStyle.Render("Unavailable: "+v.recsErr.Error()) + "\n")
		return b.String()
	case len(v.recs) == 0:
		b.WriteString(styles.MutedText.Render("  None") + "\n")
		return b.String()
	}

	for i, rec := range v.recs {
		score := styles.Score.Render(fmt.Sprintf("%.3f", rec.Score))
		title := styles.TruncateText(rec.Title, max(10, v.width-lipgloss.Width(score)-8))
		if i == v.cursor {
			b.WriteString(styles.ListItemSelected.Render("▸ "+title) + " " + score + "\n")
		} else {
			b.WriteString(styles.ListItem.Render("  "+title) + " " + score + "\n")
		}
	}
	return b.String()
}

func (v *BookView) renderFooter() string {
	help := []string{
		styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
		styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
		styles.HelpKey.Render("r") + styles.Help.Render(" read"),
		styles.HelpKey.Render("t") + styles.Help.Render(" similar/pagerank"),
		styles.HelpKey.Render("y") + styles.Help.Render(" copy"),
		styles.HelpKey.Render("esc") + styles.Help.Render(" back"),
	}
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// describeBack names the screen ResolveBack would return to
func describeBack(ctx nav.Context) string {
	dest := nav.ResolveBack(ctx)
	if dest.Route == nav.RouteBook {
		return fmt.Sprintf("book #%d", dest.Target)
	}
	if dest.Session.Blank() {
		return "search"
	}
	return fmt.Sprintf("search %q (page %d)", dest.Session.Query, dest.Session.Page)
}

// SetSize implements View
func (v *BookView) SetSize(width, height int) {
	v.width = width
	v.height = height
}
