package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"github.com/justyntemme/bookseek-t/internal/config"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/reader"
	"github.com/justyntemme/bookseek-t/internal/ui/styles"
)

// minWrapWidth is the narrowest column text is wrapped to
const minWrapWidth = 20

// ReaderView shows one page of a book's text at a time
type ReaderView struct {
	backend reader.Backend
	config  *config.Config
	ctrl    *reader.Controller
	log     zerolog.Logger

	// context the book view was opened with; back returns there
	ctx       nav.Context
	title     string
	savedPage int  // last page read in this book on an earlier visit
	moved     bool // the user turned a page during this visit

	viewport viewport.Model

	width  int
	height int
}

type pageLoadedMsg struct {
	resp reader.Response
}

// NewReaderView creates the reader screen
func NewReaderView(backend reader.Backend, cfg *config.Config, pageSize int, log zerolog.Logger) *ReaderView {
	ctrl := reader.NewController(pageSize, log)
	if cfg != nil {
		ctrl.SetPreferences(cfg.Reader.FontSize, cfg.Reader.DarkMode)
	}
	return &ReaderView{
		backend:  backend,
		config:   cfg,
		ctrl:     ctrl,
		log:      log,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// SetBook opens book id at page 1. Font size and palette carry over from
// the previous book; the page last read in id is offered through the resume
// key.
func (v *ReaderView) SetBook(id nav.BookID, title string, ctx nav.Context) {
	v.ctrl.SetBook(id)
	v.title = title
	v.ctx = ctx
	v.savedPage = 0
	v.moved = false
	v.viewport.SetContent("")
	v.viewport.GotoTop()

	if v.config == nil {
		return
	}
	if page, ok := v.config.SavedPage(id); ok && page > 1 {
		v.savedPage = page
	}
}

// Cursor returns the reading position
func (v *ReaderView) Cursor() reader.Cursor { return v.ctrl.Cursor() }

// Context returns the context the book was opened with
func (v *ReaderView) Context() nav.Context { return v.ctx }

// Init implements View
func (v *ReaderView) Init() tea.Cmd {
	req, ok := v.ctrl.Begin()
	if !ok {
		return nil
	}
	return v.fetch(req)
}

// Update implements View
func (v *ReaderView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case pageLoadedMsg:
		if !v.ctrl.Apply(msg.resp) {
			return v, nil
		}
		if msg.resp.Err != nil {
			v.log.Warn().Err(msg.resp.Err).Int("book", int(msg.resp.Request.BookID)).Int("page", msg.resp.Request.Page).Msg("load page")
			return v, nil
		}
		if v.title == "" {
			v.title = v.ctrl.Title()
		}
		v.refresh()
		v.viewport.GotoTop()
		if v.moved {
			v.savePage()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *ReaderView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	var (
		req reader.Request
		ok  bool
	)

	switch msg.String() {
	case "esc", "q", "backspace":
		v.SavePosition()
		return v, openBook(v.ctrl.Cursor().BookID, v.ctx)
	case "l", "n", "right":
		req, ok = v.ctrl.Next()
	case "h", "p", "left":
		req, ok = v.ctrl.Prev()
	case "g", "home":
		req, ok = v.ctrl.GoTo(1)
	case "G", "end":
		if v.ctrl.TotalPages() > 0 {
			req, ok = v.ctrl.GoTo(v.ctrl.TotalPages())
		}
	case "R":
		if v.savedPage > 1 {
			req, ok = v.ctrl.GoTo(v.savedPage)
		}
	case "-":
		v.ctrl.Smaller()
		v.refresh()
		v.saveStyle()
	case "+", "=":
		v.ctrl.Larger()
		v.refresh()
		v.saveStyle()
	case "d":
		v.ctrl.ToggleDark()
		v.refresh()
		v.saveStyle()
	default:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	if ok {
		v.moved = true
		return v, v.fetch(req)
	}
	return v, nil
}

func (v *ReaderView) fetch(req reader.Request) tea.Cmd {
	backend := v.backend
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return pageLoadedMsg{resp: req.Do(ctx, backend)}
	}
}

// SavePosition stores the page of the open book, once the user has moved
// away from where the visit started
func (v *ReaderView) SavePosition() {
	if v.moved {
		v.savePage()
	}
}

func (v *ReaderView) savePage() {
	if v.config == nil || !v.ctrl.Loaded() {
		return
	}
	cur := v.ctrl.Cursor()
	if err := v.config.SetSavedPage(cur.BookID, cur.Page); err != nil {
		v.log.Warn().Err(err).Msg("save reader position")
	}
}

// saveStyle stores the font size and palette shared by all books
func (v *ReaderView) saveStyle() {
	if v.config == nil {
		return
	}
	cur := v.ctrl.Cursor()
	err := v.config.SetReaderPrefs(config.ReaderPrefs{FontSize: cur.FontSize, DarkMode: cur.DarkMode})
	if err != nil {
		v.log.Warn().Err(err).Msg("save reader preferences")
	}
}

// wrapWidth maps the font size onto a column width: a larger font gives
// fewer characters per line
func (v *ReaderView) wrapWidth() int {
	base := v.width - 4
	w := base * reader.DefaultFontSize / v.ctrl.Cursor().FontSize
	if w < minWrapWidth {
		w = minWrapWidth
	}
	if w > base {
		w = base
	}
	return max(w, 1)
}

// refresh re-renders the page text into the viewport
func (v *ReaderView) refresh() {
	if !v.ctrl.Loaded() {
		return
	}
	text := wordwrap.String(v.ctrl.Text(), v.wrapWidth())
	page := styles.ReaderPage(v.ctrl.Cursor().DarkMode).
		Width(v.width).
		Render(text)
	v.viewport.SetContent(page)
}

// View implements View
func (v *ReaderView) View() string {
	var body string
	switch {
	case v.ctrl.Err() != nil:
		body = lipgloss.Place(v.width, v.viewport.Height, lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render("Error: "+v.ctrl.Err().Error()))
	case !v.ctrl.Loaded():
		body = lipgloss.Place(v.width, v.viewport.Height, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render("Loading..."))
	default:
		body = v.viewport.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.renderHeader(), body, v.renderFooter())
}

func (v *ReaderView) renderHeader() string {
	cur := v.ctrl.Cursor()
	title := styles.ReaderHeader.Render(" " + styles.TruncateText(v.title, max(10, v.width/3)) + " ")

	total := v.ctrl.TotalPages()
	pageInfo := fmt.Sprintf(" Page %d", cur.Page)
	if total > 0 {
		pageInfo += " of " + humanize.Comma(int64(total))
	}
	if v.ctrl.Loading() {
		pageInfo += " ..."
	}
	left := title + styles.Help.Render(pageInfo)

	progress := 0.0
	if total > 0 {
		progress = float64(cur.Page) / float64(total)
	}
	right := renderProgressBar(12, progress) +
		styles.ReaderProgress.Render(fmt.Sprintf(" %d%% ", int(progress*100))) +
		styles.MutedText.Render(fmt.Sprintf("%dpt ", cur.FontSize))

	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// renderProgressBar draws a bar of width cells filled to progress (0-1)
func renderProgressBar(width int, progress float64) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	return styles.SecondaryText.Render(strings.Repeat("█", filled)) +
		styles.MutedText.Render(strings.Repeat("░", width-filled))
}

func (v *ReaderView) renderFooter() string {
	palette := "light"
	if v.ctrl.Cursor().DarkMode {
		palette = "dark"
	}
	help := []string{
		styles.HelpKey.Render("h/l") + styles.Help.Render(" page"),
		styles.HelpKey.Render("j/k") + styles.Help.Render(" scroll"),
		styles.HelpKey.Render("g/G") + styles.Help.Render(" first/last"),
		styles.HelpKey.Render("-/+") + styles.Help.Render(" font"),
		styles.HelpKey.Render("d") + styles.Help.Render(" "+palette),
	}
	if v.savedPage > 1 && v.ctrl.Cursor().Page != v.savedPage {
		help = append(help, styles.HelpKey.Render("R")+styles.Help.Render(fmt.Sprintf(" resume p.%d", v.savedPage)))
	}
	help = append(help, styles.HelpKey.Render("esc")+styles.Help.Render(" back"))
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *ReaderView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	// header line, footer line plus its border
	v.viewport.Height = max(1, height-3)
	v.refresh()
}
