package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/justyntemme/bookseek-t/internal/config"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/search"
	"github.com/justyntemme/bookseek-t/internal/ui/styles"
)

// maxShownTerms is how many matched terms a result line lists
const maxShownTerms = 3

// SearchView is the search screen: query input, mode toggles and one page
// of results
type SearchView struct {
	backend search.Backend
	config  *config.Config
	ctrl    *search.Controller
	log     zerolog.Logger

	input   textinput.Model
	spinner spinner.Model
	typing  bool
	pending bool // a restored session still has to be fetched

	cursor int
	offset int

	width  int
	height int
}

// searchDoneMsg carries a finished search back to the event loop
type searchDoneMsg struct {
	resp search.Response
}

// NewSearchView creates the search screen
func NewSearchView(backend search.Backend, cfg *config.Config, pageSize int, log zerolog.Logger) *SearchView {
	input := textinput.New()
	input.Placeholder = "Search books..."
	input.CharLimit = 200
	input.Width = 50
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &SearchView{
		backend: backend,
		config:  cfg,
		ctrl:    search.NewController(pageSize, log),
		log:     log,
		input:   input,
		spinner: s,
		typing:  true,
		width:   80,
		height:  24,
	}
}

// Session returns the current search session
func (v *SearchView) Session() nav.SearchSession {
	return v.ctrl.Session()
}

// Typing reports whether keys go to the query input
func (v *SearchView) Typing() bool {
	return v.typing
}

// Restore installs a session, e.g. when coming back from a book. The search
// is re-issued on the next Init.
func (v *SearchView) Restore(s nav.SearchSession) {
	v.ctrl.Restore(s)
	v.input.SetValue(v.ctrl.Session().Query)
	v.cursor = 0
	v.offset = 0
	v.pending = !v.ctrl.Session().Blank()
	v.setTyping(!v.pending)
}

// Init implements View
func (v *SearchView) Init() tea.Cmd {
	if v.pending {
		v.pending = false
		return v.run()
	}
	if v.typing {
		return textinput.Blink
	}
	return nil
}

// Update implements View
func (v *SearchView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.typing {
			return v.updateInput(msg)
		}
		return v.updateList(msg)

	case spinner.TickMsg:
		if !v.ctrl.Loading() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case searchDoneMsg:
		if !v.ctrl.Apply(msg.resp) {
			return v, nil
		}
		if msg.resp.Err != nil {
			v.log.Warn().Err(msg.resp.Err).Str("query", msg.resp.Session.Query).Msg("search failed")
			return v, nil
		}
		v.cursor = 0
		v.offset = 0
		return v, nil
	}

	// cursor blink
	if v.typing {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *SearchView) updateInput(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.ctrl.SetQuery(strings.TrimSpace(v.input.Value()))
		if v.ctrl.Session().Blank() {
			return v, nil
		}
		v.setTyping(false)
		return v, v.run()
	case "esc":
		v.input.SetValue(v.ctrl.Session().Query)
		v.setTyping(false)
		return v, nil
	case "tab":
		v.ctrl.SetMode(v.ctrl.Session().Mode.Next())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *SearchView) updateList(msg tea.KeyMsg) (View, tea.Cmd) {
	session := v.ctrl.Session()
	items := v.ctrl.Result().Items

	switch msg.String() {
	case "/", "i":
		v.setTyping(true)
		return v, textinput.Blink
	case "j", "down":
		v.moveCursor(1)
	case "k", "up":
		v.moveCursor(-1)
	case "g", "home":
		v.cursor = 0
		v.offset = 0
	case "G", "end":
		v.cursor = max(0, v.listLen()-1)
		v.updateOffset()
	case "enter":
		if v.showingRecent() {
			recent := v.config.RecentlyViewed
			if v.cursor < len(recent) {
				return v, openBook(nav.BookID(recent[v.cursor].BookID), nav.Root())
			}
			return v, nil
		}
		if v.cursor < len(items) {
			return v, openBook(items[v.cursor].ID, nav.FromSearch(session))
		}
	case "tab", "m":
		v.ctrl.SetMode(session.Mode.Next())
		return v, v.run()
	case "a":
		if session.Mode == nav.ModeKeyword {
			v.ctrl.SetAdvanced(!session.Advanced)
			return v, v.run()
		}
	case "o":
		if session.Mode == nav.ModeKeyword {
			v.ctrl.SetRankMode(session.RankMode.Next())
			return v, v.run()
		}
	case "n", "l", "right":
		if req, ok := v.ctrl.NextPage(); ok {
			return v, v.issue(req)
		}
	case "p", "h", "left":
		if req, ok := v.ctrl.PrevPage(); ok {
			return v, v.issue(req)
		}
	case "r":
		return v, v.run()
	case "x":
		v.ctrl.Reset()
		v.input.SetValue("")
		v.cursor = 0
		v.offset = 0
		v.setTyping(true)
		return v, textinput.Blink
	case "T":
		name := styles.NextTheme()
		if v.config != nil {
			if err := v.config.SetTheme(name); err != nil {
				return v, SendError(err)
			}
		}
		return v, SendStatus("Theme: " + name)
	}

	return v, nil
}

func (v *SearchView) setTyping(on bool) {
	v.typing = on
	if on {
		v.input.Focus()
	} else {
		v.input.Blur()
	}
}

// run issues a search for the current session
func (v *SearchView) run() tea.Cmd {
	req, ok := v.ctrl.Begin()
	if !ok {
		return nil
	}
	return v.issue(req)
}

func (v *SearchView) issue(req search.Request) tea.Cmd {
	backend := v.backend
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return searchDoneMsg{resp: req.Do(ctx, backend)}
	})
}

func (v *SearchView) showingRecent() bool {
	return !v.ctrl.HasRun() && v.ctrl.Session().Blank() && v.config != nil && len(v.config.RecentlyViewed) > 0
}

func (v *SearchView) listLen() int {
	if v.showingRecent() {
		return len(v.config.RecentlyViewed)
	}
	return len(v.ctrl.Result().Items)
}

func (v *SearchView) moveCursor(delta int) {
	n := v.listLen()
	if n == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), n-1)
	v.updateOffset()
}

func (v *SearchView) updateOffset() {
	visible := v.visibleItems()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
}

// visibleItems is the number of results that fit; each takes two lines
func (v *SearchView) visibleItems() int {
	return max(1, (v.height-9)/2)
}

// View implements View
func (v *SearchView) View() string {
	var b strings.Builder

	b.WriteString(v.renderHeader() + "\n")

	input := styles.InputField
	if v.typing {
		input = styles.InputFieldFocused
	}
	b.WriteString(input.Width(min(60, v.width-2)).Render(v.input.View()) + "\n")
	b.WriteString(v.renderStatus() + "\n\n")

	b.WriteString(v.renderBody())
	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

func (v *SearchView) renderHeader() string {
	s := v.ctrl.Session()
	title := styles.TitleBar.Render(" bookseek ")

	parts := []string{toggle("Keyword", s.Mode == nav.ModeKeyword), toggle("Title", s.Mode == nav.ModeTitle)}
	if s.Mode == nav.ModeKeyword {
		parts = append(parts,
			toggle("Regex", s.Advanced),
			styles.SecondaryText.Render("Rank: "+s.RankMode.Label()),
		)
	}
	left := title + " " + strings.Join(parts, " ")

	right := ""
	if v.ctrl.HasRun() {
		right = styles.Help.Render(fmt.Sprintf(" Page %d/%d ", s.Page, v.ctrl.TotalPages()))
	}

	gap := max(0, v.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func toggle(label string, on bool) string {
	if on {
		return styles.ToggleOn.Render("[" + label + "]")
	}
	return styles.Toggle.Render(" " + label + " ")
}

func (v *SearchView) renderStatus() string {
	switch {
	case v.ctrl.Loading():
		return v.spinner.View() + styles.MutedText.Render(" Searching...")
	case v.ctrl.Err() != nil:
		return styles.ErrorStyle.Render("Search failed: " + v.ctrl.Err().Error())
	case v.ctrl.HasRun():
		res := v.ctrl.Result()
		status := humanize.Comma(int64(res.Total)) + " results"
		if res.BackendElapsedMs != nil {
			status += fmt.Sprintf(" in %.0f ms", *res.BackendElapsedMs)
		}
		return styles.MutedText.Render(status)
	}
	return ""
}

func (v *SearchView) renderBody() string {
	if v.showingRecent() {
		return v.renderRecent()
	}

	items := v.ctrl.Result().Items
	if !v.ctrl.HasRun() {
		return styles.MutedText.Render("  Type a query and press enter.") + "\n"
	}
	if len(items) == 0 {
		return styles.MutedText.Render(fmt.Sprintf("  No books match %q.", v.ctrl.Session().Query)) + "\n"
	}

	var b strings.Builder
	end := min(v.offset+v.visibleItems(), len(items))
	for i := v.offset; i < end; i++ {
		b.WriteString(v.renderHit(items[i], i == v.cursor))
	}
	return b.String()
}

func (v *SearchView) renderHit(hit search.Hit, selected bool) string {
	session := v.ctrl.Session()

	var extras []string
	for _, term := range search.TruncateTerms(hit.MatchedTerms, maxShownTerms) {
		extras = append(extras, styles.Term.Render(term))
	}
	if session.Mode == nav.ModeKeyword {
		extras = append(extras, styles.Score.Render(scoreLabel(hit, session.RankMode)))
	}
	suffix := strings.Join(extras, " ")

	titleWidth := max(10, v.width-lipgloss.Width(suffix)-6)
	title := styles.TruncateText(hit.Title, titleWidth)

	var line string
	if selected {
		line = styles.ListItemSelected.Render("▸ "+title) + " " + suffix
	} else {
		line = styles.ListItem.Render("  "+title) + " " + suffix
	}

	snippet := strings.Join(strings.Fields(hit.Snippet), " ")
	snippet = styles.TruncateText(snippet, max(10, v.width-6))
	return line + "\n" + styles.Snippet.Render(snippet) + "\n"
}

func scoreLabel(hit search.Hit, rank nav.RankMode) string {
	switch rank {
	case nav.RankPR:
		return fmt.Sprintf("pr %.4f", hit.PageRank)
	case nav.RankTFPR:
		return fmt.Sprintf("score %.3f", hit.Score)
	default:
		return fmt.Sprintf("tf %.3f", hit.TF)
	}
}

func (v *SearchView) renderRecent() string {
	var b strings.Builder
	b.WriteString(styles.HelpKey.Render("  Recently viewed") + "\n")
	recent := v.config.RecentlyViewed
	end := min(v.offset+v.visibleItems()*2, len(recent))
	for i := v.offset; i < end; i++ {
		e := recent[i]
		when := styles.MutedText.Render(humanize.Time(e.OpenedAt))
		title := styles.TruncateText(e.Title, max(10, v.width-lipgloss.Width(when)-8))
		if i == v.cursor {
			b.WriteString(styles.ListItemSelected.Render("▸ "+title) + " " + when + "\n")
		} else {
			b.WriteString(styles.ListItem.Render("  "+title) + " " + when + "\n")
		}
	}
	return b.String()
}

func (v *SearchView) renderFooter() string {
	var help []string
	if v.typing {
		help = []string{
			styles.HelpKey.Render("enter") + styles.Help.Render(" search"),
			styles.HelpKey.Render("tab") + styles.Help.Render(" mode"),
			styles.HelpKey.Render("esc") + styles.Help.Render(" results"),
		}
	} else {
		help = []string{
			styles.HelpKey.Render("j/k") + styles.Help.Render(" nav"),
			styles.HelpKey.Render("enter") + styles.Help.Render(" open"),
			styles.HelpKey.Render("/") + styles.Help.Render(" edit"),
			styles.HelpKey.Render("m") + styles.Help.Render(" mode"),
		}
		if v.ctrl.Session().Mode == nav.ModeKeyword {
			help = append(help,
				styles.HelpKey.Render("a")+styles.Help.Render(" regex"),
				styles.HelpKey.Render("o")+styles.Help.Render(" rank"),
			)
		}
		help = append(help,
			styles.HelpKey.Render("n/p")+styles.Help.Render(" page"),
			styles.HelpKey.Render("x")+styles.Help.Render(" clear"),
			styles.HelpKey.Render("q")+styles.Help.Render(" quit"),
		)
	}
	return styles.FooterBar.Width(v.width).Render(strings.Join(help, "  "))
}

// SetSize implements View
func (v *SearchView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(10, min(50, width-10))
	v.updateOffset()
}
