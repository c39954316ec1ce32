package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/justyntemme/bookseek-t/internal/config"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/reader"
	"github.com/justyntemme/bookseek-t/internal/search"
	"github.com/justyntemme/bookseek-t/internal/ui/styles"
	"github.com/justyntemme/bookseek-t/internal/ui/terminal"
	"github.com/justyntemme/bookseek-t/internal/ui/views"
)

// Backend is everything the screens ask of the search service
type Backend interface {
	search.Backend
	views.BookBackend
	reader.Backend
}

// App is the main application model
type App struct {
	config   *config.Config
	log      zerolog.Logger
	keys     KeyMap
	termMode terminal.ImageMode

	currentView views.ViewType

	// Window dimensions
	width  int
	height int

	searchView *views.SearchView
	bookView   *views.BookView
	readerView *views.ReaderView

	// Error/status message
	err       error
	statusMsg string
	showHelp  bool
}

// NewApp creates a new application instance on the search screen
func NewApp(cfg *config.Config, backend Backend, termMode terminal.ImageMode, log zerolog.Logger) *App {
	styles.SetCurrentTheme(cfg.Theme)

	return &App{
		config:      cfg,
		log:         log,
		keys:        DefaultKeyMap(),
		termMode:    termMode,
		currentView: views.ViewSearch,
		width:       80,
		height:      24,
		searchView:  views.NewSearchView(backend, cfg, cfg.SearchPageSize, log),
		bookView:    views.NewBookView(backend, cfg, termMode, log),
		readerView:  views.NewReaderView(backend, cfg, cfg.ReaderPageSize, log),
	}
}

// Resume opens the screen a saved context describes. It must be called
// before the program starts.
func (a *App) Resume(ctx nav.Context) {
	a.route(nav.ResolveBack(ctx))
	a.log.Debug().Stringer("context", ctx).Stringer("view", a.currentView).Msg("resumed")
}

// CurrentView returns the active screen
func (a *App) CurrentView() views.ViewType {
	return a.currentView
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.getCurrentView().Init(),
		tea.SetWindowTitle("bookseek-t"),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// leave a line for the error/status bar
		h := max(1, msg.Height-1)
		a.searchView.SetSize(msg.Width, h)
		a.bookView.SetSize(msg.Width, h)
		a.readerView.SetSize(msg.Width, h)
		return a, nil

	case tea.KeyMsg:
		a.statusMsg = ""
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}
		// The query input gets every other key
		if a.currentView == views.ViewSearch && a.searchView.Typing() {
			break
		}

		switch {
		case key.Matches(msg, a.keys.Help):
			a.showHelp = !a.showHelp
			return a, nil

		case a.showHelp && key.Matches(msg, a.keys.Escape):
			a.showHelp = false
			return a, nil

		case key.Matches(msg, a.keys.Quit):
			// the reader treats q as back
			if a.currentView != views.ViewReader {
				return a, a.quit()
			}
		}

	case views.OpenBookMsg:
		a.log.Debug().Int("book", int(msg.ID)).Stringer("context", msg.Context).Msg("open book")
		a.clearCover()
		a.bookView.SetBook(msg.ID, msg.Context)
		return a.switchView(views.ViewBook)

	case views.BackMsg:
		dest := nav.ResolveBack(msg.Context)
		a.log.Debug().Str("route", string(dest.Route)).Int("target", int(dest.Target)).Msg("back")
		a.clearCover()
		a.route(dest)
		return a, a.getCurrentView().Init()

	case views.OpenReaderMsg:
		a.readerView.SetBook(msg.ID, msg.Title, msg.Context)
		return a.switchView(views.ViewReader)

	case views.ErrorMsg:
		a.err = msg.Err
		a.log.Error().Err(msg.Err).Msg("ui error")
		return a, nil

	case views.ClearErrorMsg:
		a.err = nil
		return a, nil

	case views.StatusMsg:
		a.statusMsg = msg.Text
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.currentView {
	case views.ViewSearch:
		_, cmd = a.searchView.Update(msg)
	case views.ViewBook:
		_, cmd = a.bookView.Update(msg)
	case views.ViewReader:
		_, cmd = a.readerView.Update(msg)
	}
	return a, cmd
}

// route installs a back destination without starting any request
func (a *App) route(dest nav.Destination) {
	a.err = nil
	if dest.Route == nav.RouteBook {
		a.bookView.SetBook(dest.Target, dest.Context)
		a.currentView = views.ViewBook
		return
	}
	a.searchView.Restore(dest.Session)
	a.currentView = views.ViewSearch
}

// CurrentContext describes the open screen so it can be reopened later. A
// book or the reader is stored as a link from that book, which resolves back
// to the book with its own context.
func (a *App) CurrentContext() nav.Context {
	switch a.currentView {
	case views.ViewBook:
		return a.bookView.State().Next()
	case views.ViewReader:
		return nav.BookView{ID: a.readerView.Cursor().BookID, Context: a.readerView.Context()}.Next()
	default:
		s := a.searchView.Session()
		if s.Blank() {
			return nav.Root()
		}
		return nav.FromSearch(s)
	}
}

func (a *App) quit() tea.Cmd {
	if a.currentView == views.ViewReader {
		a.readerView.SavePosition()
	}
	ctx := a.CurrentContext()
	if err := a.config.SaveContext(ctx); err != nil {
		a.log.Warn().Err(err).Msg("save last context")
	}
	a.clearCover()
	return tea.Quit
}

// clearCover removes a drawn cover before the book screen goes away
func (a *App) clearCover() {
	if a.currentView == views.ViewBook && a.termMode != terminal.ModeNone {
		terminal.ClearImagesNow(a.termMode)
	}
}

// View implements tea.Model
func (a *App) View() string {
	if a.showHelp {
		return a.renderHelp()
	}

	content := a.getCurrentView().View()

	if a.err != nil {
		errorBar := styles.ErrorStyle.Render("Error: " + a.err.Error())
		content = lipgloss.JoinVertical(lipgloss.Left, content, errorBar)
	} else if a.statusMsg != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, styles.SuccessStyle.Render(a.statusMsg))
	}

	return content
}

// switchView changes the current view and initializes it
func (a *App) switchView(view views.ViewType) (*App, tea.Cmd) {
	a.currentView = view
	a.err = nil
	return a, a.getCurrentView().Init()
}

func (a *App) getCurrentView() views.View {
	switch a.currentView {
	case views.ViewBook:
		return a.bookView
	case views.ViewReader:
		return a.readerView
	default:
		return a.searchView
	}
}

// renderHelp renders the help overlay from the key map
func (a *App) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.DialogTitle.Render("Keyboard Shortcuts") + "\n")
	for _, section := range a.keys.helpSections() {
		b.WriteString(styles.HelpKey.Render(section.title) + "\n")
		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	help := styles.Dialog.Width(min(60, max(20, a.width-4))).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, help)
}
