package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/bookseek-t/internal/config"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/ui/terminal"
	"github.com/justyntemme/bookseek-t/internal/ui/views"
	"github.com/justyntemme/bookseek-t/pkg/models"
)

type searchCall struct {
	endpoint string
	q        string
	advanced bool
	rankMode string
	page     int
}

type fakeBackend struct {
	mu       sync.Mutex
	searches []searchCall
	books    []int
	pages    []int
}

func (f *fakeBackend) SearchKeyword(_ context.Context, q string, advanced bool, rankMode string, page, pageSize int) (*models.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{"keyword", q, advanced, rankMode, page})
	return hits(q, page), nil
}

func (f *fakeBackend) SearchTitle(_ context.Context, q string, page, pageSize int) (*models.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, searchCall{endpoint: "title", q: q, page: page})
	return hits(q, page), nil
}

func hits(q string, page int) *models.SearchResponse {
	return &models.SearchResponse{
		Query: q,
		Page:  page,
		Total: 60,
		Results: []models.SearchHit{
			{BookID: 10, Title: q + " ten"},
			{BookID: 11, Title: q + " eleven"},
		},
	}
}

func (f *fakeBackend) GetBook(_ context.Context, id int) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books = append(f.books, id)
	return &models.Book{BookID: id, Title: fmt.Sprintf("Book %d", id)}, nil
}

func (f *fakeBackend) GetRecommendations(_ context.Context, id int) ([]models.Recommendation, error) {
	return []models.Recommendation{{BookID: id + 1, Title: fmt.Sprintf("Book %d", id+1), Score: 0.9}}, nil
}

func (f *fakeBackend) GetPageRankRecommendations(_ context.Context, id int) ([]models.Recommendation, error) {
	return []models.Recommendation{{BookID: id + 100, Title: "ranked", Score: 0.1}}, nil
}

func (f *fakeBackend) FetchCover(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("no covers")
}

func (f *fakeBackend) GetBookPage(_ context.Context, id, page, size int) (*models.BookPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	return &models.BookPage{BookID: id, Title: fmt.Sprintf("Book %d", id), Page: page, TotalPages: 3, Text: "Call me Ishmael."}, nil
}

func (f *fakeBackend) lastSearch() searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[len(f.searches)-1]
}

func newTestApp(t *testing.T) (*App, *fakeBackend, *config.Config) {
	t.Helper()
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	backend := &fakeBackend{}
	app := NewApp(cfg, backend, terminal.ModeNone, zerolog.Nop())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, backend, cfg
}

// runCmd runs c, giving up on timers such as cursor blinks
func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

// drain runs cmd and every command it leads to, feeding messages to app
func drain(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, tea.QuitMsg:
		default:
			_, next := app.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := app.Update(msg)
		drain(t, app, cmd)
	}
}

func typeQuery(t *testing.T, app *App, q string) {
	t.Helper()
	for _, r := range q {
		press(t, app, string(r))
	}
	press(t, app, "enter")
}

func TestSearchOpenBookAndBackRestoresSession(t *testing.T) {
	app, backend, _ := newTestApp(t)
	drain(t, app, app.Init())

	typeQuery(t, app, "dragon")
	press(t, app, "a", "o", "n")
	want := searchCall{"keyword", "dragon", true, "pr", 2}
	require.Equal(t, want, backend.lastSearch())

	press(t, app, "enter")
	require.Equal(t, views.ViewBook, app.CurrentView())
	assert.Equal(t, []int{10}, backend.books)

	press(t, app, "esc")
	require.Equal(t, views.ViewSearch, app.CurrentView())
	assert.Equal(t, want, backend.lastSearch())
}

func TestRecommendationChainWalksBack(t *testing.T) {
	app, backend, _ := newTestApp(t)
	drain(t, app, app.Init())
	typeQuery(t, app, "whale")

	press(t, app, "enter") // book 10
	press(t, app, "enter") // rec 11
	press(t, app, "enter") // rec 12
	require.Equal(t, views.ViewBook, app.CurrentView())
	assert.Equal(t, []int{10, 11, 12}, backend.books)

	press(t, app, "esc")
	press(t, app, "esc")
	assert.Equal(t, []int{10, 11, 12, 11, 10}, backend.books)
	require.Equal(t, views.ViewBook, app.CurrentView())

	searches := len(backend.searches)
	press(t, app, "esc")
	assert.Equal(t, views.ViewSearch, app.CurrentView())
	assert.Len(t, backend.searches, searches+1)
	assert.Equal(t, "whale", backend.lastSearch().q)
}

func TestReaderBackReturnsToBookWithItsContext(t *testing.T) {
	app, backend, cfg := newTestApp(t)
	drain(t, app, app.Init())
	typeQuery(t, app, "sea")
	press(t, app, "enter") // book 10 from search

	press(t, app, "r")
	require.Equal(t, views.ViewReader, app.CurrentView())
	press(t, app, "l")
	assert.Equal(t, []int{1, 2}, backend.pages)

	press(t, app, "esc")
	require.Equal(t, views.ViewBook, app.CurrentView())

	page, ok := cfg.SavedPage(10)
	require.True(t, ok)
	assert.Equal(t, 2, page)

	press(t, app, "esc")
	assert.Equal(t, views.ViewSearch, app.CurrentView())
	assert.Equal(t, "sea", backend.lastSearch().q)
}

func TestQuitPersistsAndResumes(t *testing.T) {
	app, _, cfg := newTestApp(t)
	drain(t, app, app.Init())
	typeQuery(t, app, "moby")
	press(t, app, "enter")
	press(t, app, "q")

	reloaded, err := config.LoadFrom(cfg.Path())
	require.NoError(t, err)
	ctx := reloaded.RestoreContext()
	require.Equal(t, nav.KindFromBook, ctx.Kind())

	backend := &fakeBackend{}
	resumed := NewApp(reloaded, backend, terminal.ModeNone, zerolog.Nop())
	resumed.Resume(ctx)
	require.Equal(t, views.ViewBook, resumed.CurrentView())
	drain(t, resumed, resumed.Init())
	assert.Equal(t, []int{10}, backend.books)

	press(t, resumed, "esc")
	assert.Equal(t, views.ViewSearch, resumed.CurrentView())
	assert.Equal(t, "moby", backend.lastSearch().q)
}

func TestTypingQDoesNotQuit(t *testing.T) {
	app, backend, _ := newTestApp(t)
	drain(t, app, app.Init())
	typeQuery(t, app, "quixote")
	assert.Equal(t, "quixote", backend.lastSearch().q)
}

func TestHelpOverlay(t *testing.T) {
	app, _, _ := newTestApp(t)
	drain(t, app, app.Init())
	typeQuery(t, app, "x")

	press(t, app, "?")
	assert.True(t, strings.Contains(app.View(), "Keyboard Shortcuts"))
	press(t, app, "esc")
	assert.False(t, strings.Contains(app.View(), "Keyboard Shortcuts"))
}
