package views

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justyntemme/bookseek-t/internal/nav"
)

// ViewType identifies a screen
type ViewType int

const (
	ViewSearch ViewType = iota
	ViewBook
	ViewReader
)

func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "Search"
	case ViewBook:
		return "Book"
	case ViewReader:
		return "Reader"
	default:
		return "Unknown"
	}
}

// View is the interface that all views must implement
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// requestTimeout bounds the context each command runs under. The API client
// applies its own per-request deadline inside this one.
const requestTimeout = time.Minute

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// Message types for inter-view communication

// OpenBookMsg opens the book view for ID. Context is where the book was
// reached from and decides what back returns to.
type OpenBookMsg struct {
	ID      nav.BookID
	Context nav.Context
}

// BackMsg asks the app to leave a book view opened with Context
type BackMsg struct {
	Context nav.Context
}

// OpenReaderMsg opens the reader for a book
type OpenReaderMsg struct {
	ID      nav.BookID
	Title   string
	Context nav.Context
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Err error
}

// ClearErrorMsg clears the current error
type ClearErrorMsg struct{}

// StatusMsg shows a short notice in the status line
type StatusMsg struct {
	Text string
}

// SendError creates an error message command
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// ClearError creates a command to clear errors
func ClearError() tea.Cmd {
	return func() tea.Msg {
		return ClearErrorMsg{}
	}
}

// SendStatus creates a status notice command
func SendStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text}
	}
}

func openBook(id nav.BookID, ctx nav.Context) tea.Cmd {
	return func() tea.Msg {
		return OpenBookMsg{ID: id, Context: ctx}
	}
}
