package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Palette colors, set by ApplyTheme
var (
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Border     lipgloss.Color
)

// Styles, rebuilt by ApplyTheme
var (
	TitleBar  lipgloss.Style
	StatusBar lipgloss.Style
	FooterBar lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	MutedText     lipgloss.Style
	SecondaryText lipgloss.Style
	ErrorStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style

	InputField        lipgloss.Style
	InputFieldFocused lipgloss.Style

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	Snippet          lipgloss.Style
	Term             lipgloss.Style
	Score            lipgloss.Style
	Toggle           lipgloss.Style
	ToggleOn         lipgloss.Style

	ReaderHeader   lipgloss.Style
	ReaderProgress lipgloss.Style

	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	BookTitle  lipgloss.Style
	BookAuthor lipgloss.Style
)

// Reader page palettes. These do not follow the UI theme; the reader has its
// own dark mode toggle.
var (
	readerDark = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB")).
			Background(lipgloss.Color("#111827")).
			Padding(1, 2)

	readerLight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1F2937")).
			Background(lipgloss.Color("#FDF6E3")).
			Padding(1, 2)
)

// ReaderPage returns the page style for the reader palette
func ReaderPage(dark bool) lipgloss.Style {
	if dark {
		return readerDark
	}
	return readerLight
}

// TruncateText shortens s to at most width cells, ending in an ellipsis when
// cut
func TruncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
