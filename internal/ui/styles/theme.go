package styles

import "github.com/charmbracelet/lipgloss"

// Theme is a color scheme for the application chrome
type Theme struct {
	Name string

	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	Border        lipgloss.Color
	Selection     lipgloss.Color
	SelectionText lipgloss.Color
}

var (
	// DarkTheme is the default
	DarkTheme = Theme{
		Name:          "dark",
		Primary:       lipgloss.Color("#2563EB"),
		Secondary:     lipgloss.Color("#22D3EE"),
		Background:    lipgloss.Color("#0F172A"),
		Foreground:    lipgloss.Color("#F1F5F9"),
		Success:       lipgloss.Color("#22C55E"),
		Warning:       lipgloss.Color("#EAB308"),
		Error:         lipgloss.Color("#F87171"),
		Muted:         lipgloss.Color("#64748B"),
		Border:        lipgloss.Color("#334155"),
		Selection:     lipgloss.Color("#1D4ED8"),
		SelectionText: lipgloss.Color("#F8FAFC"),
	}

	LightTheme = Theme{
		Name:          "light",
		Primary:       lipgloss.Color("#1D4ED8"),
		Secondary:     lipgloss.Color("#0E7490"),
		Background:    lipgloss.Color("#F8FAFC"),
		Foreground:    lipgloss.Color("#0F172A"),
		Success:       lipgloss.Color("#15803D"),
		Warning:       lipgloss.Color("#A16207"),
		Error:         lipgloss.Color("#B91C1C"),
		Muted:         lipgloss.Color("#94A3B8"),
		Border:        lipgloss.Color("#CBD5E1"),
		Selection:     lipgloss.Color("#BFDBFE"),
		SelectionText: lipgloss.Color("#0F172A"),
	}

	// SepiaTheme matches the light reader page
	SepiaTheme = Theme{
		Name:          "sepia",
		Primary:       lipgloss.Color("#9A3412"),
		Secondary:     lipgloss.Color("#B45309"),
		Background:    lipgloss.Color("#FDF6E3"),
		Foreground:    lipgloss.Color("#3F2E1E"),
		Success:       lipgloss.Color("#4D7C0F"),
		Warning:       lipgloss.Color("#B45309"),
		Error:         lipgloss.Color("#B91C1C"),
		Muted:         lipgloss.Color("#A8A29E"),
		Border:        lipgloss.Color("#E7D8B8"),
		Selection:     lipgloss.Color("#9A3412"),
		SelectionText: lipgloss.Color("#FDF6E3"),
	}

	BuiltinThemes = []Theme{DarkTheme, LightTheme, SepiaTheme}

	currentTheme = DarkTheme
)

// GetTheme returns a theme by name, or the dark theme if not found
func GetTheme(name string) Theme {
	for _, t := range BuiltinThemes {
		if t.Name == name {
			return t
		}
	}
	return DarkTheme
}

// CurrentTheme returns the active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetCurrentTheme activates a theme by name
func SetCurrentTheme(name string) {
	currentTheme = GetTheme(name)
	ApplyTheme(currentTheme)
}

// NextTheme cycles to the next theme and returns its name
func NextTheme() string {
	for i, t := range BuiltinThemes {
		if t.Name == currentTheme.Name {
			next := BuiltinThemes[(i+1)%len(BuiltinThemes)]
			SetCurrentTheme(next.Name)
			return next.Name
		}
	}
	return currentTheme.Name
}

// ApplyTheme rebuilds every global style from theme
func ApplyTheme(theme Theme) {
	Primary = theme.Primary
	Secondary = theme.Secondary
	Success = theme.Success
	Warning = theme.Warning
	Error = theme.Error
	Muted = theme.Muted
	Background = theme.Background
	Foreground = theme.Foreground
	Border = theme.Border

	TitleBar = lipgloss.NewStyle().
		Foreground(theme.SelectionText).
		Background(theme.Primary).
		Padding(0, 1).
		Bold(true)
	StatusBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Padding(0, 1)
	FooterBar = lipgloss.NewStyle().
		Foreground(theme.Muted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(theme.Border)

	Help = lipgloss.NewStyle().Foreground(theme.Muted)
	HelpKey = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	MutedText = lipgloss.NewStyle().Foreground(theme.Muted)
	SecondaryText = lipgloss.NewStyle().Foreground(theme.Secondary)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true).
		Padding(0, 1)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(theme.Success).
		Bold(true).
		Padding(0, 1)

	InputField = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	InputFieldFocused = InputField.BorderForeground(theme.Primary)

	ListItem = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Padding(0, 1)
	ListItemSelected = lipgloss.NewStyle().
		Foreground(theme.SelectionText).
		Background(theme.Selection).
		Padding(0, 1).
		Bold(true)
	Snippet = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true).
		PaddingLeft(4)
	Term = lipgloss.NewStyle().
		Foreground(theme.Background).
		Background(theme.Secondary).
		Padding(0, 1)
	Score = lipgloss.NewStyle().Foreground(theme.Warning)
	Toggle = lipgloss.NewStyle().Foreground(theme.Muted)
	ToggleOn = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)

	ReaderHeader = lipgloss.NewStyle().
		Foreground(theme.SelectionText).
		Background(theme.Primary).
		Padding(0, 1).
		Bold(true)
	ReaderProgress = lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Align(lipgloss.Right)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(1, 2)
	DialogTitle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		MarginBottom(1)

	BookTitle = lipgloss.NewStyle().
		Foreground(theme.Foreground).
		Bold(true)
	BookAuthor = lipgloss.NewStyle().Foreground(theme.Secondary)
}

func init() {
	ApplyTheme(DarkTheme)
}
