package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the global bindings the app handles itself, plus the screen
// bindings listed in the help overlay
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding

	// Search
	Edit     key.Binding
	Open     key.Binding
	Mode     key.Binding
	Regex    key.Binding
	Rank     key.Binding
	Page     key.Binding
	Clear    key.Binding
	NewTheme key.Binding

	// Book
	Read     key.Binding
	RecsMode key.Binding
	Copy     key.Binding

	// Reader
	Turn   key.Binding
	Resume key.Binding
	Font   key.Binding
	Dark   key.Binding
}

// DefaultKeyMap returns the default vim-like key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Edit:     key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "edit query")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open book")),
		Mode:     key.NewBinding(key.WithKeys("m", "tab"), key.WithHelp("m/tab", "keyword or title search")),
		Regex:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "regex matching (keyword)")),
		Rank:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "cycle ranking tf/pr/tfpr (keyword)")),
		Page:     key.NewBinding(key.WithKeys("n", "p"), key.WithHelp("n/p", "next/previous page")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "new search")),
		NewTheme: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "cycle theme")),

		Read:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "read book")),
		RecsMode: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "similar/PageRank recommendations")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),

		Turn:   key.NewBinding(key.WithKeys("h", "l"), key.WithHelp("h/l", "previous/next page")),
		Resume: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "resume at last page read")),
		Font:   key.NewBinding(key.WithKeys("-", "+"), key.WithHelp("-/+", "font size")),
		Dark:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark mode")),
	}
}

// helpSections groups bindings by screen for the help overlay
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{"Search", []key.Binding{k.Edit, k.Open, k.Mode, k.Regex, k.Rank, k.Page, k.Clear, k.NewTheme}},
		{"Book", []key.Binding{k.Open, k.Read, k.RecsMode, k.Copy, k.Escape}},
		{"Reader", []key.Binding{k.Turn, k.Resume, k.Font, k.Dark, k.Escape}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
}

type helpSection struct {
	title    string
	bindings []key.Binding
}
