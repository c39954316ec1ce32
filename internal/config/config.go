package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/justyntemme/bookseek-t/internal/nav"
)

const (
	DefaultAPIBase        = "http://localhost:8000"
	DefaultRequestTimeout = "15s"
	DefaultSearchPageSize = 20
	DefaultReaderPageSize = 4000
	DefaultLogLevel       = "info"
	DefaultTheme          = "dark"
	configFileName        = "config.json"
	configDirName         = "bookseek-t"
	logFileName           = "bookseek-t.log"
	envPrefix             = "BOOKSEEK"
	MaxRecentlyViewed     = 10 // Maximum number of recently viewed books to track
	MaxReaderCursors      = 50
)

// RecentEntry represents a recently viewed book
type RecentEntry struct {
	BookID   int       `json:"book_id" mapstructure:"book_id"`
	Title    string    `json:"title" mapstructure:"title"`
	OpenedAt time.Time `json:"opened_at" mapstructure:"opened_at"`
}

// ReaderPrefs is the reader presentation, shared by every book
type ReaderPrefs struct {
	FontSize int  `json:"font_size" mapstructure:"font_size"`
	DarkMode bool `json:"dark_mode" mapstructure:"dark_mode"`
}

// ReadingPosition is the last page read in one book
type ReadingPosition struct {
	Page      int       `json:"page" mapstructure:"page"`
	UpdatedAt time.Time `json:"updated_at" mapstructure:"updated_at"`
}

// Config holds the application configuration and the small amount of state
// carried between runs
type Config struct {
	APIBase        string `json:"api_base" mapstructure:"api_base"`
	SearchPageSize int    `json:"search_page_size" mapstructure:"search_page_size"`
	ReaderPageSize int    `json:"reader_page_size" mapstructure:"reader_page_size"`
	RequestTimeout string `json:"request_timeout" mapstructure:"request_timeout"`
	LogLevel       string `json:"log_level" mapstructure:"log_level"`
	LogFile        string `json:"log_file,omitempty" mapstructure:"log_file"`
	ShowCovers     bool   `json:"show_covers" mapstructure:"show_covers"`
	Theme          string `json:"theme" mapstructure:"theme"`

	Reader         ReaderPrefs                `json:"reader" mapstructure:"reader"`
	RecentlyViewed []RecentEntry              `json:"recently_viewed,omitempty" mapstructure:"recently_viewed"`
	ReaderCursors  map[string]ReadingPosition `json:"reader_cursors,omitempty" mapstructure:"reader_cursors"`
	// LastContext is the JSON-encoded navigation context of the screen that
	// was open on exit. Kept as a string so key case survives viper.
	LastContext string `json:"last_context,omitempty" mapstructure:"last_context"`

	// Path to config file (not persisted)
	path string
}

// Load loads configuration from the default config file, applying
// BOOKSEEK_* environment overrides
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from path. A missing file yields defaults.
func LoadFrom(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("search_page_size", DefaultSearchPageSize)
	v.SetDefault("reader_page_size", DefaultReaderPageSize)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("show_covers", true)
	v.SetDefault("theme", DefaultTheme)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	hook := viper.DecodeHook(mapstructure.StringToTimeHookFunc(time.RFC3339))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, err
	}

	cfg.path = configPath
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = DefaultSearchPageSize
	}
	if cfg.ReaderPageSize <= 0 {
		cfg.ReaderPageSize = DefaultReaderPageSize
	}
	return cfg, nil
}

// Save persists the configuration to disk
func (c *Config) Save() error {
	// Ensure directory exists
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// Path returns the config file location
func (c *Config) Path() string {
	return c.path
}

// LogPath returns the log file location, next to the config file by default
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(filepath.Dir(c.path), logFileName)
}

// Timeout returns the per-request timeout. A bare number is read as
// nanoseconds; anything unreadable or non-positive gives the default.
func (c *Config) Timeout() time.Duration {
	d, err := cast.ToDurationE(c.RequestTimeout)
	if err != nil || d <= 0 {
		d = cast.ToDuration(DefaultRequestTimeout)
	}
	return d
}

// SetAPIBase updates the service URL and saves
func (c *Config) SetAPIBase(base string) error {
	c.APIBase = strings.TrimRight(base, "/")
	return c.Save()
}

// SetTheme sets the UI theme and saves
func (c *Config) SetTheme(name string) error {
	c.Theme = name
	return c.Save()
}

// AddRecentlyViewed adds a book to the front of the recently viewed list
func (c *Config) AddRecentlyViewed(bookID nav.BookID, title string) error {
	// Remove existing entry for this book if present
	newList := make([]RecentEntry, 0, MaxRecentlyViewed)
	for _, entry := range c.RecentlyViewed {
		if entry.BookID != int(bookID) {
			newList = append(newList, entry)
		}
	}

	entry := RecentEntry{
		BookID:   int(bookID),
		Title:    title,
		OpenedAt: time.Now(),
	}
	c.RecentlyViewed = append([]RecentEntry{entry}, newList...)

	if len(c.RecentlyViewed) > MaxRecentlyViewed {
		c.RecentlyViewed = c.RecentlyViewed[:MaxRecentlyViewed]
	}

	return c.Save()
}

// SavedPage returns the last page read in a book
func (c *Config) SavedPage(bookID nav.BookID) (int, bool) {
	pos, ok := c.ReaderCursors[strconv.Itoa(int(bookID))]
	if !ok || pos.Page < 1 {
		return 0, false
	}
	return pos.Page, true
}

// SetSavedPage records the page read in a book, evicting the oldest entry
// once MaxReaderCursors books are tracked, and saves
func (c *Config) SetSavedPage(bookID nav.BookID, page int) error {
	if c.ReaderCursors == nil {
		c.ReaderCursors = make(map[string]ReadingPosition)
	}
	c.ReaderCursors[strconv.Itoa(int(bookID))] = ReadingPosition{Page: page, UpdatedAt: time.Now()}

	for len(c.ReaderCursors) > MaxReaderCursors {
		var oldestKey string
		var oldest time.Time
		for k, p := range c.ReaderCursors {
			if oldestKey == "" || p.UpdatedAt.Before(oldest) {
				oldestKey, oldest = k, p.UpdatedAt
			}
		}
		delete(c.ReaderCursors, oldestKey)
	}

	return c.Save()
}

// SetReaderPrefs stores the reader font size and palette and saves
func (c *Config) SetReaderPrefs(prefs ReaderPrefs) error {
	c.Reader = prefs
	return c.Save()
}

// SaveContext stores the navigation context to resume from and saves
func (c *Config) SaveContext(ctx nav.Context) error {
	state := nav.Encode(ctx)
	if state == nil {
		c.LastContext = ""
		return c.Save()
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	c.LastContext = string(data)
	return c.Save()
}

// RestoreContext returns the stored navigation context, Root when there is
// none or it cannot be read
func (c *Config) RestoreContext() nav.Context {
	if c.LastContext == "" {
		return nav.Root()
	}
	var state any
	if err := json.Unmarshal([]byte(c.LastContext), &state); err != nil {
		return nav.Root()
	}
	return nav.Decode(state)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}

	return filepath.Join(configDir, configDirName, configFileName), nil
}
