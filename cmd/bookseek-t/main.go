package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justyntemme/bookseek-t/internal/api"
	"github.com/justyntemme/bookseek-t/internal/config"
	"github.com/justyntemme/bookseek-t/internal/logging"
	"github.com/justyntemme/bookseek-t/internal/ui"
	"github.com/justyntemme/bookseek-t/internal/ui/terminal"
)

// options are the flags shared by every command
type options struct {
	configPath string
	apiBase    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var fresh, debug bool

	root := &cobra.Command{
		Use:          "bookseek-t",
		Short:        "Terminal client for the book search engine",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if debug {
				return printDebug(cmd.OutOrStdout(), cfg)
			}
			return runTUI(cfg, fresh)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/bookseek-t/config.json)")
	pf.StringVar(&opts.apiBase, "api", "", "search service URL, saved to the config")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.Flags().BoolVar(&fresh, "fresh", false, "start on an empty search instead of the last screen")
	root.Flags().BoolVar(&debug, "debug", false, "print configuration and service status, then exit")

	root.AddCommand(newSearchCmd(opts), newReadCmd(opts))
	return root
}

// load reads the config and applies flag overrides
func (o *options) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.apiBase != "" {
		if err := cfg.SetAPIBase(o.apiBase); err != nil {
			return nil, fmt.Errorf("save api url: %w", err)
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

func newClient(cfg *config.Config, log zerolog.Logger) *api.Client {
	return api.NewClient(cfg.APIBase,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(log),
	)
}

func runTUI(cfg *config.Config, fresh bool) error {
	log, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	mode := terminal.DetectMode()
	log.Info().Str("api", cfg.APIBase).Stringer("images", mode).Msg("starting")

	app := ui.NewApp(cfg, newClient(cfg, log), mode, log)
	if !fresh {
		app.Resume(cfg.RestoreContext())
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

func printDebug(w io.Writer, cfg *config.Config) error {
	fmt.Fprintf(w, "Config path: %s\n", cfg.Path())
	fmt.Fprintf(w, "Log file:    %s\n", cfg.LogPath())
	fmt.Fprintf(w, "Service URL: %s\n", cfg.APIBase)
	fmt.Fprintf(w, "Timeout:     %s\n", cfg.Timeout())
	fmt.Fprintf(w, "Images:      %s\n", terminal.DetectMode())
	fmt.Fprintf(w, "Resume at:   %s\n", cfg.RestoreContext())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := newClient(cfg, zerolog.Nop()).Health(ctx); err != nil {
		fmt.Fprintf(w, "Service:     unreachable (%v)\n", err)
		return nil
	}
	fmt.Fprintf(w, "Service:     ok\n")
	return nil
}
