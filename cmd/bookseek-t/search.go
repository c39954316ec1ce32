package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justyntemme/bookseek-t/internal/logging"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/search"
)

func newSearchCmd(opts *options) *cobra.Command {
	var (
		title    bool
		advanced bool
		rank     string
		page     int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			session := nav.SearchSession{
				Query:    strings.Join(args, " "),
				Mode:     nav.ModeKeyword,
				Advanced: advanced,
				RankMode: nav.RankMode(strings.ToLower(rank)),
				Page:     page,
			}
			if title {
				session.Mode = nav.ModeTitle
			}
			if !session.RankMode.Valid() {
				return fmt.Errorf("unknown rank mode %q (want tf, pr or tfpr)", rank)
			}
			if page < 1 {
				return fmt.Errorf("page must be at least 1")
			}

			log := logging.Console(cmd.ErrOrStderr(), cfg.LogLevel)
			res, err := search.Run(cmd.Context(), newClient(cfg, log), session, cfg.SearchPageSize)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), session, res, cfg.SearchPageSize)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&title, "title", "t", false, "search titles instead of text")
	cmd.Flags().BoolVarP(&advanced, "advanced", "a", false, "treat the query as a regular expression")
	cmd.Flags().StringVarP(&rank, "rank", "r", string(nav.RankTF), "ranking: tf, pr or tfpr")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page")
	return cmd
}

func printResults(w io.Writer, session nav.SearchSession, res search.Result, pageSize int) {
	pages := max(1, (res.Total+pageSize-1)/pageSize)
	fmt.Fprintf(w, "%s results for %q, page %d of %d", humanize.Comma(int64(res.Total)), session.Query, session.Page, pages)
	if res.BackendElapsedMs != nil {
		fmt.Fprintf(w, " (%.0f ms)", *res.BackendElapsedMs)
	}
	fmt.Fprintln(w)

	for _, hit := range res.Items {
		fmt.Fprintf(w, "%7d  %s", hit.ID, hit.Title)
		if session.Mode == nav.ModeKeyword {
			fmt.Fprintf(w, "  [%s]", strings.Join(search.TruncateTerms(hit.MatchedTerms, 5), " "))
			fmt.Fprintf(w, "  tf=%.3f pr=%.4f score=%.3f", hit.TF, hit.PageRank, hit.Score)
		}
		fmt.Fprintln(w)
	}
}
