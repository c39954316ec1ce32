package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/justyntemme/bookseek-t/internal/logging"
	"github.com/justyntemme/bookseek-t/internal/nav"
	"github.com/justyntemme/bookseek-t/internal/reader"
)

func newReadCmd(opts *options) *cobra.Command {
	var (
		page  int
		size  int
		width int
	)

	cmd := &cobra.Command{
		Use:   "read <book-id>",
		Short: "Print one page of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if size <= 0 {
				size = cfg.ReaderPageSize
			}

			log := logging.Console(cmd.ErrOrStderr(), cfg.LogLevel)
			ctrl := reader.NewController(size, log)
			ctrl.SetBook(nav.BookID(id))
			req, _ := ctrl.GoTo(page)

			resp := req.Do(cmd.Context(), newClient(cfg, log))
			ctrl.Apply(resp)
			if err := ctrl.Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s, page %d of %s\n\n", ctrl.Title(), ctrl.Cursor().Page, humanize.Comma(int64(ctrl.TotalPages())))
			fmt.Fprintln(out, wordwrap.String(ctrl.Text(), width))
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&size, "size", "s", 0, "characters per page (default from config)")
	cmd.Flags().IntVarP(&width, "width", "w", 80, "wrap column")
	return cmd
}
