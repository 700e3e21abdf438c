package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"marquee/internal/history"
	"marquee/internal/media"
	"marquee/internal/provider"
	"marquee/internal/results"
	"marquee/internal/ui"
	"marquee/internal/viewer"
)

var flagPages int

func init() {
	rootCmd.Flags().IntVar(&flagPages, "pages", 1, "Number of result pages to print when not on a terminal")
}

// searchRun is the default command: marquee <term>
func searchRun(cmd *cobra.Command, args []string) error {
	slot, release, err := openSlot()
	if err != nil {
		return err
	}
	defer release()

	return runSearch(cmd, strings.TrimSpace(strings.Join(args, " ")), slot)
}

// runSearch opens the browser on a terminal and prints pages otherwise.
func runSearch(cmd *cobra.Command, query string, slot history.TermSlot) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	if !flagJSON && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		return browse(cmd.Context(), p, slot, query)
	}

	if query == "" {
		query = slot.Get()
	}
	if query == "" {
		return fmt.Errorf("no search term provided")
	}
	slot.Set(query)
	debugf("searching for: %s (%d pages)", query, flagPages)

	return printPages(cmd.Context(), cmd.OutOrStdout(), p, query, flagPages, flagJSON)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// browse runs the interactive browser with logs redirected to the log file.
func browse(ctx context.Context, p provider.Provider, slot history.TermSlot, query string) error {
	restore, err := redirectLogs()
	if err != nil {
		return err
	}
	defer restore()

	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return fmt.Errorf("resolving download dir: %w", err)
	}

	return ui.Run(ctx, ui.Options{
		Provider:    p,
		Slot:        slot,
		Logger:      logger,
		Viewer:      viewer.New(cfg.Viewer),
		DownloadDir: dir,
		Term:        query,
	})
}

// searchOutput is the --json document for a non-interactive search.
type searchOutput struct {
	Term    string        `json:"term"`
	Pages   int           `json:"pages"`
	HasMore bool          `json:"hasMore"`
	Results []media.Movie `json:"results"`
}

// printPages loads up to pages pages of query through a result set and
// writes them to w. Text output is streamed page by page; JSON is written
// once at the end. Loading stops early at the first empty page.
func printPages(ctx context.Context, w io.Writer, f results.Fetcher, query string, pages int, asJSON bool) error {
	if pages < 1 {
		pages = 1
	}

	var loadErr error
	set := results.New(f, results.ReporterFunc(func(err error) { loadErr = err }))

	printed := 0
	for page := 1; page <= pages; page++ {
		set.LoadPage(ctx, query, page)
		if loadErr != nil {
			return fmt.Errorf("search failed: %w", loadErr)
		}

		if !asJSON {
			items := set.Items()
			for _, m := range items[printed:] {
				fmt.Fprintf(w, "%s\t%s\n", m.IMDbID, provider.FormatDisplayTitle(m))
			}
			printed = len(items)
		}

		if !set.HasMore() {
			break
		}
	}

	if asJSON {
		items := set.Items()
		if items == nil {
			items = []media.Movie{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(searchOutput{
			Term:    query,
			Pages:   set.Page(),
			HasMore: set.HasMore(),
			Results: items,
		})
	}

	if printed == 0 {
		fmt.Fprintf(w, "No results for %q.\n", query)
	}
	return nil
}
