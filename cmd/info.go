package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"marquee/internal/media"
)

var infoCmd = &cobra.Command{
	Use:   "info <imdbID>",
	Short: "Show full details for a title",
	Args:  cobra.ExactArgs(1),
	RunE:  infoRun,
}

func infoRun(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	d, err := p.Details(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetching details: %w", err)
	}
	debugf("details: %s (%s)", d.Title, d.IMDbID)

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	writeDetail(cmd.OutOrStdout(), d)
	return nil
}

var infoLabel = lipgloss.NewStyle().Width(13)

// writeDetail prints d as labeled plain text. Missing values are skipped.
func writeDetail(w io.Writer, d *media.Detail) {
	fmt.Fprintf(w, "%s (%s)\n", d.Title, d.Year)

	var meta []string
	for _, v := range []string{strings.ToUpper(d.Type.String()), d.Rated, d.Runtime, d.Genre} {
		if available(v) {
			meta = append(meta, v)
		}
	}
	fmt.Fprintln(w, strings.Join(meta, " • "))

	if available(d.Plot) {
		fmt.Fprintf(w, "\n%s\n", ansi.Wordwrap(d.Plot, 80, ""))
	}

	fmt.Fprintln(w)
	for _, f := range d.Fields() {
		if available(f.Value) {
			fmt.Fprintf(w, "%s %s\n", infoLabel.Render(f.Label+":"), f.Value)
		}
	}
	for _, r := range d.Ratings {
		fmt.Fprintf(w, "%s: %s\n", r.Source, r.Value)
	}
	fmt.Fprintf(w, "%s %s\n", infoLabel.Render("Poster:"), d.Movie().PosterOrPlaceholder())
}

func available(v string) bool {
	return v != "" && v != media.NotAvailable
}
