package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/download"
	"marquee/internal/httputil"
	"marquee/internal/viewer"
)

var (
	flagOutput string
	flagOpen   bool
)

var posterCmd = &cobra.Command{
	Use:   "poster <imdbID>",
	Short: "Download a title's poster",
	Args:  cobra.ExactArgs(1),
	RunE:  posterRun,
}

func init() {
	posterCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Directory to save into (default: download_dir from config)")
	posterCmd.Flags().BoolVar(&flagOpen, "open", false, "Open the poster after downloading")
}

func posterRun(cmd *cobra.Command, args []string) error {
	p, err := newProvider()
	if err != nil {
		return err
	}

	d, err := p.Details(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("fetching details: %w", err)
	}

	dir := flagOutput
	if dir == "" {
		dir, err = cfg.ExpandDownloadDir()
		if err != nil {
			return fmt.Errorf("resolving download dir: %w", err)
		}
	}
	debugf("downloading poster for %s into %s", d.IMDbID, dir)

	outputPath, err := download.Poster(cmd.Context(), httputil.NewClient(cfg.Timeout()), d.Movie(), dir)
	if err != nil {
		return err
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
			"imdbID": d.IMDbID,
			"path":   outputPath,
		})
	}
	fmt.Fprintf(os.Stderr, "Downloaded: %s\n", outputPath)

	if flagOpen {
		v := viewer.New(cfg.Viewer)
		if !v.Available() {
			return fmt.Errorf("viewer %q not found in PATH", v.Name())
		}
		return v.Open(outputPath)
	}
	return nil
}
