package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/history"
	"marquee/internal/ui"
)

var (
	flagClear  bool
	flagRemove string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Search again from search history",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all history")
	historyCmd.Flags().StringVar(&flagRemove, "remove", "", "Delete one term from history")
}

func historyRun(cmd *cobra.Command, args []string) error {
	if !cfg.History {
		return fmt.Errorf("history is disabled")
	}

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()
	ctx := cmd.Context()

	switch {
	case flagClear:
		if isTerminal(os.Stdin) {
			ok, err := ui.Confirm("Clear all history?")
			if err != nil || !ok {
				return err
			}
		}
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil

	case flagRemove != "":
		return store.Remove(ctx, flagRemove)
	}

	entries, err := store.Recent(ctx, 50)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if flagJSON {
		if entries == nil {
			entries = []history.Entry{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries found.")
		return nil
	}

	// Show history in fzf
	idx, err := ui.Select("History", history.FormatForDisplay(entries))
	if errors.Is(err, ui.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	selected := entries[idx]
	debugf("searching again: %s", selected.Term)

	return runSearch(cmd, selected.Term, history.NewSlot(store, logger))
}
