// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/history"
	"marquee/internal/httputil"
	"marquee/internal/provider"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagAPIKey    string
	flagJSON      bool
	flagDebug     bool
	flagNoHistory bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// logger is the process logger. It writes to stderr until the TUI takes the
// terminal, after which it is redirected to the log file.
var logger = newLogger(os.Stderr)

var rootCmd = &cobra.Command{
	Use:   "marquee [term]",
	Short: "Search movies from the terminal",
	Long: `Marquee searches the OMDb movie database.
On a terminal it opens an interactive browser that loads more results as you
scroll; otherwise it prints result pages to stdout.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              searchRun,
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "marquee", Version)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel in-flight requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "OMDb API key (overrides config and $"+config.APIKeyEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not read or record search history")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(posterCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	return nil
}

// newLogger builds the process logger with timestamps.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "marquee"})
}

// redirectLogs points the logger at the log file so output does not corrupt
// the TUI. The returned func closes the file.
func redirectLogs() (func(), error) {
	path, err := config.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		logger.Debugf(format, args...)
	}
}

// newProvider builds the OMDb client from the merged configuration.
func newProvider() (provider.Provider, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return provider.NewOMDb(provider.Options{
		Base:              cfg.Base,
		APIKey:            cfg.APIKey,
		Type:              cfg.Type,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Client:            httputil.NewClient(cfg.Timeout()),
	}), nil
}

// openSlot returns the term slot: the history database when enabled, memory
// otherwise. The returned func releases it.
func openSlot() (history.TermSlot, func(), error) {
	if !cfg.History {
		return &history.MemorySlot{}, func() {}, nil
	}
	store, err := openHistory()
	if err != nil {
		return nil, nil, err
	}
	return history.NewSlot(store, logger), func() { store.Close() }, nil
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	debugf("history database: %s", path)
	return history.Open(path)
}
