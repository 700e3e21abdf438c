// Package viewer opens posters and IMDb pages in external programs.
// All invocations use exec.Command with explicit argument slices and only
// ever receive validated https URLs or local file paths.
package viewer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"marquee/internal/httputil"
)

// Viewer is the interface for external opener implementations.
type Viewer interface {
	// Open shows target, an https URL or an existing local file.
	Open(target string) error

	// Name returns the program name.
	Name() string

	// Available checks if the program exists in PATH.
	Available() bool
}

// New creates a viewer by name. "auto" picks the desktop opener for the
// current platform.
func New(name string) Viewer {
	switch strings.ToLower(name) {
	case "", "auto":
		if runtime.GOOS == "darwin" {
			return &System{name: "open"}
		}
		return &System{name: "xdg-open"}
	case "open", "xdg-open":
		return &System{name: strings.ToLower(name)}
	default:
		return &Generic{name: strings.ToLower(name)}
	}
}

// IMDbURL returns the IMDb title page for id.
func IMDbURL(id string) (string, error) {
	if err := httputil.ValidateIMDbID(id); err != nil {
		return "", err
	}
	return "https://www.imdb.com/title/" + id + "/", nil
}

// checkTarget accepts https URLs and existing regular files.
func checkTarget(target string) error {
	if strings.Contains(target, "://") {
		return httputil.ValidateURL(target)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("opening %q: %w", target, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %q", target)
	}
	return nil
}

// start launches name detached from the terminal so the TUI keeps running.
func start(name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return cmd.Process.Release()
}
