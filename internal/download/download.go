// Package download saves poster images to disk.
// Output paths are sanitized and validated against directory traversal, and
// files are written atomically (temp file + rename).
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

// maxPosterSize caps a poster download at 10MB.
const maxPosterSize = 10 * 1024 * 1024

// Filename returns the on-disk name for a movie's poster.
func Filename(m media.Movie) string {
	name := m.Title
	if m.Year != "" {
		name += " (" + m.Year + ")"
	}
	if m.IMDbID != "" {
		name += " [" + m.IMDbID + "]"
	}

	ext := strings.ToLower(path.Ext(strings.SplitN(m.Poster, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = ".jpg"
	}
	return httputil.SanitizeFilename(name + ext)
}

// Poster downloads the movie's poster into dir and returns the file path.
func Poster(ctx context.Context, client *http.Client, m media.Movie, dir string) (string, error) {
	if !m.HasPoster() {
		return "", fmt.Errorf("%s has no poster", m.Title)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	outputPath, err := httputil.SafeDownloadPath(dir, Filename(m))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	resp, err := httputil.Get(ctx, client, m.Poster)
	if err != nil {
		return "", fmt.Errorf("downloading poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("poster download returned status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(dir, "poster-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxPosterSize+1))
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing poster: %w", err)
	}
	if n > maxPosterSize {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("poster exceeds %d bytes", maxPosterSize)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming poster file: %w", err)
	}

	return outputPath, nil
}
