package audio

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const tempDir = "/tmp/resona-audio"

// fetchSource resolves an audio source URL to a local, seekable file.
// Local paths and file:// URLs are used in place; http(s) sources are
// downloaded into a content-addressed temp cache so repeated loads and
// probes of the same track don't re-download.
func fetchSource(ctx context.Context, url string) (string, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return downloadSource(ctx, url)
	case strings.HasPrefix(url, "file://"):
		return strings.TrimPrefix(url, "file://"), nil
	default:
		return url, nil
	}
}

func downloadSource(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	hash := md5.Sum([]byte(url))
	tempPath := filepath.Join(tempDir, fmt.Sprintf("%x%s", hash, sourceExtension(url)))

	// Cache hit: recent files are reused as-is.
	if info, err := os.Stat(tempPath); err == nil {
		if time.Since(info.ModTime()) < 24*time.Hour {
			slog.Debug("Using cached audio source", "path", tempPath)
			return tempPath, nil
		}
		os.Remove(tempPath)
	}

	slog.Debug("Downloading audio source", "url", url, "path", tempPath)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download audio source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("audio download failed with status %d", resp.StatusCode)
	}

	file, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return tempPath, nil
}

// sourceExtension extracts the audio extension from a URL, defaulting to .mp3
func sourceExtension(url string) string {
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	switch ext := strings.ToLower(filepath.Ext(trimmed)); ext {
	case ".mp3", ".flac", ".ogg", ".oga", ".wav":
		return ext
	default:
		return ".mp3"
	}
}
