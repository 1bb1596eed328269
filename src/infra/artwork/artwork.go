package artwork

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"

	"github.com/anven/resona/src/features/mediasession"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"
)

const tempDir = "/tmp/resona-artwork"

// Service loads cover images from http(s) URLs, local paths, or embedded
// tags inside audio files (embedded:// URLs produced by the local catalog
// scanner), and renders size variants for the media session surface.
type Service struct{}

// NewService creates a new artwork service.
func NewService() *Service {
	return &Service{}
}

// Fetch returns the raw image bytes for an artwork URL.
func (s *Service) Fetch(ctx context.Context, url string) ([]byte, error) {
	switch {
	case url == "":
		return nil, fmt.Errorf("empty artwork URL")
	case strings.HasPrefix(url, embeddedScheme):
		return extractEmbedded(strings.TrimPrefix(url, embeddedScheme))
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return s.download(ctx, url)
	case strings.HasPrefix(url, "file://"):
		return os.ReadFile(strings.TrimPrefix(url, "file://"))
	default:
		return os.ReadFile(url)
	}
}

// Variants decodes the artwork once and renders each requested square size
// from the same source image.
func (s *Service) Variants(ctx context.Context, url string, sizes []int) ([]mediasession.Artwork, error) {
	data, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}

	variants := make([]mediasession.Artwork, 0, len(sizes))
	for _, size := range sizes {
		resized := resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("failed to encode artwork variant: %w", err)
		}
		variants = append(variants, mediasession.Artwork{
			Size: size,
			MIME: "image/jpeg",
			Data: buf.Bytes(),
		})
	}
	return variants, nil
}

// download fetches a remote image with a 24-hour temp cache keyed by URL.
func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	hash := md5.Sum([]byte(url))
	tempPath := filepath.Join(tempDir, fmt.Sprintf("%x", hash))

	if info, err := os.Stat(tempPath); err == nil {
		if time.Since(info.ModTime()) < 24*time.Hour {
			slog.Debug("Using cached artwork", "path", tempPath)
			return os.ReadFile(tempPath)
		}
		os.Remove(tempPath)
	}

	slog.Debug("Downloading artwork", "url", url)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork response: %w", err)
	}
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		slog.Warn("Failed to cache artwork", "path", tempPath, "error", err)
	}
	return data, nil
}
