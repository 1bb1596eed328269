package theming

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Palette is the theming result for one artwork image.
type Palette struct {
	Color  string `json:"color"` // hex, e.g. "#1db954"
	IsDark bool   `json:"isDark"`
}

// fallbackPalette is the fixed neutral dark palette used whenever artwork
// can't be fetched or decoded.
var fallbackPalette = Palette{Color: "#222226", IsDark: true}

// Fetcher loads raw image bytes for an artwork URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Service derives a dominant color and an is-dark flag from track artwork.
// Pure function of the artwork URL; results are memoized so only a URL
// identity change triggers recomputation.
type Service struct {
	fetcher Fetcher

	mu      sync.Mutex
	cache   map[string]Palette
	order   []string
	maxSize int
}

// NewService creates a new theming service.
func NewService(fetcher Fetcher, cacheSize int) *Service {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	return &Service{
		fetcher: fetcher,
		cache:   make(map[string]Palette),
		maxSize: cacheSize,
	}
}

// DominantColor computes the representative color for an artwork URL. It
// never fails: any error degrades to the fixed neutral dark fallback.
func (s *Service) DominantColor(ctx context.Context, url string) Palette {
	if url == "" {
		return fallbackPalette
	}

	s.mu.Lock()
	if palette, ok := s.cache[url]; ok {
		s.mu.Unlock()
		return palette
	}
	s.mu.Unlock()

	palette := s.compute(ctx, url)

	s.mu.Lock()
	if _, ok := s.cache[url]; !ok {
		s.cache[url] = palette
		s.order = append(s.order, url)
		if len(s.order) > s.maxSize {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.cache, oldest)
		}
	}
	s.mu.Unlock()
	return palette
}

func (s *Service) compute(ctx context.Context, url string) Palette {
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		slog.Debug("Artwork fetch failed, using fallback palette", "url", url, "error", err)
		return fallbackPalette
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Artwork decode failed, using fallback palette", "url", url, "error", err)
		return fallbackPalette
	}

	// A small thumbnail is plenty for a dominant color and keeps the scan
	// bounded regardless of source resolution.
	small := resize.Thumbnail(64, 64, img, resize.Lanczos3)
	dominant, ok := dominantColor(small)
	if !ok {
		return fallbackPalette
	}

	l, _, _ := dominant.Lab()
	return Palette{Color: dominant.Hex(), IsDark: l < 0.5}
}

// dominantColor quantizes the image into coarse RGB buckets and averages
// the most populated one.
func dominantColor(img image.Image) (colorful.Color, bool) {
	const step = 32 // bucket edge per channel

	type bucket struct {
		count   int
		r, g, b float64
	}
	buckets := make(map[[3]uint8]*bucket)

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a < 0x8000 {
				continue // ignore transparent pixels
			}
			r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)
			key := [3]uint8{r8 / step, g8 / step, b8 / step}
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += float64(r8) / 255
			bk.g += float64(g8) / 255
			bk.b += float64(b8) / 255
		}
	}

	var best *bucket
	for _, bk := range buckets {
		if best == nil || bk.count > best.count {
			best = bk
		}
	}
	if best == nil || best.count == 0 {
		return colorful.Color{}, false
	}
	n := float64(best.count)
	return colorful.Color{R: best.r / n, G: best.g / n, B: best.b / n}, true
}
