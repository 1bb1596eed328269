package mediasession

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/anven/resona/src/features/bridge"
	"github.com/anven/resona/src/features/session"
)

// Standard artwork edge sizes supplied to the host surface, smallest first.
var artworkSizes = []int{96, 256, 512}

// ArtworkLoader renders size variants of a cover image from its URL.
type ArtworkLoader interface {
	Variants(ctx context.Context, url string, sizes []int) ([]Artwork, error)
}

// Service is a one-way projection of the playback session onto the host
// media surface, plus the inbound hardware transport commands. With no
// surface available it does nothing at all.
type Service struct {
	surface Surface
	session *session.Service
	bridge  *bridge.Service
	artwork ArtworkLoader

	// mu orders metadata publishes; seq identifies the latest one so a
	// slow artwork render for a superseded track is dropped.
	mu  sync.Mutex
	seq uint64
}

// NewService creates a new media session reporter. surface and artwork may
// be nil; a nil surface makes the whole component inert.
func NewService(surface Surface, sess *session.Service, br *bridge.Service, artwork ArtworkLoader) *Service {
	return &Service{
		surface: surface,
		session: sess,
		bridge:  br,
		artwork: artwork,
	}
}

// Start registers the inbound handlers and subscribes to the session.
func (s *Service) Start() {
	if s.surface == nil {
		slog.Info("No media session surface available, reporter disabled")
		return
	}

	err := s.surface.RegisterHandlers(Handlers{
		Play:     func() { s.session.SetIsPlaying(true) },
		Pause:    func() { s.session.SetIsPlaying(false) },
		Previous: func() { s.session.PlayPrevious() },
		Next:     func() { s.session.PlayNext() },
		SeekTo:   func(pos time.Duration) { s.bridge.Seek(pos) },
	})
	if err != nil {
		slog.Warn("Failed to register media session handlers", "error", err)
	}

	s.session.Subscribe(s.onSessionChange)
}

// Stop releases the host surface.
func (s *Service) Stop() {
	if s.surface == nil {
		return
	}
	if err := s.surface.Close(); err != nil {
		slog.Warn("Failed to close media session surface", "error", err)
	}
}

func (s *Service) onSessionChange(change session.Change, snap session.Snapshot) {
	switch change {
	case session.ChangeTrack:
		s.publishMetadata(snap)
	case session.ChangePlaying:
		if err := s.surface.SetPlaybackState(snap.IsPlaying); err != nil {
			slog.Warn("Failed to publish playback state", "error", err)
		}
	}
}

// publishMetadata pushes the text fields synchronously and leaves the
// artwork render to a background goroutine, so a slow cover download never
// stalls the session caller or the listeners registered after this one.
func (s *Service) publishMetadata(snap session.Snapshot) {
	s.mu.Lock()
	s.seq++
	seq := s.seq

	if snap.CurrentTrack == nil {
		if err := s.surface.SetMetadata(Metadata{}); err != nil {
			slog.Warn("Failed to clear media session metadata", "error", err)
		}
		s.mu.Unlock()
		return
	}

	meta := Metadata{
		Title:  snap.CurrentTrack.Title,
		Artist: snap.CurrentTrack.Artist,
		Album:  snap.CurrentTrack.ReleaseTitle,
	}
	if err := s.surface.SetMetadata(meta); err != nil {
		slog.Warn("Failed to publish media session metadata", "error", err)
	}
	s.mu.Unlock()

	if s.artwork != nil && snap.CurrentTrack.CoverURL != "" {
		go s.publishArtwork(seq, meta, snap.CurrentTrack.CoverURL)
	}
}

// publishArtwork re-publishes the metadata with rendered artwork, unless a
// newer publish supersedes it first.
func (s *Service) publishArtwork(seq uint64, meta Metadata, coverURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	variants, err := s.artwork.Variants(ctx, coverURL, artworkSizes)
	if err != nil {
		slog.Debug("Failed to render artwork variants", "url", coverURL, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	meta.Artwork = variants
	if err := s.surface.SetMetadata(meta); err != nil {
		slog.Warn("Failed to publish media session metadata", "error", err)
	}
}
