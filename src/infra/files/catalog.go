package files

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/anven/resona/src/infra/artwork"
	"github.com/anven/resona/src/music"
)

// LocalCatalog serves playable tracks scanned from a local music directory.
// It implements music.Catalog; tracks are rebuilt wholesale on each scan
// and never mutated in place.
type LocalCatalog struct {
	root string

	mu     sync.RWMutex
	tracks map[string]*music.Track
}

// NewLocalCatalog creates a catalog rooted at dir and performs an initial scan.
func NewLocalCatalog(dir string) (*LocalCatalog, error) {
	c := &LocalCatalog{
		root:   dir,
		tracks: make(map[string]*music.Track),
	}
	if err := c.Scan(); err != nil {
		return nil, err
	}
	return c, nil
}

// Scan rebuilds the track list from the filesystem.
func (c *LocalCatalog) Scan() error {
	found := make(map[string]*music.Track)

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !isAudioFile(path) {
			return nil
		}
		track, err := probeTrack(path)
		if err != nil {
			slog.Warn("Skipping unreadable track", "path", path, "error", err)
			return nil
		}
		found[track.ID] = track
		return nil
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tracks = found
	c.mu.Unlock()

	slog.Info("Local catalog scanned", "root", c.root, "tracks", len(found))
	return nil
}

// GetTrack returns a track by id, or nil when unknown.
func (c *LocalCatalog) GetTrack(ctx context.Context, id string) (*music.Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tracks[id], nil
}

// GetTracks returns all tracks sorted by artist then title.
func (c *LocalCatalog) GetTracks(ctx context.Context) ([]*music.Track, error) {
	c.mu.RLock()
	tracks := make([]*music.Track, 0, len(c.tracks))
	for _, t := range c.tracks {
		tracks = append(tracks, t)
	}
	c.mu.RUnlock()

	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Artist != tracks[j].Artist {
			return tracks[i].Artist < tracks[j].Artist
		}
		return tracks[i].Title < tracks[j].Title
	})
	return tracks, nil
}

// GetTracksByIDs returns the known subset of the requested ids, preserving
// request order.
func (c *LocalCatalog) GetTracksByIDs(ctx context.Context, ids []string) ([]*music.Track, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tracks := make([]*music.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := c.tracks[id]; ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// probeTrack reads file tags and builds an immutable track record. The
// duration is left unresolved; the playback core probes it lazily.
func probeTrack(path string) (*music.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	track := &music.Track{
		ID:       trackID(path),
		Title:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Artist:   "Unknown Artist",
		AudioURL: path,
	}

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged files stay playable under their filename.
		slog.Debug("No readable tags", "path", path, "error", err)
		track.ArtistID = artistID(track.Artist)
		return track, nil
	}

	if title := strings.TrimSpace(meta.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(meta.Artist()); artist != "" {
		track.Artist = artist
	}
	if album := strings.TrimSpace(meta.Album()); album != "" {
		track.ReleaseTitle = album
		track.ReleaseID = releaseID(track.Artist, album)
	}
	if meta.Picture() != nil {
		track.CoverURL = artwork.EmbeddedURL(path)
	}
	track.ArtistID = artistID(track.Artist)
	return track, nil
}

// Deterministic ids keep catalog identity stable across rescans.
func trackID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("track:"+path)).String()
}

func artistID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("artist:"+name)).String()
}

func releaseID(artist, album string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("release:"+artist+"/"+album)).String()
}

func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac", ".ogg", ".oga", ".wav":
		return true
	}
	return false
}
