// Package mpris projects the playback session onto the Linux desktop via
// the org.mpris.MediaPlayer2 D-Bus interface, so hardware media keys and
// desktop shells control the player like any other.
package mpris

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"

	"github.com/anven/resona/src/features/mediasession"
)

const objectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")

// Surface is the MPRIS implementation of mediasession.Surface.
type Surface struct {
	conn     *dbus.Conn
	props    *prop.Properties
	busName  string
	identity string

	mu       sync.RWMutex
	handlers mediasession.Handlers
}

// Ensure Surface implements mediasession.Surface
var _ mediasession.Surface = (*Surface)(nil)

// New connects to the session bus and claims the player bus name. Callers
// should treat an error as "no media surface on this host" and run without
// one.
func New(name string) (*Surface, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	busName := "org.mpris.MediaPlayer2." + name
	reply, err := conn.RequestName(busName, dbus.NameFlagReplaceExisting)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already owned", busName)
	}

	s := &Surface{conn: conn, busName: busName, identity: name}

	propSpec := map[string]map[string]*prop.Prop{
		"org.mpris.MediaPlayer2": {
			"Identity":            {Value: name, Writable: false, Emit: prop.EmitTrue},
			"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse},
			"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse},
			"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse},
			"SupportedUriSchemes": {Value: []string{"http", "https", "file"}, Writable: false, Emit: prop.EmitFalse},
			"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/flac", "audio/ogg"}, Writable: false, Emit: prop.EmitFalse},
		},
		"org.mpris.MediaPlayer2.Player": {
			"PlaybackStatus": {Value: "Stopped", Writable: false, Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{}, Writable: false, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanSeek":        {Value: true, Writable: false, Emit: prop.EmitFalse},
			"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse},
		},
	}
	props, err := prop.Export(conn, objectPath, propSpec)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export properties: %w", err)
	}
	s.props = props

	if err := conn.Export(s, objectPath, "org.mpris.MediaPlayer2.Player"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export player interface: %w", err)
	}
	if err := conn.Export(s, objectPath, "org.mpris.MediaPlayer2"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to export root interface: %w", err)
	}

	slog.Info("MPRIS surface registered", "bus", busName)
	return s, nil
}

// RegisterHandlers wires the host transport commands into the core.
func (s *Surface) RegisterHandlers(handlers mediasession.Handlers) error {
	s.mu.Lock()
	s.handlers = handlers
	s.mu.Unlock()
	return nil
}

// SetMetadata publishes the now-playing metadata.
func (s *Surface) SetMetadata(meta mediasession.Metadata) error {
	metadata := map[string]dbus.Variant{}
	if meta.Title != "" {
		metadata["xesam:title"] = dbus.MakeVariant(meta.Title)
	}
	if meta.Artist != "" {
		metadata["xesam:artist"] = dbus.MakeVariant([]string{meta.Artist})
	}
	if meta.Album != "" {
		metadata["xesam:album"] = dbus.MakeVariant(meta.Album)
	}
	if url := s.artworkFileURL(meta.Artwork); url != "" {
		metadata["mpris:artUrl"] = dbus.MakeVariant(url)
	}
	return s.props.Set("org.mpris.MediaPlayer2.Player", "Metadata", dbus.MakeVariant(metadata))
}

// SetPlaybackState publishes the transport state.
func (s *Surface) SetPlaybackState(playing bool) error {
	status := "Paused"
	if playing {
		status = "Playing"
	}
	return s.props.Set("org.mpris.MediaPlayer2.Player", "PlaybackStatus", dbus.MakeVariant(status))
}

// Close releases the bus name.
func (s *Surface) Close() error {
	if _, err := s.conn.ReleaseName(s.busName); err != nil {
		slog.Warn("Failed to release bus name", "bus", s.busName, "error", err)
	}
	return s.conn.Close()
}

// artworkFileURL persists the largest artwork variant so desktop shells can
// load it from a file:// URL, which is all MPRIS understands.
func (s *Surface) artworkFileURL(variants []mediasession.Artwork) string {
	if len(variants) == 0 {
		return ""
	}
	largest := variants[0]
	for _, v := range variants[1:] {
		if v.Size > largest.Size {
			largest = v
		}
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("resona-nowplaying-%s.jpg", s.identity))
	if err := os.WriteFile(path, largest.Data, 0644); err != nil {
		slog.Warn("Failed to write MPRIS artwork file", "path", path, "error", err)
		return ""
	}
	return "file://" + path
}

// The methods below are invoked by the desktop over D-Bus.

func (s *Surface) Play() *dbus.Error {
	if h := s.currentHandlers().Play; h != nil {
		h()
	}
	return nil
}

func (s *Surface) Pause() *dbus.Error {
	if h := s.currentHandlers().Pause; h != nil {
		h()
	}
	return nil
}

func (s *Surface) PlayPause() *dbus.Error {
	handlers := s.currentHandlers()
	status, err := s.props.Get("org.mpris.MediaPlayer2.Player", "PlaybackStatus")
	if err == nil && status.Value() == "Playing" {
		if handlers.Pause != nil {
			handlers.Pause()
		}
		return nil
	}
	if handlers.Play != nil {
		handlers.Play()
	}
	return nil
}

func (s *Surface) Stop() *dbus.Error {
	if h := s.currentHandlers().Pause; h != nil {
		h()
	}
	return nil
}

func (s *Surface) Next() *dbus.Error {
	if h := s.currentHandlers().Next; h != nil {
		h()
	}
	return nil
}

func (s *Surface) Previous() *dbus.Error {
	if h := s.currentHandlers().Previous; h != nil {
		h()
	}
	return nil
}

// SetPosition receives the position in microseconds, per the MPRIS spec.
func (s *Surface) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	if h := s.currentHandlers().SeekTo; h != nil {
		h(time.Duration(position) * time.Microsecond)
	}
	return nil
}

// Seek receives a relative offset; resona only supports absolute seeks, so
// desktop relative seeks are ignored.
func (s *Surface) Seek(offset int64) *dbus.Error {
	slog.Debug("Ignoring relative MPRIS seek", "offset", offset)
	return nil
}

func (s *Surface) Raise() *dbus.Error { return nil }
func (s *Surface) Quit() *dbus.Error  { return nil }

func (s *Surface) currentHandlers() mediasession.Handlers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handlers
}
