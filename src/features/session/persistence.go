package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/anven/resona/src/music"
)

// ResumableContext is the serialization group that survives a restart: the
// loaded track and the navigation queue. Transient session flags (isPlaying,
// isExpanded) are excluded by construction and never cross the boundary.
type ResumableContext struct {
	CurrentTrack *music.Track   `json:"currentTrack"`
	Queue        []*music.Track `json:"queue"`
}

// Store reads and writes the resumable context as a JSON file.
type Store struct {
	path string
}

// NewStore creates a session store at the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the resumable context, replacing any previous one.
func (s *Store) Save(ctx *ResumableContext) error {
	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session state: %w", err)
	}
	return nil
}

// Load reads the resumable context. A missing file is not an error; it just
// means a fresh session.
func (s *Store) Load() (*ResumableContext, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}
	var ctx ResumableContext
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &ctx, nil
}
