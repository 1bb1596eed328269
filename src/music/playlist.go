package music

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Playlist represents a user-created playlist. The track list itself lives
// in the data service; TracksCount is a cached count of the rows linking
// this playlist to tracks.
type Playlist struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	CoverURL    string `json:"coverUrl"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	TracksCount int    `json:"tracksCount"`
}

// Validate validates the playlist fields.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("playlist title cannot be empty")
	}
	if len(p.Title) > 200 {
		return fmt.Errorf("playlist title cannot exceed 200 characters, got %d: title -> %s", len(p.Title), p.Title)
	}
	if len(p.Description) > 1000 {
		return fmt.Errorf("playlist description cannot exceed 1000 characters, got %d", len(p.Description))
	}
	if p.TracksCount < 0 {
		return fmt.Errorf("playlist track count cannot be negative, got %d", p.TracksCount)
	}
	return nil
}

// PlaylistPatch carries partial playlist updates; nil fields are left untouched.
type PlaylistPatch struct {
	Title       *string `json:"title"`
	CoverURL    *string `json:"coverUrl"`
	Description *string `json:"description"`
	Public      *bool   `json:"public"`
}

// Apply merges the patch into the playlist.
func (patch PlaylistPatch) Apply(p *Playlist) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.CoverURL != nil {
		p.CoverURL = *patch.CoverURL
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Public != nil {
		p.Public = *patch.Public
	}
}

// GeneratePlaylistID creates a UUID for a playlist.
func GeneratePlaylistID() string {
	return uuid.New().String()
}
