package music

import (
	"fmt"
	"strings"
)

// Track represents a single playable track as served by the catalog.
// Tracks are immutable once fetched; the core never mutates them.
type Track struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	ArtistID     string  `json:"artistId"`
	CoverURL     string  `json:"coverUrl"`
	AudioURL     string  `json:"audioUrl"`
	Duration     int     `json:"duration"` // seconds, 0 until resolved
	Price        float64 `json:"price"`
	ReleaseID    string  `json:"releaseId"`
	ReleaseTitle string  `json:"releaseTitle"`
}

// Validate validates the track fields.
func (t *Track) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("track id cannot be empty")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("track title cannot be empty")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title cannot exceed 500 characters, got %d: title -> %s", len(t.Title), t.Title)
	}
	if strings.TrimSpace(t.Artist) == "" {
		return fmt.Errorf("track artist cannot be empty: title -> %s", t.Title)
	}
	if strings.TrimSpace(t.AudioURL) == "" {
		return fmt.Errorf("track audio URL cannot be empty: title -> %s", t.Title)
	}
	if len(t.AudioURL) > 1000 {
		return fmt.Errorf("audio URL cannot exceed 1000 characters, got %d", len(t.AudioURL))
	}
	if t.CoverURL != "" && len(t.CoverURL) > 1000 {
		return fmt.Errorf("cover URL cannot exceed 1000 characters, got %d", len(t.CoverURL))
	}
	if t.Duration < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", t.Duration)
	}
	if t.Price < 0 {
		return fmt.Errorf("price cannot be negative, got %f", t.Price)
	}
	return nil
}

// Pretty returns a formatted one-line representation for logging/debugging.
func (t *Track) Pretty() string {
	dur := "?"
	if t.Duration > 0 {
		dur = fmt.Sprintf("%d:%02d", t.Duration/60, t.Duration%60)
	}
	return fmt.Sprintf("%s - %s [%s] (%s)", t.Artist, t.Title, dur, t.ID)
}
