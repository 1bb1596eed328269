package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anven/resona/src/music"
)

// RestDataService talks to the hosted data service over its JSON API.
// Every call is a single-row operation; the server enforces nothing across
// rows, matching the contract the synchronizer is written against.
type RestDataService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Ensure RestDataService implements music.DataService
var _ music.DataService = (*RestDataService)(nil)

// NewRestDataService creates a new REST data service client.
func NewRestDataService(baseURL, apiKey string) *RestDataService {
	return &RestDataService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type playlistRow struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	CoverURL    string `json:"cover_url,omitempty"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"public"`
	TracksCount int    `json:"tracks_count"`
}

// GetLikedTrackIDs returns all liked track ids for a user.
func (r *RestDataService) GetLikedTrackIDs(ctx context.Context, userID string) ([]string, error) {
	var result struct {
		TrackIDs []string `json:"trackIds"`
	}
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/likes", url.PathEscape(userID)), nil, &result); err != nil {
		return nil, err
	}
	return result.TrackIDs, nil
}

// InsertLike creates a like row.
func (r *RestDataService) InsertLike(ctx context.Context, userID, trackID string) error {
	return r.do(ctx, http.MethodPut, fmt.Sprintf("/users/%s/likes/%s", url.PathEscape(userID), url.PathEscape(trackID)), nil, nil)
}

// DeleteLike removes a like row.
func (r *RestDataService) DeleteLike(ctx context.Context, userID, trackID string) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%s/likes/%s", url.PathEscape(userID), url.PathEscape(trackID)), nil, nil)
}

// GetCollectionTrackIDs returns all owned track ids for a user.
func (r *RestDataService) GetCollectionTrackIDs(ctx context.Context, userID string) ([]string, error) {
	var result struct {
		TrackIDs []string `json:"trackIds"`
	}
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/collection", url.PathEscape(userID)), nil, &result); err != nil {
		return nil, err
	}
	return result.TrackIDs, nil
}

// InsertCollectionEntry records track ownership.
func (r *RestDataService) InsertCollectionEntry(ctx context.Context, userID, trackID string) error {
	return r.do(ctx, http.MethodPut, fmt.Sprintf("/users/%s/collection/%s", url.PathEscape(userID), url.PathEscape(trackID)), nil, nil)
}

// GetPlaylists returns a user's playlists, most recently created first.
func (r *RestDataService) GetPlaylists(ctx context.Context, userID string) ([]*music.Playlist, error) {
	var result struct {
		Items []playlistRow `json:"items"`
	}
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID)), nil, &result); err != nil {
		return nil, err
	}
	playlists := make([]*music.Playlist, len(result.Items))
	for i, row := range result.Items {
		playlists[i] = &music.Playlist{
			ID:          row.ID,
			UserID:      row.UserID,
			Title:       row.Title,
			CoverURL:    row.CoverURL,
			Description: row.Description,
			Public:      row.Public,
			TracksCount: row.TracksCount,
		}
	}
	return playlists, nil
}

// InsertPlaylist creates a playlist row.
func (r *RestDataService) InsertPlaylist(ctx context.Context, playlist *music.Playlist) error {
	body := playlistRow{
		ID:          playlist.ID,
		UserID:      playlist.UserID,
		Title:       playlist.Title,
		CoverURL:    playlist.CoverURL,
		Description: playlist.Description,
		Public:      playlist.Public,
	}
	return r.do(ctx, http.MethodPost, "/playlists", body, nil)
}

// UpdatePlaylist applies a partial update; nil patch fields are omitted.
func (r *RestDataService) UpdatePlaylist(ctx context.Context, id string, patch music.PlaylistPatch) error {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.CoverURL != nil {
		body["cover_url"] = *patch.CoverURL
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Public != nil {
		body["public"] = *patch.Public
	}
	if len(body) == 0 {
		return nil
	}
	return r.do(ctx, http.MethodPatch, "/playlists/"+url.PathEscape(id), body, nil)
}

// DeletePlaylist removes a playlist row.
func (r *RestDataService) DeletePlaylist(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/playlists/"+url.PathEscape(id), nil, nil)
}

// InsertPlaylistTrack creates a playlist/track link row.
func (r *RestDataService) InsertPlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	return r.do(ctx, http.MethodPut, fmt.Sprintf("/playlists/%s/tracks/%s", url.PathEscape(playlistID), url.PathEscape(trackID)), nil, nil)
}

// DeletePlaylistTrack removes a playlist/track link row.
func (r *RestDataService) DeletePlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/playlists/%s/tracks/%s", url.PathEscape(playlistID), url.PathEscape(trackID)), nil, nil)
}

func (r *RestDataService) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("data service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("data service returned %s for %s %s", resp.Status, method, path)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
