package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/anven/resona/src/music"
)

// SqliteDataService is a SQLite implementation of the DataService interface,
// used in self-hosted mode where the "remote" data service is a local file.
// Semantics mirror the hosted service: per-row operations, no multi-row
// atomicity.
type SqliteDataService struct {
	db *sql.DB
}

// Ensure SqliteDataService implements music.DataService
var _ music.DataService = (*SqliteDataService)(nil)

// NewSqliteDataService creates a new SqliteDataService.
func NewSqliteDataService(path string) (*SqliteDataService, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &SqliteDataService{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS likes (
			user_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			created_at TEXT,
			PRIMARY KEY (user_id, track_id)
		);

		CREATE TABLE IF NOT EXISTS collection (
			user_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			created_at TEXT,
			PRIMARY KEY (user_id, track_id)
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			cover_url TEXT,
			description TEXT,
			public BOOLEAN DEFAULT FALSE,
			created_at TEXT
		);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL,
			track_id TEXT NOT NULL,
			created_at TEXT,
			PRIMARY KEY (playlist_id, track_id),
			FOREIGN KEY (playlist_id) REFERENCES playlists(id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SqliteDataService) Close() error {
	return s.db.Close()
}

// GetLikedTrackIDs returns all liked track ids for a user.
func (s *SqliteDataService) GetLikedTrackIDs(ctx context.Context, userID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT track_id FROM likes WHERE user_id = ?`, userID)
}

// InsertLike records a like row. Inserting an existing row is not an error.
func (s *SqliteDataService) InsertLike(ctx context.Context, userID, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO likes (user_id, track_id, created_at) VALUES (?, ?, ?)`,
		userID, trackID, now())
	if err != nil {
		return fmt.Errorf("failed to insert like: %w", err)
	}
	return nil
}

// DeleteLike removes a like row. Deleting a missing row is not an error.
func (s *SqliteDataService) DeleteLike(ctx context.Context, userID, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND track_id = ?`, userID, trackID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

// GetCollectionTrackIDs returns all owned track ids for a user.
func (s *SqliteDataService) GetCollectionTrackIDs(ctx context.Context, userID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT track_id FROM collection WHERE user_id = ?`, userID)
}

// InsertCollectionEntry records track ownership.
func (s *SqliteDataService) InsertCollectionEntry(ctx context.Context, userID, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collection (user_id, track_id, created_at) VALUES (?, ?, ?)`,
		userID, trackID, now())
	if err != nil {
		return fmt.Errorf("failed to insert collection entry: %w", err)
	}
	return nil
}

// GetPlaylists returns a user's playlists with their current link-row
// counts, most recently created first.
func (s *SqliteDataService) GetPlaylists(ctx context.Context, userID string) ([]*music.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.title, COALESCE(p.cover_url, ''), COALESCE(p.description, ''), p.public,
			(SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id) AS tracks_count
		FROM playlists p
		WHERE p.user_id = ?
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*music.Playlist
	for rows.Next() {
		var p music.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.CoverURL, &p.Description, &p.Public, &p.TracksCount); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, &p)
	}
	return playlists, rows.Err()
}

// InsertPlaylist creates a playlist row.
func (s *SqliteDataService) InsertPlaylist(ctx context.Context, playlist *music.Playlist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, user_id, title, cover_url, description, public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		playlist.ID, playlist.UserID, playlist.Title, playlist.CoverURL, playlist.Description, playlist.Public, now())
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

// UpdatePlaylist applies a partial update; nil patch fields are untouched.
func (s *SqliteDataService) UpdatePlaylist(ctx context.Context, id string, patch music.PlaylistPatch) error {
	set := ""
	args := []any{}
	appendSet := func(column string, value any) {
		if set != "" {
			set += ", "
		}
		set += column + " = ?"
		args = append(args, value)
	}
	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.CoverURL != nil {
		appendSet("cover_url", *patch.CoverURL)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Public != nil {
		appendSet("public", *patch.Public)
	}
	if set == "" {
		return nil
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `UPDATE playlists SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("playlist not found: %s", id)
	}
	return nil
}

// DeletePlaylist removes a playlist and its link rows.
func (s *SqliteDataService) DeletePlaylist(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist tracks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}

// InsertPlaylistTrack creates a playlist/track link row.
func (s *SqliteDataService) InsertPlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_id, created_at) VALUES (?, ?, ?)`,
		playlistID, trackID, now())
	if err != nil {
		return fmt.Errorf("failed to insert playlist track: %w", err)
	}
	return nil
}

// DeletePlaylistTrack removes a playlist/track link row.
func (s *SqliteDataService) DeletePlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`, playlistID, trackID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist track: %w", err)
	}
	return nil
}

func (s *SqliteDataService) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
