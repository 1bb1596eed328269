package music

import "context"

// DataService is the remote per-row CRUD surface the library synchronizer
// reconciles against. Rows are keyed by opaque string ids and there is no
// multi-row atomicity; the server is the source of truth on reload.
type DataService interface {
	// Likes
	GetLikedTrackIDs(ctx context.Context, userID string) ([]string, error)
	InsertLike(ctx context.Context, userID, trackID string) error
	DeleteLike(ctx context.Context, userID, trackID string) error

	// Collection (owned tracks)
	GetCollectionTrackIDs(ctx context.Context, userID string) ([]string, error)
	InsertCollectionEntry(ctx context.Context, userID, trackID string) error

	// Playlists
	GetPlaylists(ctx context.Context, userID string) ([]*Playlist, error)
	InsertPlaylist(ctx context.Context, playlist *Playlist) error
	UpdatePlaylist(ctx context.Context, id string, patch PlaylistPatch) error
	DeletePlaylist(ctx context.Context, id string) error

	// Playlist / track link rows
	InsertPlaylistTrack(ctx context.Context, playlistID, trackID string) error
	DeletePlaylistTrack(ctx context.Context, playlistID, trackID string) error
}
