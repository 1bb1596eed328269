package library

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/anven/resona/src/music"
)

// Snapshot is an immutable copy of the library state for read access.
type Snapshot struct {
	UserID             string            `json:"userId"`
	LikedTrackIDs      []string          `json:"likedTrackIds"`
	CollectionTrackIDs []string          `json:"collectionTrackIds"`
	Playlists          []*music.Playlist `json:"playlists"`
}

// Service owns the per-user library state (liked tracks, owned tracks,
// playlists) and reconciles it against the data service with optimistic
// local application. The server stays the source of truth: a failed remote
// call leaves local state untouched.
type Service struct {
	data music.DataService

	mu         sync.RWMutex
	userID     string
	liked      map[string]bool
	collection map[string]bool
	playlists  []*music.Playlist

	// Like toggles are serialized per track id so overlapping calls on
	// the same track can't interleave their read-then-write halves.
	likeMu    sync.Mutex
	likeLocks map[string]*sync.Mutex
}

// NewService creates a new library service.
func NewService(data music.DataService) *Service {
	return &Service{
		data:       data,
		liked:      make(map[string]bool),
		collection: make(map[string]bool),
		likeLocks:  make(map[string]*sync.Mutex),
	}
}

// FetchLibrary bulk-loads liked ids, owned ids and playlists for the user
// and replaces local state wholesale. Idempotent; also used as a manual
// refresh. On any error local state is left as it was.
func (s *Service) FetchLibrary(ctx context.Context, userID string) error {
	slog.Debug("FetchLibrary service called", "userID", userID)

	likedIDs, err := s.data.GetLikedTrackIDs(ctx, userID)
	if err != nil {
		slog.Error("FetchLibrary: failed to load likes", "userID", userID, "error", err)
		return fmt.Errorf("failed to load likes: %w", err)
	}
	collectionIDs, err := s.data.GetCollectionTrackIDs(ctx, userID)
	if err != nil {
		slog.Error("FetchLibrary: failed to load collection", "userID", userID, "error", err)
		return fmt.Errorf("failed to load collection: %w", err)
	}
	playlists, err := s.data.GetPlaylists(ctx, userID)
	if err != nil {
		slog.Error("FetchLibrary: failed to load playlists", "userID", userID, "error", err)
		return fmt.Errorf("failed to load playlists: %w", err)
	}

	liked := make(map[string]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	collection := make(map[string]bool, len(collectionIDs))
	for _, id := range collectionIDs {
		collection[id] = true
	}

	s.mu.Lock()
	s.userID = userID
	s.liked = liked
	s.collection = collection
	s.playlists = playlists
	s.mu.Unlock()

	slog.Info("Library fetched", "userID", userID, "liked", len(likedIDs), "owned", len(collectionIDs), "playlists", len(playlists))
	return nil
}

// Reset discards all local library state (logout).
func (s *Service) Reset() {
	s.mu.Lock()
	s.userID = ""
	s.liked = make(map[string]bool)
	s.collection = make(map[string]bool)
	s.playlists = nil
	s.mu.Unlock()
	slog.Debug("Library state reset")
}

// IsLiked reports whether the track is currently in the liked set.
func (s *Service) IsLiked(trackID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liked[trackID]
}

// IsOwned reports whether the track is in the user's collection.
func (s *Service) IsOwned(trackID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection[trackID]
}

// Snapshot returns a copy of the current library state. Track id slices
// are sorted for stable output; playlists keep most-recent-first order.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likedIDs := make([]string, 0, len(s.liked))
	for id := range s.liked {
		likedIDs = append(likedIDs, id)
	}
	slices.Sort(likedIDs)

	collectionIDs := make([]string, 0, len(s.collection))
	for id := range s.collection {
		collectionIDs = append(collectionIDs, id)
	}
	slices.Sort(collectionIDs)

	playlists := make([]*music.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		cp := *p
		playlists[i] = &cp
	}

	return Snapshot{
		UserID:             s.userID,
		LikedTrackIDs:      likedIDs,
		CollectionTrackIDs: collectionIDs,
		Playlists:          playlists,
	}
}

// ToggleLike flips the liked membership for a track: the opposite remote
// row operation is issued first and local membership follows only on
// success. Toggles on the same track id are serialized.
func (s *Service) ToggleLike(ctx context.Context, userID, trackID string) Result {
	lock := s.lockForTrack(trackID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	wasLiked := s.liked[trackID]
	s.mu.RUnlock()

	if wasLiked {
		return applyOptimistic(ctx, "unlike",
			func(ctx context.Context) error { return s.data.DeleteLike(ctx, userID, trackID) },
			func() {
				s.mu.Lock()
				delete(s.liked, trackID)
				s.mu.Unlock()
				slog.Debug("Track unliked", "userID", userID, "trackID", trackID)
			})
	}
	return applyOptimistic(ctx, "like",
		func(ctx context.Context) error { return s.data.InsertLike(ctx, userID, trackID) },
		func() {
			s.mu.Lock()
			s.liked[trackID] = true
			s.mu.Unlock()
			slog.Debug("Track liked", "userID", userID, "trackID", trackID)
		})
}

// AddToCollection records track ownership. Idempotent: adding an already
// owned track is an applied no-op without a remote call.
func (s *Service) AddToCollection(ctx context.Context, userID, trackID string) Result {
	s.mu.RLock()
	owned := s.collection[trackID]
	s.mu.RUnlock()
	if owned {
		return Applied
	}

	return applyOptimistic(ctx, "add_to_collection",
		func(ctx context.Context) error { return s.data.InsertCollectionEntry(ctx, userID, trackID) },
		func() {
			s.mu.Lock()
			s.collection[trackID] = true
			s.mu.Unlock()
			slog.Debug("Track added to collection", "userID", userID, "trackID", trackID)
		})
}

// CreatePlaylist creates an empty playlist remotely and prepends it to the
// local list (most-recent-first). Returns nil on failure.
func (s *Service) CreatePlaylist(ctx context.Context, userID, title string) *music.Playlist {
	playlist := &music.Playlist{
		ID:     music.GeneratePlaylistID(),
		UserID: userID,
		Title:  title,
	}
	if err := playlist.Validate(); err != nil {
		slog.Error("CreatePlaylist validation failed", "error", err)
		return nil
	}

	result := applyOptimistic(ctx, "create_playlist",
		func(ctx context.Context) error { return s.data.InsertPlaylist(ctx, playlist) },
		func() {
			s.mu.Lock()
			s.playlists = append([]*music.Playlist{playlist}, s.playlists...)
			s.mu.Unlock()
			slog.Info("Playlist created", "id", playlist.ID, "title", title)
		})
	if result == Rejected {
		return nil
	}
	return playlist
}

// AddTrackToPlaylist inserts the remote link row then bumps the cached
// track count.
func (s *Service) AddTrackToPlaylist(ctx context.Context, playlistID, trackID string) Result {
	return applyOptimistic(ctx, "add_playlist_track",
		func(ctx context.Context) error { return s.data.InsertPlaylistTrack(ctx, playlistID, trackID) },
		func() {
			s.adjustTrackCount(playlistID, 1)
			slog.Debug("Track added to playlist", "playlistID", playlistID, "trackID", trackID)
		})
}

// RemoveTrackFromPlaylist deletes the remote link row then decrements the
// cached track count, clamped at zero so out-of-order calls can't drive it
// negative.
func (s *Service) RemoveTrackFromPlaylist(ctx context.Context, playlistID, trackID string) Result {
	return applyOptimistic(ctx, "remove_playlist_track",
		func(ctx context.Context) error { return s.data.DeletePlaylistTrack(ctx, playlistID, trackID) },
		func() {
			s.adjustTrackCount(playlistID, -1)
			slog.Debug("Track removed from playlist", "playlistID", playlistID, "trackID", trackID)
		})
}

// UpdatePlaylist applies a partial update remotely then merge-patches the
// local copy.
func (s *Service) UpdatePlaylist(ctx context.Context, id string, patch music.PlaylistPatch) Result {
	return applyOptimistic(ctx, "update_playlist",
		func(ctx context.Context) error { return s.data.UpdatePlaylist(ctx, id, patch) },
		func() {
			s.mu.Lock()
			for _, p := range s.playlists {
				if p.ID == id {
					patch.Apply(p)
					break
				}
			}
			s.mu.Unlock()
			slog.Debug("Playlist updated", "id", id)
		})
}

// DeletePlaylist deletes the playlist remotely then removes it locally.
func (s *Service) DeletePlaylist(ctx context.Context, id string) Result {
	return applyOptimistic(ctx, "delete_playlist",
		func(ctx context.Context) error { return s.data.DeletePlaylist(ctx, id) },
		func() {
			s.mu.Lock()
			s.playlists = slices.DeleteFunc(s.playlists, func(p *music.Playlist) bool { return p.ID == id })
			s.mu.Unlock()
			slog.Debug("Playlist deleted", "id", id)
		})
}

func (s *Service) adjustTrackCount(playlistID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.playlists {
		if p.ID == playlistID {
			p.TracksCount += delta
			if p.TracksCount < 0 {
				p.TracksCount = 0
			}
			return
		}
	}
}

func (s *Service) lockForTrack(trackID string) *sync.Mutex {
	s.likeMu.Lock()
	defer s.likeMu.Unlock()
	lock, ok := s.likeLocks[trackID]
	if !ok {
		lock = &sync.Mutex{}
		s.likeLocks[trackID] = lock
	}
	return lock
}
