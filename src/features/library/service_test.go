package library

import (
	"context"
	"errors"
	"testing"

	"github.com/anven/resona/src/music"
)

// MockDataService is a mock implementation of music.DataService backed by
// maps. Set failAll to simulate an unreachable backend.
type MockDataService struct {
	likes      map[string]bool
	collection map[string]bool
	playlists  map[string]*music.Playlist
	links      map[string]map[string]bool
	failAll    bool
	calls      int
}

func NewMockDataService() *MockDataService {
	return &MockDataService{
		likes:      make(map[string]bool),
		collection: make(map[string]bool),
		playlists:  make(map[string]*music.Playlist),
		links:      make(map[string]map[string]bool),
	}
}

func (m *MockDataService) remoteErr() error {
	m.calls++
	if m.failAll {
		return errors.New("data service unreachable")
	}
	return nil
}

func (m *MockDataService) GetLikedTrackIDs(ctx context.Context, userID string) ([]string, error) {
	if err := m.remoteErr(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m.likes))
	for id := range m.likes {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockDataService) InsertLike(ctx context.Context, userID, trackID string) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	m.likes[trackID] = true
	return nil
}

func (m *MockDataService) DeleteLike(ctx context.Context, userID, trackID string) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	delete(m.likes, trackID)
	return nil
}

func (m *MockDataService) GetCollectionTrackIDs(ctx context.Context, userID string) ([]string, error) {
	if err := m.remoteErr(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(m.collection))
	for id := range m.collection {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockDataService) InsertCollectionEntry(ctx context.Context, userID, trackID string) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	m.collection[trackID] = true
	return nil
}

func (m *MockDataService) GetPlaylists(ctx context.Context, userID string) ([]*music.Playlist, error) {
	if err := m.remoteErr(); err != nil {
		return nil, err
	}
	playlists := make([]*music.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		playlists = append(playlists, p)
	}
	return playlists, nil
}

func (m *MockDataService) InsertPlaylist(ctx context.Context, playlist *music.Playlist) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	m.playlists[playlist.ID] = playlist
	return nil
}

func (m *MockDataService) UpdatePlaylist(ctx context.Context, id string, patch music.PlaylistPatch) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	if p, ok := m.playlists[id]; ok {
		patch.Apply(p)
	}
	return nil
}

func (m *MockDataService) DeletePlaylist(ctx context.Context, id string) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	delete(m.playlists, id)
	return nil
}

func (m *MockDataService) InsertPlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	if m.links[playlistID] == nil {
		m.links[playlistID] = make(map[string]bool)
	}
	m.links[playlistID][trackID] = true
	return nil
}

func (m *MockDataService) DeletePlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	if err := m.remoteErr(); err != nil {
		return err
	}
	delete(m.links[playlistID], trackID)
	return nil
}

func TestToggleLike_FlipsMembership(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	if result := service.ToggleLike(ctx, "u1", "t1"); result != Applied {
		t.Fatalf("expected applied, got %v", result)
	}
	if !service.IsLiked("t1") {
		t.Fatal("expected t1 liked")
	}
	if !mock.likes["t1"] {
		t.Fatal("remote like row missing")
	}

	if result := service.ToggleLike(ctx, "u1", "t1"); result != Applied {
		t.Fatalf("expected applied, got %v", result)
	}
	if service.IsLiked("t1") {
		t.Error("double toggle must restore the original state")
	}
	if mock.likes["t1"] {
		t.Error("remote like row must be gone after the second toggle")
	}
}

func TestToggleLike_RemoteFailureIsNoOp(t *testing.T) {
	mock := NewMockDataService()
	mock.failAll = true
	service := NewService(mock)

	if result := service.ToggleLike(context.Background(), "u1", "t1"); result != Rejected {
		t.Fatalf("expected rejected, got %v", result)
	}
	if service.IsLiked("t1") {
		t.Error("a rejected toggle must leave local state untouched")
	}
}

func TestAddToCollection_Idempotent(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	if result := service.AddToCollection(ctx, "u1", "t1"); result != Applied {
		t.Fatalf("expected applied, got %v", result)
	}
	callsAfterFirst := mock.calls

	if result := service.AddToCollection(ctx, "u1", "t1"); result != Applied {
		t.Fatalf("expected applied no-op, got %v", result)
	}
	if mock.calls != callsAfterFirst {
		t.Error("re-adding an owned track must not hit the data service")
	}
	if !service.IsOwned("t1") {
		t.Error("expected t1 owned")
	}
}

func TestFetchLibrary_ReplacesStateWholesale(t *testing.T) {
	mock := NewMockDataService()
	mock.likes["t1"] = true
	mock.collection["t2"] = true
	mock.playlists["p1"] = &music.Playlist{ID: "p1", UserID: "u1", Title: "Morning"}

	service := NewService(mock)
	if err := service.FetchLibrary(context.Background(), "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snap := service.Snapshot()
	if snap.UserID != "u1" {
		t.Errorf("expected userID u1, got %s", snap.UserID)
	}
	if len(snap.LikedTrackIDs) != 1 || snap.LikedTrackIDs[0] != "t1" {
		t.Errorf("expected liked [t1], got %v", snap.LikedTrackIDs)
	}
	if len(snap.CollectionTrackIDs) != 1 || snap.CollectionTrackIDs[0] != "t2" {
		t.Errorf("expected collection [t2], got %v", snap.CollectionTrackIDs)
	}
	if len(snap.Playlists) != 1 || snap.Playlists[0].Title != "Morning" {
		t.Errorf("expected one playlist, got %v", snap.Playlists)
	}
}

func TestFetchLibrary_FailureLeavesStateUntouched(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	service.ToggleLike(context.Background(), "u1", "t1")

	mock.failAll = true
	if err := service.FetchLibrary(context.Background(), "u1"); err == nil {
		t.Fatal("expected an error")
	}
	if !service.IsLiked("t1") {
		t.Error("a failed fetch must not clear local state")
	}
}

func TestCreatePlaylist_PrependsMostRecent(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	first := service.CreatePlaylist(ctx, "u1", "First")
	second := service.CreatePlaylist(ctx, "u1", "Second")
	if first == nil || second == nil {
		t.Fatal("expected both playlists created")
	}

	snap := service.Snapshot()
	if len(snap.Playlists) != 2 || snap.Playlists[0].ID != second.ID {
		t.Errorf("expected most-recent-first order, got %v", snap.Playlists)
	}
}

func TestCreatePlaylist_EmptyTitleRejected(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)

	if playlist := service.CreatePlaylist(context.Background(), "u1", "  "); playlist != nil {
		t.Errorf("expected nil for a blank title, got %+v", playlist)
	}
	if mock.calls != 0 {
		t.Error("validation failures must not hit the data service")
	}
}

func TestPlaylistTracks_CountFollowsMutations(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	playlist := service.CreatePlaylist(ctx, "u1", "Mix")
	if playlist == nil {
		t.Fatal("expected playlist")
	}

	service.AddTrackToPlaylist(ctx, playlist.ID, "t1")
	service.AddTrackToPlaylist(ctx, playlist.ID, "t2")
	service.RemoveTrackFromPlaylist(ctx, playlist.ID, "t1")

	snap := service.Snapshot()
	if got := snap.Playlists[0].TracksCount; got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
}

func TestRemoveTrackFromPlaylist_CountClampsAtZero(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	playlist := service.CreatePlaylist(ctx, "u1", "Mix")
	if playlist == nil {
		t.Fatal("expected playlist")
	}

	service.RemoveTrackFromPlaylist(ctx, playlist.ID, "ghost")
	service.RemoveTrackFromPlaylist(ctx, playlist.ID, "ghost")

	snap := service.Snapshot()
	if got := snap.Playlists[0].TracksCount; got != 0 {
		t.Errorf("count must clamp at zero, got %d", got)
	}
}

func TestUpdatePlaylist_PatchesLocalCopy(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	playlist := service.CreatePlaylist(ctx, "u1", "Old")
	if playlist == nil {
		t.Fatal("expected playlist")
	}

	title := "New"
	public := true
	result := service.UpdatePlaylist(ctx, playlist.ID, music.PlaylistPatch{Title: &title, Public: &public})
	if result != Applied {
		t.Fatalf("expected applied, got %v", result)
	}

	snap := service.Snapshot()
	if snap.Playlists[0].Title != "New" || !snap.Playlists[0].Public {
		t.Errorf("expected patched playlist, got %+v", snap.Playlists[0])
	}
}

func TestDeletePlaylist_RemovesLocally(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	playlist := service.CreatePlaylist(ctx, "u1", "Mix")
	if playlist == nil {
		t.Fatal("expected playlist")
	}

	if result := service.DeletePlaylist(ctx, playlist.ID); result != Applied {
		t.Fatalf("expected applied, got %v", result)
	}
	if len(service.Snapshot().Playlists) != 0 {
		t.Error("expected empty playlist list")
	}
	if len(mock.playlists) != 0 {
		t.Error("expected remote playlist row deleted")
	}
}

func TestReset_DiscardsEverything(t *testing.T) {
	mock := NewMockDataService()
	service := NewService(mock)
	ctx := context.Background()

	service.ToggleLike(ctx, "u1", "t1")
	service.AddToCollection(ctx, "u1", "t2")
	service.CreatePlaylist(ctx, "u1", "Mix")

	service.Reset()

	snap := service.Snapshot()
	if snap.UserID != "" || len(snap.LikedTrackIDs) != 0 || len(snap.CollectionTrackIDs) != 0 || len(snap.Playlists) != 0 {
		t.Errorf("expected empty state after reset, got %+v", snap)
	}
}
