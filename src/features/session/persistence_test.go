package session

import (
	"path/filepath"
	"testing"

	"github.com/anven/resona/src/music"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestStore_MissingFileIsFreshSession(t *testing.T) {
	store := tempStore(t)

	ctx, err := store.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ctx != nil {
		t.Errorf("expected nil context for a missing file, got %+v", ctx)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := tempStore(t)
	saved := &ResumableContext{
		CurrentTrack: track("a"),
		Queue:        []*music.Track{track("a"), track("b")},
	}

	if err := store.Save(saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.CurrentTrack == nil || loaded.CurrentTrack.ID != "a" {
		t.Errorf("expected current track a, got %+v", loaded.CurrentTrack)
	}
	if len(loaded.Queue) != 2 || loaded.Queue[1].ID != "b" {
		t.Errorf("expected queue [a b], got %+v", loaded.Queue)
	}
}

func TestRestore_NeverResumesPlayback(t *testing.T) {
	store := tempStore(t)

	s := NewService(store)
	s.SetQueue([]*music.Track{track("a"), track("b")})
	s.SetCurrentTrack(track("a")) // playing

	restored := NewService(NewStore(store.path))
	snap := restored.Snapshot()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "a" {
		t.Fatalf("expected restored current track a, got %+v", snap.CurrentTrack)
	}
	if len(snap.Queue) != 2 {
		t.Fatalf("expected restored queue of 2, got %d", len(snap.Queue))
	}
	if snap.IsPlaying {
		t.Error("playback must never resume on its own after a restart")
	}
}

func TestRestore_ExpandedFlagDoesNotSurvive(t *testing.T) {
	store := tempStore(t)

	s := NewService(store)
	s.SetCurrentTrack(track("a"))
	s.SetIsExpanded(true)

	restored := NewService(NewStore(store.path))
	if restored.Snapshot().IsExpanded {
		t.Error("expanded is a transient flag and must not survive a restart")
	}
}
