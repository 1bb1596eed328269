package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeAudioFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	// Untagged bytes; the catalog falls back to filename metadata.
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestScan_FindsAudioFilesRecursively(t *testing.T) {
	dir := t.TempDir()
	writeAudioFile(t, dir, "one.mp3")
	writeAudioFile(t, dir, filepath.Join("album", "two.flac"))
	writeAudioFile(t, dir, "notes.txt") // ignored

	catalog, err := NewLocalCatalog(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tracks, err := catalog.GetTracks(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
}

func TestUntaggedFile_FallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	writeAudioFile(t, dir, "sunrise.mp3")

	catalog, err := NewLocalCatalog(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tracks, _ := catalog.GetTracks(context.Background())
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	if tracks[0].Title != "sunrise" {
		t.Errorf("expected filename title, got %s", tracks[0].Title)
	}
	if tracks[0].Artist != "Unknown Artist" {
		t.Errorf("expected fallback artist, got %s", tracks[0].Artist)
	}
	if tracks[0].Duration != 0 {
		t.Errorf("duration must stay unresolved after a scan, got %d", tracks[0].Duration)
	}
}

func TestTrackIDs_StableAcrossRescans(t *testing.T) {
	dir := t.TempDir()
	writeAudioFile(t, dir, "one.mp3")

	catalog, err := NewLocalCatalog(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	before, _ := catalog.GetTracks(context.Background())

	if err := catalog.Scan(); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}
	after, _ := catalog.GetTracks(context.Background())

	if before[0].ID != after[0].ID {
		t.Errorf("track id changed across rescans: %s vs %s", before[0].ID, after[0].ID)
	}
}

func TestGetTracksByIDs_PreservesRequestOrder(t *testing.T) {
	dir := t.TempDir()
	writeAudioFile(t, dir, "a.mp3")
	writeAudioFile(t, dir, "b.mp3")

	catalog, err := NewLocalCatalog(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	all, _ := catalog.GetTracks(context.Background())

	ids := []string{all[1].ID, "unknown-id", all[0].ID}
	got, err := catalog.GetTracksByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 known tracks, got %d", len(got))
	}
	if got[0].ID != all[1].ID || got[1].ID != all[0].ID {
		t.Error("request order must be preserved")
	}
}

func TestGetTrack_UnknownIDIsNil(t *testing.T) {
	catalog, err := NewLocalCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	track, err := catalog.GetTrack(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if track != nil {
		t.Errorf("expected nil for an unknown id, got %+v", track)
	}
}
