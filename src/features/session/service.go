package session

import (
	"log/slog"

	"sync"

	"github.com/anven/resona/src/music"
)

// Change identifies which dimension of the playback session a committed
// transition touched.
type Change int

const (
	ChangeTrack Change = iota
	ChangePlaying
	ChangeQueue
	ChangeExpanded
)

func (c Change) String() string {
	switch c {
	case ChangeTrack:
		return "track"
	case ChangePlaying:
		return "playing"
	case ChangeQueue:
		return "queue"
	case ChangeExpanded:
		return "expanded"
	}
	return "unknown"
}

// Snapshot is an immutable copy of the playback session state.
type Snapshot struct {
	CurrentTrack *music.Track
	IsPlaying    bool
	Queue        []*music.Track
	IsExpanded   bool
}

// Listener is notified synchronously after each committed transition, in
// registration order. The snapshot reflects the state after the commit.
type Listener func(change Change, snap Snapshot)

// Service is the single authoritative owner of the playback session. Every
// transport intent is funneled through here so the audio device never sees
// conflicting commands. Mutations hold an internal lock; listeners run
// outside of it.
type Service struct {
	mu        sync.RWMutex
	current   *music.Track
	playing   bool
	queue     []*music.Track
	expanded  bool
	listeners []Listener
	store     *Store
}

// NewService creates a new playback session service. store may be nil to
// disable persistence (used by tests).
func NewService(store *Store) *Service {
	s := &Service{store: store}
	if store != nil {
		if ctx, err := store.Load(); err != nil {
			slog.Warn("Failed to restore playback session", "error", err)
		} else if ctx != nil {
			// isPlaying deliberately stays false: audio never resumes
			// across a restart without a user gesture.
			s.current = ctx.CurrentTrack
			s.queue = ctx.Queue
			slog.Info("Playback session restored", "queued", len(ctx.Queue), "hasTrack", ctx.CurrentTrack != nil)
		}
	}
	return s
}

// Subscribe registers a listener. Expected to be called once per component
// at startup, before any transitions are committed.
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current session state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() Snapshot {
	queue := make([]*music.Track, len(s.queue))
	copy(queue, s.queue)
	return Snapshot{
		CurrentTrack: s.current,
		IsPlaying:    s.playing,
		Queue:        queue,
		IsExpanded:   s.expanded,
	}
}

func (s *Service) notify(snap Snapshot, changes ...Change) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()
	for _, change := range changes {
		for _, l := range listeners {
			l(change, snap)
		}
	}
}

// SetCurrentTrack replaces the current track. Selecting a track means
// "start it": a non-nil track sets isPlaying; nil clears it so the session
// can never read playing with nothing loaded.
func (s *Service) SetCurrentTrack(track *music.Track) {
	s.mu.Lock()
	wasPlaying := s.playing
	s.current = track
	s.playing = track != nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if track != nil {
		slog.Debug("Current track set", "id", track.ID, "title", track.Title)
	} else {
		slog.Debug("Current track cleared")
	}

	s.persist(snap)
	if wasPlaying != snap.IsPlaying {
		s.notify(snap, ChangeTrack, ChangePlaying)
	} else {
		s.notify(snap, ChangeTrack)
	}
}

// SetIsPlaying pauses or resumes transport. Resuming with no track loaded
// is a no-op; the invariant isPlaying => currentTrack != nil always holds.
func (s *Service) SetIsPlaying(playing bool) {
	s.mu.Lock()
	if playing && s.current == nil {
		s.mu.Unlock()
		slog.Debug("SetIsPlaying ignored, no track loaded")
		return
	}
	if s.playing == playing {
		s.mu.Unlock()
		return
	}
	s.playing = playing
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.Debug("Playing flag set", "playing", playing)
	s.notify(snap, ChangePlaying)
}

// SetQueue atomically replaces the navigation context. The current track is
// untouched; it doesn't have to be a member of the new queue.
func (s *Service) SetQueue(tracks []*music.Track) {
	s.mu.Lock()
	s.queue = make([]*music.Track, len(tracks))
	copy(s.queue, tracks)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.Debug("Queue replaced", "length", len(tracks))
	s.persist(snap)
	s.notify(snap, ChangeQueue)
}

// SetIsExpanded switches the expanded/collapsed UI mode. Orthogonal to
// playback correctness but kept in the same container for atomic updates.
func (s *Service) SetIsExpanded(expanded bool) {
	s.mu.Lock()
	if s.expanded == expanded {
		s.mu.Unlock()
		return
	}
	s.expanded = expanded
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap, ChangeExpanded)
}

// PlayNext advances to the entry after the current track in the queue.
// Reports whether the session actually advanced: end of queue is silence,
// not looping, and a current track outside the queue can't navigate.
func (s *Service) PlayNext() bool {
	return s.step(1)
}

// PlayPrevious moves to the entry before the current track in the queue.
func (s *Service) PlayPrevious() bool {
	return s.step(-1)
}

func (s *Service) step(offset int) bool {
	s.mu.Lock()
	idx := s.indexOfCurrentLocked()
	if idx < 0 || idx+offset < 0 || idx+offset >= len(s.queue) {
		s.mu.Unlock()
		slog.Debug("Queue navigation is a no-op", "offset", offset, "index", idx)
		return false
	}
	// The playing/paused dimension is intentionally left as it was.
	s.current = s.queue[idx+offset]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	slog.Debug("Queue navigation", "offset", offset, "id", snap.CurrentTrack.ID, "title", snap.CurrentTrack.Title)
	s.persist(snap)
	s.notify(snap, ChangeTrack)
	return true
}

// indexOfCurrentLocked locates the current track inside the queue by
// identity. Callers must hold mu.
func (s *Service) indexOfCurrentLocked() int {
	if s.current == nil {
		return -1
	}
	for i, t := range s.queue {
		if t != nil && t.ID == s.current.ID {
			return i
		}
	}
	return -1
}

func (s *Service) persist(snap Snapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(&ResumableContext{CurrentTrack: snap.CurrentTrack, Queue: snap.Queue}); err != nil {
		slog.Error("Failed to persist playback session", "error", err)
	}
}
