package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/anven/resona/src/features/metrics"
	"github.com/anven/resona/src/features/session"
)

// Progress is the read-only playback position signal consumed by
// progress-bar rendering and seek affordances.
type Progress struct {
	Position time.Duration
	Duration time.Duration
}

// Service keeps the single audio output device synchronized with the
// playback session. It is a pure follower: it never owns state, it only
// reacts to committed session transitions and feeds device events back in
// as session commands.
type Service struct {
	device  Device
	session *session.Service

	mu       sync.RWMutex
	progress Progress
	loadedID string
	// appliedPlaying is the transport state last commanded to the device,
	// so the playing-flag dispatch that accompanies a track selection
	// doesn't issue a second Play.
	appliedPlaying bool

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewService creates a new audio output bridge around the given device.
func NewService(device Device, sess *session.Service) *Service {
	return &Service{
		device:   device,
		session:  sess,
		stopChan: make(chan struct{}),
	}
}

// Start subscribes to the session and begins consuming device events.
// Must be called once, before any transitions are committed.
func (s *Service) Start() {
	s.session.Subscribe(s.onSessionChange)
	s.wg.Add(1)
	go s.eventLoop()

	// The restored session may already carry a track; load it paused so
	// seek and progress work before the first user gesture.
	snap := s.session.Snapshot()
	if snap.CurrentTrack != nil {
		s.syncTrack(snap)
	}
}

// Stop halts event consumption and releases the device.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	if err := s.device.Close(); err != nil {
		slog.Warn("Failed to close audio device", "error", err)
	}
	s.wg.Wait()
}

// Progress returns the current playback position and total duration.
func (s *Service) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Seek writes the device position directly. The progress signal is updated
// optimistically without waiting for the next device tick.
func (s *Service) Seek(pos time.Duration) {
	if err := s.device.SetPosition(pos); err != nil {
		slog.Warn("Seek failed", "position", pos, "error", err)
		metrics.PlaybackErrors.WithLabelValues("seek").Inc()
		return
	}
	s.mu.Lock()
	s.progress.Position = pos
	s.mu.Unlock()
}

// onSessionChange reacts to committed session transitions. Errors are
// logged and never propagated: the session is authoritative and is not
// rolled back when the device refuses to start.
func (s *Service) onSessionChange(change session.Change, snap session.Snapshot) {
	switch change {
	case session.ChangeTrack:
		s.syncTrack(snap)
	case session.ChangePlaying:
		s.syncTransport(snap)
	case session.ChangeQueue:
		metrics.QueueLength.Set(float64(len(snap.Queue)))
	}
}

// syncTrack loads the device whenever the track identity changed and starts
// playback if the session says so.
func (s *Service) syncTrack(snap session.Snapshot) {
	metrics.TrackChanges.Inc()

	if snap.CurrentTrack == nil {
		s.device.Pause()
		s.mu.Lock()
		s.loadedID = ""
		s.progress = Progress{}
		s.appliedPlaying = false
		s.mu.Unlock()
		return
	}

	s.mu.RLock()
	loaded := s.loadedID
	s.mu.RUnlock()
	if loaded == snap.CurrentTrack.ID {
		// Same source; only the playing flag may differ.
		s.syncTransport(snap)
		return
	}

	if err := s.device.Load(snap.CurrentTrack.AudioURL); err != nil {
		slog.Error("Failed to load audio source", "trackID", snap.CurrentTrack.ID, "url", snap.CurrentTrack.AudioURL, "error", err)
		metrics.PlaybackErrors.WithLabelValues("load").Inc()
		return
	}
	s.mu.Lock()
	s.loadedID = snap.CurrentTrack.ID
	s.progress = Progress{Duration: s.device.Duration()}
	s.appliedPlaying = snap.IsPlaying
	s.mu.Unlock()

	if snap.IsPlaying {
		if err := s.device.Play(); err != nil {
			// Host policy can block output until a user gesture. The
			// session keeps saying "playing"; the UI tolerates the
			// mismatch instead of masking it.
			slog.Warn("Playback start rejected", "trackID", snap.CurrentTrack.ID, "error", err)
			metrics.PlaybackErrors.WithLabelValues("start").Inc()
		}
	}
}

// syncTransport starts or stops output without reloading the source, so
// pause/resume never re-buffers. Dispatches that match the last commanded
// transport state are ignored.
func (s *Service) syncTransport(snap session.Snapshot) {
	s.mu.Lock()
	if s.appliedPlaying == snap.IsPlaying {
		s.mu.Unlock()
		return
	}
	s.appliedPlaying = snap.IsPlaying
	s.mu.Unlock()

	if snap.IsPlaying {
		metrics.TransportToggles.WithLabelValues("playing").Inc()
		if err := s.device.Play(); err != nil {
			slog.Warn("Playback start rejected", "error", err)
			metrics.PlaybackErrors.WithLabelValues("start").Inc()
		}
	} else {
		metrics.TransportToggles.WithLabelValues("paused").Inc()
		s.device.Pause()
	}
}

// eventLoop consumes time-progress and end-of-media events from the device.
func (s *Service) eventLoop() {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-s.device.Events():
			if !ok {
				return
			}
			if ev.Finished {
				s.onTrackEnd()
				continue
			}
			s.mu.Lock()
			s.progress = Progress{Position: ev.Position, Duration: ev.Duration}
			s.mu.Unlock()
		case <-s.stopChan:
			return
		}
	}
}

// onTrackEnd advances the queue on natural end-of-media. When the queue is
// exhausted the session is driven to paused so the UI never shows a
// "playing" finished track.
func (s *Service) onTrackEnd() {
	slog.Debug("End of media reached")
	if !s.session.PlayNext() {
		s.session.SetIsPlaying(false)
	}
}
