package bridge

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/anven/resona/src/features/metrics"
	"github.com/anven/resona/src/features/session"
)

// Resolver fills in unknown track durations in the background by silently
// decoding each source once. It never touches the output device, so probing
// can't glitch whatever is playing.
type Resolver struct {
	prober   DurationProber
	session  *session.Service
	interval time.Duration

	mu       sync.RWMutex
	resolved map[string]int // track id -> seconds
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewResolver creates a duration resolver probing one track per interval.
func NewResolver(prober DurationProber, sess *session.Service, interval time.Duration) *Resolver {
	return &Resolver{
		prober:   prober,
		session:  sess,
		interval: interval,
		resolved: make(map[string]int),
		stopChan: make(chan struct{}),
	}
}

// Start begins the probe heartbeat.
func (r *Resolver) Start() {
	go r.run()
}

// Stop cancels the heartbeat. Safe to call more than once; must be called
// on teardown so the ticker doesn't leak.
func (r *Resolver) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
}

// Resolved returns the probed duration in seconds for a track, if known.
func (r *Resolver) Resolved(trackID string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seconds, ok := r.resolved[trackID]
	return seconds, ok
}

// All returns a copy of every resolved duration.
func (r *Resolver) All() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.resolved)
}

func (r *Resolver) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.probeNext()
		case <-r.stopChan:
			return
		}
	}
}

// probeNext resolves at most one pending track per tick to keep the
// background load negligible.
func (r *Resolver) probeNext() {
	snap := r.session.Snapshot()
	for _, track := range snap.Queue {
		if track == nil || track.Duration > 0 {
			continue
		}
		r.mu.RLock()
		_, done := r.resolved[track.ID]
		r.mu.RUnlock()
		if done {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		dur, err := r.prober.ProbeDuration(ctx, track.AudioURL)
		cancel()
		if err != nil {
			slog.Debug("Duration probe failed", "trackID", track.ID, "error", err)
			// Remember the failure so the heartbeat moves on instead of
			// hammering the same broken source.
			r.mu.Lock()
			r.resolved[track.ID] = 0
			r.mu.Unlock()
			return
		}

		r.mu.Lock()
		r.resolved[track.ID] = int(dur.Seconds())
		r.mu.Unlock()
		metrics.DurationsResolved.Inc()
		slog.Debug("Duration resolved", "trackID", track.ID, "seconds", int(dur.Seconds()))
		return
	}
}
