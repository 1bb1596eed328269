package bridge

import (
	"context"
	"time"
)

// Event is emitted by the audio device: periodic time-progress ticks while
// a source is loaded, and a final end-of-media event when a track finishes
// naturally.
type Event struct {
	Position time.Duration
	Duration time.Duration
	Finished bool
}

// Device is one physical audio output handle. The bridge service is its
// sole mutator; it never receives commands from anywhere else.
type Device interface {
	// Load replaces the device source without starting playback.
	Load(url string) error
	// Play starts or resumes the loaded source. Fails when the host
	// refuses to start output (no source loaded, output unavailable).
	Play() error
	// Pause stops output without unloading the source.
	Pause()
	Position() time.Duration
	SetPosition(pos time.Duration) error
	Duration() time.Duration
	// Events delivers time-progress and end-of-media events. The channel
	// is closed by Close.
	Events() <-chan Event
	Close() error
}

// DurationProber resolves a track's duration by silently decoding its
// source once, without touching the output device.
type DurationProber interface {
	ProbeDuration(ctx context.Context, url string) (time.Duration, error)
}
