package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anven/resona/src/features/session"
	"github.com/anven/resona/src/music"
)

// fakeDevice records the commands the bridge sends and lets tests inject
// device events.
type fakeDevice struct {
	mu       sync.Mutex
	loads    []string
	plays    int
	pauses   int
	position time.Duration
	duration time.Duration
	playErr  error
	loadErr  error
	events   chan Event
	closed   bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan Event, 16), duration: 3 * time.Minute}
}

func (d *fakeDevice) Load(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loadErr != nil {
		return d.loadErr
	}
	d.loads = append(d.loads, url)
	return nil
}

func (d *fakeDevice) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playErr != nil {
		return d.playErr
	}
	d.plays++
	return nil
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pauses++
}

func (d *fakeDevice) Position() time.Duration { return d.position }

func (d *fakeDevice) SetPosition(pos time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = pos
	return nil
}

func (d *fakeDevice) Duration() time.Duration { return d.duration }

func (d *fakeDevice) Events() <-chan Event { return d.events }

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	return nil
}

func (d *fakeDevice) snapshot() (loads []string, plays, pauses int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.loads...), d.plays, d.pauses
}

func track(id string) *music.Track {
	return &music.Track{ID: id, Title: "Title " + id, Artist: "Artist", AudioURL: "file:///tmp/" + id + ".mp3"}
}

func newBridge(t *testing.T) (*Service, *fakeDevice, *session.Service) {
	t.Helper()
	device := newFakeDevice()
	sess := session.NewService(nil)
	bridge := NewService(device, sess)
	bridge.Start()
	t.Cleanup(bridge.Stop)
	return bridge, device, sess
}

func TestBridge_LoadsAndPlaysOnTrackChange(t *testing.T) {
	_, device, sess := newBridge(t)

	sess.SetCurrentTrack(track("a"))

	loads, plays, _ := device.snapshot()
	if len(loads) != 1 || loads[0] != "file:///tmp/a.mp3" {
		t.Fatalf("expected one load of track a, got %v", loads)
	}
	if plays == 0 {
		t.Error("selecting a track must start the device")
	}
}

func TestBridge_TrackSelectionPlaysOnce(t *testing.T) {
	_, device, sess := newBridge(t)

	// Selecting a track flips the playing flag too; both dispatches
	// together must still command the device exactly once.
	sess.SetCurrentTrack(track("a"))

	_, plays, _ := device.snapshot()
	if plays != 1 {
		t.Errorf("one track selection must issue exactly one play, got %d", plays)
	}

	sess.SetCurrentTrack(nil)

	_, _, pauses := device.snapshot()
	if pauses != 1 {
		t.Errorf("clearing the track must issue exactly one pause, got %d", pauses)
	}
}

func TestBridge_PauseResumeWithoutReload(t *testing.T) {
	_, device, sess := newBridge(t)
	sess.SetCurrentTrack(track("a"))

	sess.SetIsPlaying(false)
	sess.SetIsPlaying(true)

	loads, plays, pauses := device.snapshot()
	if len(loads) != 1 {
		t.Errorf("pause/resume must not reload the source, got %d loads", len(loads))
	}
	if pauses != 1 {
		t.Errorf("expected one pause, got %d", pauses)
	}
	if plays != 2 {
		t.Errorf("expected initial play plus resume, got %d", plays)
	}
}

func TestBridge_SameTrackDoesNotReload(t *testing.T) {
	_, device, sess := newBridge(t)
	a := track("a")
	sess.SetCurrentTrack(a)

	sess.SetCurrentTrack(track("a")) // same id, distinct pointer

	loads, _, _ := device.snapshot()
	if len(loads) != 1 {
		t.Errorf("re-selecting the loaded track must not reload, got %d loads", len(loads))
	}
}

func TestBridge_NilTrackPausesAndClearsProgress(t *testing.T) {
	bridge, device, sess := newBridge(t)
	sess.SetCurrentTrack(track("a"))

	sess.SetCurrentTrack(nil)

	_, _, pauses := device.snapshot()
	if pauses == 0 {
		t.Error("clearing the track must pause the device")
	}
	if got := bridge.Progress(); got != (Progress{}) {
		t.Errorf("expected cleared progress, got %+v", got)
	}
}

func TestBridge_RejectedStartLeavesSessionPlaying(t *testing.T) {
	device := newFakeDevice()
	device.playErr = errors.New("output blocked by host policy")
	sess := session.NewService(nil)
	bridge := NewService(device, sess)
	bridge.Start()
	t.Cleanup(bridge.Stop)

	sess.SetCurrentTrack(track("a"))

	// The session stays authoritative; the device failure is not rolled back.
	if !sess.Snapshot().IsPlaying {
		t.Error("a device start rejection must not flip the session to paused")
	}
}

func TestBridge_ProgressFollowsDeviceEvents(t *testing.T) {
	bridge, device, _ := newBridge(t)

	device.events <- Event{Position: 42 * time.Second, Duration: 3 * time.Minute}

	deadline := time.After(time.Second)
	for bridge.Progress().Position != 42*time.Second {
		select {
		case <-deadline:
			t.Fatalf("progress never updated, got %+v", bridge.Progress())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestBridge_EndOfMediaAdvancesQueue(t *testing.T) {
	_, device, sess := newBridge(t)
	a, b := track("a"), track("b")
	sess.SetQueue([]*music.Track{a, b})
	sess.SetCurrentTrack(a)

	device.events <- Event{Finished: true}

	deadline := time.After(time.Second)
	for {
		snap := sess.Snapshot()
		if snap.CurrentTrack != nil && snap.CurrentTrack.ID == "b" {
			if !snap.IsPlaying {
				t.Error("advancing on end of media must keep playing")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("queue never advanced, current %+v", snap.CurrentTrack)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestBridge_EndOfMediaWithExhaustedQueueStops(t *testing.T) {
	_, device, sess := newBridge(t)
	a, b := track("a"), track("b")
	sess.SetQueue([]*music.Track{a, b})
	sess.SetCurrentTrack(b) // already at the tail

	device.events <- Event{Finished: true}

	deadline := time.After(time.Second)
	for {
		snap := sess.Snapshot()
		if !snap.IsPlaying {
			if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "b" {
				t.Errorf("finished track must stay loaded, got %+v", snap.CurrentTrack)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("session never stopped after the queue was exhausted")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestBridge_SeekUpdatesProgressOptimistically(t *testing.T) {
	bridge, device, sess := newBridge(t)
	sess.SetCurrentTrack(track("a"))

	bridge.Seek(30 * time.Second)

	if device.position != 30*time.Second {
		t.Errorf("expected device position 30s, got %v", device.position)
	}
	if bridge.Progress().Position != 30*time.Second {
		t.Errorf("expected optimistic progress 30s, got %v", bridge.Progress().Position)
	}
}
