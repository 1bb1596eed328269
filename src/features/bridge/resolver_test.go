package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anven/resona/src/features/session"
	"github.com/anven/resona/src/music"
)

type fakeProber struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	calls     []string
}

func (p *fakeProber) ProbeDuration(ctx context.Context, url string) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, url)
	if dur, ok := p.durations[url]; ok {
		return dur, nil
	}
	return 0, errors.New("undecodable source")
}

func (p *fakeProber) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestResolver_ProbesOnePendingTrackPerTick(t *testing.T) {
	sess := session.NewService(nil)
	a, b := track("a"), track("b")
	known := track("c")
	known.Duration = 200
	sess.SetQueue([]*music.Track{a, b, known})

	prober := &fakeProber{durations: map[string]time.Duration{
		a.AudioURL: 150 * time.Second,
		b.AudioURL: 90 * time.Second,
	}}
	r := NewResolver(prober, sess, time.Millisecond)
	r.Start()
	defer r.Stop()

	deadline := time.After(time.Second)
	for {
		if secs, ok := r.Resolved("a"); ok {
			if secs != 150 {
				t.Fatalf("expected 150s for a, got %d", secs)
			}
			if _, ok := r.Resolved("b"); ok {
				break
			}
		}
		select {
		case <-deadline:
			t.Fatal("resolver never finished the queue")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, ok := r.Resolved("c"); ok {
		t.Error("tracks with a known duration must not be probed")
	}
}

func TestResolver_RemembersFailures(t *testing.T) {
	sess := session.NewService(nil)
	broken := track("x")
	sess.SetQueue([]*music.Track{broken})

	prober := &fakeProber{}
	r := NewResolver(prober, sess, time.Millisecond)
	r.Start()
	defer r.Stop()

	deadline := time.After(time.Second)
	for prober.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("probe never ran")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Give the heartbeat a few more ticks; the broken source must not be
	// probed again.
	time.Sleep(20 * time.Millisecond)
	if got := prober.callCount(); got != 1 {
		t.Errorf("expected a single probe of the broken source, got %d", got)
	}
	if secs, ok := r.Resolved("x"); !ok || secs != 0 {
		t.Errorf("expected failure recorded as 0 seconds, got %d %v", secs, ok)
	}
}
