package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/anven/resona/src/features/bridge"
)

// The speaker can only be initialized once per process.
var (
	speakerOnce sync.Once
	speakerErr  error
)

const deviceSampleRate = beep.SampleRate(44100)

// Device is the beep-backed implementation of bridge.Device. One instance
// owns the process-wide speaker.
type Device struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64

	events   chan bridge.Event
	stopChan chan struct{}
	stopOnce sync.Once
}

// Ensure Device implements bridge.Device
var _ bridge.Device = (*Device)(nil)

// NewDevice initializes the speaker and returns the audio device.
// bufferMillis sizes the speaker buffer; volume is 0.0-1.0.
func NewDevice(bufferMillis int, volume float64) (*Device, error) {
	speakerOnce.Do(func() {
		buf := deviceSampleRate.N(time.Duration(bufferMillis) * time.Millisecond)
		speakerErr = speaker.Init(deviceSampleRate, buf)
	})
	if speakerErr != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", speakerErr)
	}

	d := &Device{
		level:    volume,
		events:   make(chan bridge.Event, 16),
		stopChan: make(chan struct{}),
	}
	go d.progressLoop()
	return d, nil
}

// Load replaces the device source without starting playback.
func (d *Device) Load(url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	path, err := fetchSource(ctx, url)
	if err != nil {
		return err
	}
	streamer, format, err := decodeFile(path)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	speaker.Clear()
	if d.streamer != nil {
		d.streamer.Close()
	}
	d.streamer = streamer
	d.format = format

	var resampled beep.Streamer = streamer
	if format.SampleRate != deviceSampleRate {
		resampled = beep.Resample(4, format.SampleRate, deviceSampleRate, streamer)
	}
	d.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	d.volume = &effects.Volume{
		Streamer: d.ctrl,
		Base:     2,
		Volume:   levelToGain(d.level),
		Silent:   d.level <= 0,
	}
	speaker.Play(beep.Seq(d.volume, beep.Callback(d.emitFinished)))

	slog.Debug("Audio source loaded", "path", path, "sampleRate", int(format.SampleRate))
	return nil
}

// Play resumes output of the loaded source.
func (d *Device) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl == nil {
		return fmt.Errorf("no source loaded")
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause stops output without unloading the source.
func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
}

// Position returns the current playback position.
func (d *Device) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := d.format.SampleRate.D(d.streamer.Position())
	speaker.Unlock()
	return pos
}

// SetPosition seeks the loaded source.
func (d *Device) SetPosition(pos time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return fmt.Errorf("no source loaded")
	}
	speaker.Lock()
	defer speaker.Unlock()
	n := clampSample(d.format.SampleRate.N(pos), d.streamer.Len())
	return d.streamer.Seek(n)
}

// Duration returns the total length of the loaded source.
func (d *Device) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len())
}

// Events delivers time-progress ticks and end-of-media events.
func (d *Device) Events() <-chan bridge.Event {
	return d.events
}

// Close stops the device and releases the loaded source.
func (d *Device) Close() error {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.mu.Lock()
	defer d.mu.Unlock()
	speaker.Clear()
	if d.streamer != nil {
		err := d.streamer.Close()
		d.streamer = nil
		d.ctrl = nil
		return err
	}
	return nil
}

// progressLoop emits periodic time-progress events while output is live.
func (d *Device) progressLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	defer close(d.events)

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			if d.streamer == nil || d.ctrl == nil || d.ctrl.Paused {
				d.mu.Unlock()
				continue
			}
			speaker.Lock()
			pos := d.format.SampleRate.D(d.streamer.Position())
			total := d.format.SampleRate.D(d.streamer.Len())
			speaker.Unlock()
			d.mu.Unlock()
			d.emit(bridge.Event{Position: pos, Duration: total})
		case <-d.stopChan:
			return
		}
	}
}

// emitFinished runs inside the speaker goroutine; it must never block.
func (d *Device) emitFinished() {
	d.emit(bridge.Event{Finished: true})
}

func (d *Device) emit(ev bridge.Event) {
	select {
	case d.events <- ev:
	case <-d.stopChan:
	default:
		// A slow consumer drops ticks rather than stalling playback.
	}
}

// decodeFile picks a decoder by extension, defaulting to MP3.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open audio file: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode audio file %s: %w", path, err)
	}
	return streamer, format, nil
}

// clampSample bounds a seek target to the decoded stream. The lower bound
// is applied last so an empty stream seeks to sample 0, never -1.
func clampSample(n, length int) int {
	if n >= length {
		n = length - 1
	}
	if n < 0 {
		n = 0
	}
	return n
}

// levelToGain converts a 0.0-1.0 volume level to the logarithmic gain the
// effects.Volume streamer expects.
func levelToGain(level float64) float64 {
	if level <= 0 {
		return 0
	}
	return math.Log2(level)
}
