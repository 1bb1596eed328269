package audio

import (
	"context"
	"time"
)

// Prober resolves track durations by decoding a source once, without ever
// touching the speaker. Safe to run while the device is playing.
type Prober struct{}

// NewProber creates a new duration prober.
func NewProber() *Prober {
	return &Prober{}
}

// ProbeDuration decodes the source headers and reports the total length.
func (p *Prober) ProbeDuration(ctx context.Context, url string) (time.Duration, error) {
	path, err := fetchSource(ctx, url)
	if err != nil {
		return 0, err
	}
	streamer, format, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), nil
}
