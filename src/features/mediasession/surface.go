package mediasession

import "time"

// Artwork is one size variant of the now-playing image. All variants may be
// rendered from the same source image.
type Artwork struct {
	Size int // square edge in pixels
	MIME string
	Data []byte
}

// Metadata is the now-playing projection published to the host surface.
type Metadata struct {
	Title   string
	Artist  string
	Album   string
	Artwork []Artwork
}

// Handlers are the host-originated transport commands. These are the only
// inbound edges from the OS into the core.
type Handlers struct {
	Play     func()
	Pause    func()
	Previous func()
	Next     func()
	SeekTo   func(pos time.Duration)
}

// Surface is the host OS media-control surface (MPRIS on Linux). A host
// without one simply provides no Surface and the reporter stays inert.
type Surface interface {
	SetMetadata(meta Metadata) error
	SetPlaybackState(playing bool) error
	RegisterHandlers(handlers Handlers) error
	Close() error
}
