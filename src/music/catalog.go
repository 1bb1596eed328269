package music

import "context"

// Catalog is the read-only accessor for playable tracks. The core never
// writes through this interface.
type Catalog interface {
	GetTrack(ctx context.Context, id string) (*Track, error)
	GetTracks(ctx context.Context) ([]*Track, error)
	GetTracksByIDs(ctx context.Context, ids []string) ([]*Track, error)
}
