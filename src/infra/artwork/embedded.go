package artwork

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"
)

// embeddedScheme marks cover URLs that point at artwork embedded in a local
// audio file rather than a standalone image.
const embeddedScheme = "embedded://"

// EmbeddedURL builds a cover URL referencing the artwork inside an audio file.
func EmbeddedURL(audioPath string) string {
	return embeddedScheme + audioPath
}

// extractEmbedded pulls the front-cover image out of a local audio file.
func extractEmbedded(audioPath string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".mp3":
		return extractFromMP3(audioPath)
	case ".flac":
		return extractFromFLAC(audioPath)
	default:
		return nil, fmt.Errorf("unsupported audio format for embedded artwork: %s", audioPath)
	}
}

// extractFromMP3 reads the first APIC frame from the ID3 tag.
func extractFromMP3(audioPath string) ([]byte, error) {
	tag, err := id3v2.Open(audioPath, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 tags: %w", err)
	}
	defer tag.Close()

	frames := tag.GetFrames(tag.CommonID("Attached picture"))
	for _, frame := range frames {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if len(pic.Picture) > 0 {
			return pic.Picture, nil
		}
	}
	return nil, fmt.Errorf("no embedded artwork in %s", audioPath)
}

// extractFromFLAC reads the first PICTURE metadata block.
func extractFromFLAC(audioPath string) ([]byte, error) {
	f, err := goflac.ParseFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file: %w", err)
	}
	for _, block := range f.Meta {
		if block.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		if len(pic.ImageData) > 0 {
			return pic.ImageData, nil
		}
	}
	return nil, fmt.Errorf("no embedded artwork in %s", audioPath)
}
