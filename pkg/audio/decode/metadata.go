// ABOUTME: Tag reader for loaded files
// ABOUTME: Extracts title/artist/album using dhowden/tag
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhowden/tag"
)

// Metadata contains track information shown in the player header
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads tags from r. Files without tags return empty Metadata.
func ReadMetadata(r io.ReadSeeker) (Metadata, error) {
	m, err := tag.ReadFrom(r)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return Metadata{}, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read tags: %w", err)
	}

	return Metadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}, nil
}
