package player

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Metadata is the subset of tag information shown to the user.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads tags from the file at path. The title falls back to
// the file name when the file has no usable tags.
func ReadMetadata(path string) Metadata {
	md := Metadata{Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}

	f, err := os.Open(path)
	if err != nil {
		return md
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return md
	}

	if t := strings.TrimSpace(m.Title()); t != "" {
		md.Title = t
	}
	md.Artist = m.Artist()
	if md.Artist == "" {
		md.Artist = m.AlbumArtist()
	}
	md.Album = m.Album()
	return md
}

// DisplayTitle formats metadata as "Artist - Title" when an artist is known.
func (m Metadata) DisplayTitle() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}
