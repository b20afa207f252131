package player

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extOPUS = ".opus"
	extOGA  = ".oga"
	extM4A  = ".m4a"
	extMP4  = ".mp4"
	extAAC  = ".aac"
)

// Format identifies a supported container.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP3
	FormatFLAC
	FormatWAV
	FormatOgg // Opus or Vorbis
	FormatM4A // AAC or ALAC
)

// ErrUnsupportedFormat is returned for items no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// source is a decoded item ready to be streamed.
type source struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	file     *os.File
}

func (s *source) Close() {
	if s.streamer != nil {
		s.streamer.Close()
	}
	if s.file != nil {
		s.file.Close()
	}
}

// DetectFormat picks the decoder from the MIME type, falling back to the
// file extension of the URI.
func DetectFormat(item Item) Format {
	switch strings.ToLower(strings.TrimSpace(item.MimeType)) {
	case "audio/mpeg", "audio/mp3", "audio/mpeg3":
		return FormatMP3
	case "audio/flac", "audio/x-flac":
		return FormatFLAC
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return FormatWAV
	case "audio/ogg", "audio/opus", "audio/vorbis", "application/ogg":
		return FormatOgg
	case "audio/mp4", "audio/m4a", "audio/x-m4a", "audio/aac", "audio/mp4a-latm":
		return FormatM4A
	}

	path, err := uriToPath(item.URI)
	if err != nil {
		return FormatUnknown
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3:
		return FormatMP3
	case extFLAC:
		return FormatFLAC
	case extWAV:
		return FormatWAV
	case extOGG, extOPUS, extOGA:
		return FormatOgg
	case extM4A, extMP4, extAAC:
		return FormatM4A
	}
	return FormatUnknown
}

// IsMusicFile reports whether the path has a supported extension.
func IsMusicFile(path string) bool {
	return DetectFormat(Item{URI: path}) != FormatUnknown
}

// uriToPath accepts file:// URIs and plain paths.
func uriToPath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.Path, nil
}

// openSource opens and decodes the item.
func openSource(item Item) (*source, error) {
	format := DetectFormat(item)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, item.URI)
	}

	path, err := uriToPath(item.URI)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var bf beep.Format

	switch format {
	case FormatMP3:
		streamer, bf, err = decodeMP3(f)
	case FormatFLAC:
		// Skip ID3v2 tag if present (some taggers add it to FLAC files)
		if err := skipID3v2(f); err != nil {
			f.Close()
			return nil, err
		}
		streamer, bf, err = flac.Decode(f)
	case FormatWAV:
		streamer, bf, err = wav.Decode(f)
	case FormatOgg:
		var ogg *oggStreamer
		ogg, err = decodeOgg(f)
		if err == nil {
			streamer = ogg
			bf = beep.Format{
				SampleRate:  beep.SampleRate(ogg.codec.sampleRate()),
				NumChannels: ogg.codec.channels(),
				Precision:   2,
			}
		}
	case FormatM4A:
		streamer, bf, err = decodeM4A(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	return &source{streamer: streamer, format: bf, file: f}, nil
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
// The FLAC decoder does not handle a prepended ID3v2 tag.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
