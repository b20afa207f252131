//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/llehouerou/mediaplayer/internal/host"
	"github.com/llehouerou/mediaplayer/internal/playback"
	"github.com/llehouerou/mediaplayer/internal/player"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpMediaLoad,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpFileLoad,
			err:      errors.New("file not found"),
			expected: "Failed to load file: file not found",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "wrapped timeout uses friendly reason",
			op:       OpMediaLoad,
			err:      fmt.Errorf("%w: m1 after 1s", playback.ErrTimeout),
			expected: "Failed to load media: the media took too long to load",
		},
		{
			name:     "closed controller",
			op:       OpPlaybackSeek,
			err:      playback.ErrClosed,
			expected: "Failed to seek: the player has been shut down",
		},
		{
			name:     "unknown service",
			op:       OpBackgroundEnable,
			err:      fmt.Errorf("%w: svc", host.ErrUnknownService),
			expected: "Failed to enable background playback: background playback is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpFileLoad,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpFileLoad,
			context:  "song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to load file 'song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpFileLoad,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to load file: permission denied",
		},
		{
			name:     "unsupported format with filename",
			op:       OpMediaLoad,
			context:  "notes.wma",
			err:      fmt.Errorf("open notes.wma: %w", player.ErrUnsupportedFormat),
			expected: "Failed to load media 'notes.wma': this audio format is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpMediaLoad, OpPlaybackStart, OpPlaybackPause, OpPlaybackSeek,
		OpBackgroundEnable, OpBackgroundDisable,
		OpFileLoad, OpTagsRead,
		OpConfigLoad, OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
