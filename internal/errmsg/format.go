// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/mediaplayer/internal/host"
	"github.com/llehouerou/mediaplayer/internal/playback"
	"github.com/llehouerou/mediaplayer/internal/player"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpMediaLoad     Op = "load media"
	OpPlaybackStart Op = "start playback"
	OpPlaybackPause Op = "pause playback"
	OpPlaybackSeek  Op = "seek"

	// Background playback
	OpBackgroundEnable  Op = "enable background playback"
	OpBackgroundDisable Op = "disable background playback"

	// File operations
	OpFileLoad Op = "load file"
	OpTagsRead Op = "read file tags"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// reasons replaces the text of known errors with something a user can act on.
var reasons = []struct {
	err    error
	reason string
}{
	{playback.ErrTimeout, "the media took too long to load"},
	{playback.ErrClosed, "the player has been shut down"},
	{player.ErrUnsupportedFormat, "this audio format is not supported"},
	{host.ErrUnknownService, "background playback is not available"},
	{host.ErrClosed, "background playback has been shut down"},
}

// Reason returns the user-facing text for err.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return err.Error()
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, Reason(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, Reason(err))
}
