// Package servicebridge starts and stops the background playback service by
// name. It never links against the service itself.
package servicebridge

import (
	"strings"
	"sync/atomic"

	"github.com/llehouerou/mediaplayer/internal/host"
	"github.com/llehouerou/mediaplayer/internal/logger"
)

// These must match the names the media service registers under.
const (
	ServiceName  = "mediaplayer.MediaPlaybackService"
	ExtraTitle   = "mediaplayer.EXTRA_TITLE"
	DefaultTitle = "Media playback"
)

// Starter is the part of the host the bridge needs.
type Starter interface {
	StartForegroundService(name string, in host.Intent) error
	StopService(name string) error
}

// Helper tracks whether the service is believed to be running. The flag is
// a hint for display: it is set before the start request is delivered and
// is not cleared when the service stops on its own, so nothing should gate
// delivery on it.
type Helper struct {
	starter Starter
	active  atomic.Bool
}

func New(s Starter) *Helper {
	return &Helper{starter: s}
}

// StartService requests a foreground start of the service with the given title.
func (h *Helper) StartService(title string) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	h.active.Store(true)
	in := host.NewIntent("").With(ExtraTitle, title)
	if err := h.starter.StartForegroundService(ServiceName, in); err != nil {
		h.active.Store(false)
		logger.Log.Error().Err(err).Str("service", ServiceName).Msg("could not start background service")
		return
	}
	logger.Log.Debug().Str("service", ServiceName).Str("title", title).Msg("background service start requested")
}

// StopService requests the service to stop.
func (h *Helper) StopService() {
	h.active.Store(false)
	if err := h.starter.StopService(ServiceName); err != nil {
		logger.Log.Error().Err(err).Str("service", ServiceName).Msg("could not stop background service")
	}
}

// IsActive reports the last requested state.
func (h *Helper) IsActive() bool {
	return h.active.Load()
}
