// Package mediaservice is the background playback service. It runs inside a
// host, keeps a foreground notification and a media session in sync with the
// playback state it is sent, and forwards transport commands to a registered
// Callback.
package mediaservice

import (
	"sync"
	"time"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

const (
	Name           = "mediaplayer.MediaPlaybackService"
	ChannelID      = "media_playback_channel"
	NotificationID = 1

	ActionPlay   = "mediaplayer.ACTION_PLAY"
	ActionPause  = "mediaplayer.ACTION_PAUSE"
	ActionStop   = "mediaplayer.ACTION_STOP"
	ActionSeekTo = "mediaplayer.ACTION_SEEK_TO"

	ExtraTitle     = "mediaplayer.EXTRA_TITLE"
	ExtraIsPlaying = "mediaplayer.EXTRA_IS_PLAYING"
	// ExtraPosition and ExtraDuration are in milliseconds.
	ExtraPosition = "mediaplayer.EXTRA_POSITION"
	ExtraDuration = "mediaplayer.EXTRA_DURATION"

	DefaultTitle = "Media playback"
)

// Callback receives transport commands from the notification, the media
// session or any other sender.
type Callback interface {
	OnPlay()
	OnPause()
	OnStop()
	OnSeekTo(pos time.Duration)
}

// Update is a playback state snapshot pushed to the service.
type Update struct {
	IsPlaying bool
	Position  time.Duration
	Duration  time.Duration
	// Title is left unchanged when empty.
	Title string
}

// CallbackSlot holds at most one registered Callback.
type CallbackSlot struct {
	mu      sync.Mutex
	current *Registration
}

// Registration is the handle returned by CallbackSlot.Register.
type Registration struct {
	slot *CallbackSlot
	cb   Callback
}

// Register makes cb the receiver of commands, displacing any previous one.
func (s *CallbackSlot) Register(cb Callback) *Registration {
	r := &Registration{slot: s, cb: cb}
	s.mu.Lock()
	s.current = r
	s.mu.Unlock()
	return r
}

// Unregister clears the slot if r is still the registered callback.
func (r *Registration) Unregister() {
	if r == nil {
		return
	}
	r.slot.mu.Lock()
	defer r.slot.mu.Unlock()
	if r.slot.current == r {
		r.slot.current = nil
	}
}

// Active reports whether r has been neither unregistered nor displaced.
func (r *Registration) Active() bool {
	if r == nil {
		return false
	}
	r.slot.mu.Lock()
	defer r.slot.mu.Unlock()
	return r.slot.current == r
}

// dispatch calls fn with the registered callback outside the slot lock.
func (s *CallbackSlot) dispatch(action string, fn func(Callback)) {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()

	if r == nil {
		logger.Log.Debug().Str("action", action).Msg("no playback callback registered")
		return
	}
	fn(r.cb)
}
