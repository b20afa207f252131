// internal/player/interface.go
package player

import "time"

// Item identifies one loadable media item.
type Item struct {
	URI      string
	MediaID  string
	MimeType string
}

// Listener receives player events. Callbacks may be invoked on any goroutine,
// including synchronously from within an Interface method.
type Listener interface {
	OnIsPlayingChanged(isPlaying bool)
	OnItemTransition(item *Item)
	OnPlaybackStateChanged(state State)
}

// Interface defines the player contract for dependency injection and testing.
type Interface interface {
	// SetItem replaces the current item, positioned at start. Call Prepare to load it.
	SetItem(item Item, start time.Duration)
	Prepare()
	Play()
	Pause()
	SeekTo(position time.Duration)
	ClearItems()
	CurrentItem() *Item
	Position() time.Duration
	// Duration returns false when the duration is not known yet.
	Duration() (time.Duration, bool)
	PlaybackState() State
	IsPlaying() bool
	AddListener(l Listener)
	Release()
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
