// internal/player/state.go
package player

// State represents the loading state of the current item.
//
// Playing and paused are not states of their own: they are reported
// separately through IsPlaying, on top of Ready.
//
//	┌──────┐  Prepare  ┌───────────┐  loaded  ┌───────┐  end of stream  ┌───────┐
//	│ Idle │──────────▶│ Buffering │─────────▶│ Ready │────────────────▶│ Ended │
//	└──────┘           └───────────┘          └───────┘                 └───────┘
//	    ▲                                         ▲                         │
//	    │ ClearItems / SetItem / load failure     └──────── SeekTo ─────────┘
//
// SetItem always returns to Idle.
type State int

const (
	Idle State = iota
	Buffering
	Ready
	Ended
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Buffering:
		return "Buffering"
	case Ready:
		return "Ready"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// CanPlay returns true if the state allows playback to start.
func (s State) CanPlay() bool {
	return s == Ready
}
