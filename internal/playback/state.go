package playback

import "time"

// State is an immutable snapshot of the controller. A new value replaces the
// previous one on every change.
type State struct {
	IsReady   bool
	IsPlaying bool
	IsEnded   bool
	// MediaID is empty when no item is loaded.
	MediaID         string
	CurrentPosition time.Duration
	Duration        time.Duration
	DurationKnown   bool
}

// Phase is the conceptual playback state derived from a snapshot.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreparing
	PhaseReady
	PhasePlaying
	PhasePaused
	PhaseEnded
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePreparing:
		return "Preparing"
	case PhaseReady:
		return "Ready"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	case PhaseEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// IsActive returns true if an item is playing or paused.
func (p Phase) IsActive() bool {
	return p == PhasePlaying || p == PhasePaused
}

// Phase maps the snapshot onto the playback state machine. A ready item
// that is not at its start is reported as paused.
func (s State) Phase() Phase {
	switch {
	case s.IsPlaying:
		return PhasePlaying
	case s.IsEnded:
		return PhaseEnded
	case s.MediaID == "":
		return PhaseIdle
	case !s.IsReady:
		return PhasePreparing
	case s.CurrentPosition > 0:
		return PhasePaused
	default:
		return PhaseReady
	}
}

// Media describes an item to load. MediaID must be unique per load.
type Media struct {
	URI           string
	MediaID       string
	MimeType      string
	StartPosition time.Duration
	// Title is shown by the background service.
	Title string
}

// Config holds controller timings.
type Config struct {
	// ReadyTimeout bounds how long SetMedia waits for the item to be ready.
	ReadyTimeout time.Duration
	// PollInterval is the position refresh period while playing.
	PollInterval time.Duration
}

const (
	defaultReadyTimeout = time.Second
	defaultPollInterval = 100 * time.Millisecond
)

func DefaultConfig() Config {
	return Config{
		ReadyTimeout: defaultReadyTimeout,
		PollInterval: defaultPollInterval,
	}
}

func (c Config) withDefaults() Config {
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = defaultReadyTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	return c
}
