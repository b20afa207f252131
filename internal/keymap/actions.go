// Package keymap defines key bindings and action dispatch for the application.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Playback actions
	ActionPlayPause        Action = "play_pause"
	ActionSeekForward      Action = "seek_forward"
	ActionSeekBack         Action = "seek_back"
	ActionRestart          Action = "restart"
	ActionReload           Action = "reload"
	ActionNextFile         Action = "next_file"
	ActionPrevFile         Action = "prev_file"
	ActionToggleBackground Action = "toggle_background"

	// Simulated interruption (another app takes audio focus)
	ActionInterrupt Action = "interrupt"
)
