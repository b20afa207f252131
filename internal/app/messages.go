package app

import "github.com/llehouerou/mediaplayer/internal/playback"

// StateMsg carries a controller snapshot.
type StateMsg struct {
	State playback.State
}

// PlaybackClosedMsg is sent once the controller subscription has ended.
type PlaybackClosedMsg struct{}

// MediaLoadedMsg reports the outcome of loading a file. Seq identifies the
// load; results of superseded loads are ignored.
type MediaLoadedMsg struct {
	Seq   int
	Path  string
	Title string
	State playback.State
	Err   error
}

// StderrMsg carries a line an audio library wrote to stderr.
type StderrMsg struct {
	Line string
}
