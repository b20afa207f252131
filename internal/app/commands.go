package app

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mediaplayer/internal/playback"
	"github.com/llehouerou/mediaplayer/internal/player"
	"github.com/llehouerou/mediaplayer/internal/ui/render"
)

// WatchPlayback returns a command that waits for the next controller
// snapshot. Each StateMsg re-arms it.
func (m Model) WatchPlayback() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case st := <-sub.States:
			return StateMsg{State: st}
		case <-sub.Done:
			return PlaybackClosedMsg{}
		}
	}
}

// WatchStderr returns a command that waits for the next captured stderr
// line.
func (m Model) WatchStderr() tea.Cmd {
	lines := m.stderr
	if lines == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return StderrMsg{Line: line}
	}
}

// loadCmd loads the current file as load number seq.
func (m Model) loadCmd(seq int) tea.Cmd {
	path := m.CurrentFile()
	if path == "" {
		return nil
	}
	ctrl := m.ctrl
	resume := m.resume
	return func() tea.Msg {
		title := render.Sanitize(player.ReadMetadata(path).DisplayTitle())
		media := mediaFor(path, title, seq)
		if resume != nil {
			media.StartPosition = resume.ResumePosition(path)
		}
		st, err := ctrl.SetMedia(context.Background(), media)
		return MediaLoadedMsg{
			Seq:   seq,
			Path:  path,
			Title: title,
			State: st,
			Err:   err,
		}
	}
}

// loadCurrent starts a new load of the current file.
func (m *Model) loadCurrent() tea.Cmd {
	if len(m.files) == 0 {
		return nil
	}
	m.loadSeq++
	m.mediaID = ""
	m.title = ""
	return m.loadCmd(m.loadSeq)
}

// mediaFor builds the media for path. The id includes seq so that every
// load is distinct, even of the same file.
func mediaFor(path, title string, seq int) playback.Media {
	return playback.Media{
		URI:      path,
		MediaID:  fmt.Sprintf("%s#%d", path, seq),
		MimeType: mime.TypeByExtension(filepath.Ext(path)),
		Title:    title,
	}
}
