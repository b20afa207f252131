package app

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mediaplayer/internal/errmsg"
	"github.com/llehouerou/mediaplayer/internal/keymap"
	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/playback"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StateMsg:
		m.state = msg.State
		m.remember(msg.State)
		return m, m.WatchPlayback()

	case PlaybackClosedMsg:
		m.sub = nil
		return m, nil

	case StderrMsg:
		m.ErrorMsg = msg.Line
		return m, m.WatchStderr()

	case MediaLoadedMsg:
		return m.handleMediaLoaded(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleMediaLoaded(msg MediaLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.loadSeq {
		logger.Log.Debug().Int("seq", msg.Seq).Int("current", m.loadSeq).Msg("ignoring superseded load")
		return m, nil
	}
	if msg.Err != nil {
		logger.Log.Error().Err(msg.Err).Str("path", msg.Path).Msg("media load failed")
		m.ErrorMsg = errmsg.FormatWith(errmsg.OpMediaLoad, filepath.Base(msg.Path), msg.Err)
		return m, nil
	}
	m.title = msg.Title
	m.mediaID = msg.State.MediaID
	m.state = msg.State
	m.play()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.ResolveKey(msg)

	// Any key dismisses an error; quit still quits.
	if m.ErrorMsg != "" && action != keymap.ActionQuit {
		m.ErrorMsg = ""
		return m, nil
	}

	switch action { //nolint:exhaustive // unbound keys fall through
	case keymap.ActionQuit:
		m.shutdown()
		return m, tea.Quit
	case keymap.ActionHelp:
		m.ShowHelp = !m.ShowHelp
	case keymap.ActionPlayPause:
		m.togglePlayPause()
	case keymap.ActionSeekBack:
		m.handleSeek(-seekStep)
	case keymap.ActionSeekForward:
		m.handleSeek(seekStep)
	case keymap.ActionRestart:
		m.seekTo(0)
	case keymap.ActionReload:
		return m, m.loadCurrent()
	case keymap.ActionNextFile:
		return m, m.selectFile(m.index + 1)
	case keymap.ActionPrevFile:
		return m, m.selectFile(m.index - 1)
	case keymap.ActionToggleBackground:
		m.toggleBackground()
	case keymap.ActionInterrupt:
		if m.focus != nil {
			m.focus.Interrupt()
		}
	}
	return m, nil
}

// selectFile loads the file at i. Out-of-range indexes are ignored.
func (m *Model) selectFile(i int) tea.Cmd {
	if i < 0 || i >= len(m.files) || i == m.index {
		return nil
	}
	m.index = i
	return m.loadCurrent()
}

func (m *Model) play() {
	if m.autoEnable && !m.ctrl.IsBackgroundPlaybackEnabled() {
		if err := m.ctrl.EnableBackgroundPlayback(); err != nil {
			m.ErrorMsg = errmsg.Format(errmsg.OpBackgroundEnable, err)
		}
	}
	if err := m.ctrl.Play(); err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpPlaybackStart, err)
	}
}

func (m *Model) togglePlayPause() {
	st := m.ctrl.State()
	switch st.Phase() {
	case playback.PhaseIdle, playback.PhasePreparing:
		return
	case playback.PhasePlaying:
		if err := m.ctrl.Pause(); err != nil {
			m.ErrorMsg = errmsg.Format(errmsg.OpPlaybackPause, err)
		}
	default:
		m.play()
	}
}

// handleSeek moves the playhead by seconds, clamped to the media bounds.
func (m *Model) handleSeek(seconds int) {
	st := m.ctrl.State()
	if st.MediaID == "" || (!st.IsReady && !st.IsEnded) {
		return
	}
	m.seekTo(st.CurrentPosition + time.Duration(seconds)*time.Second)
}

func (m *Model) seekTo(pos time.Duration) {
	st := m.ctrl.State()
	if st.MediaID == "" {
		return
	}
	pos = max(pos, 0)
	if st.DurationKnown {
		pos = min(pos, st.Duration)
	}
	if err := m.ctrl.SeekTo(pos); err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpPlaybackSeek, err)
		return
	}
	m.state = m.ctrl.State()
}

func (m *Model) toggleBackground() {
	if m.ctrl.IsBackgroundPlaybackEnabled() {
		if err := m.ctrl.DisableBackgroundPlayback(); err != nil {
			m.ErrorMsg = errmsg.Format(errmsg.OpBackgroundDisable, err)
		}
		return
	}
	if err := m.ctrl.EnableBackgroundPlayback(); err != nil {
		m.ErrorMsg = errmsg.Format(errmsg.OpBackgroundEnable, err)
	}
}
