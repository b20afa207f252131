// Package app is the bubbletea model of the terminal player: it loads the
// files given on the command line into the playback controller and maps
// key presses onto controller operations.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mediaplayer/internal/keymap"
	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/playback"
)

const seekStep = 5

// Interrupter takes audio focus away from the player, as an incoming call
// would.
type Interrupter interface {
	Interrupt()
}

// ResumeStore remembers where each file was left off.
type ResumeStore interface {
	ResumePosition(path string) time.Duration
	SavePosition(path string, position, duration time.Duration)
	Forget(path string)
}

// Options configures a Model.
type Options struct {
	Controller *playback.Controller
	// Focus may be nil, in which case the interrupt key does nothing.
	Focus Interrupter
	Files []string
	// Stderr carries lines captured from audio libraries, if any.
	Stderr <-chan string
	// Resume may be nil to always start from the beginning.
	Resume ResumeStore
	// AutoEnable turns background playback on whenever playback starts.
	AutoEnable bool
}

// Model is the root bubbletea model.
type Model struct {
	ctrl       *playback.Controller
	focus      Interrupter
	resume     ResumeStore
	stderr     <-chan string
	sub        *playback.Subscription
	keys       *keymap.Resolver
	help       help.Model
	helpKeys   keymap.Help
	autoEnable bool

	files   []string
	index   int
	loadSeq int
	mediaID string // id of the loaded media, empty while loading
	title   string
	state   playback.State

	ShowHelp bool
	ErrorMsg string
	Width    int
	Height   int
}

// New returns a model driving opts.Controller. The model subscribes to the
// controller immediately so no state change is missed before Init.
func New(opts Options) Model {
	m := Model{
		ctrl:       opts.Controller,
		focus:      opts.Focus,
		resume:     opts.Resume,
		stderr:     opts.Stderr,
		sub:        opts.Controller.Subscribe(),
		keys:       keymap.Default(),
		help:       help.New(),
		helpKeys:   keymap.NewHelp("global", "playback"),
		autoEnable: opts.AutoEnable,
		files:      opts.Files,
		state:      opts.Controller.State(),
	}
	if len(m.files) > 0 {
		m.loadSeq = 1
	}
	return m
}

// Init starts watching the controller and loads the first file.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.WatchPlayback(), m.WatchStderr()}
	if m.loadSeq > 0 {
		cmds = append(cmds, m.loadCmd(m.loadSeq))
	}
	return tea.Batch(cmds...)
}

// State returns the last snapshot received from the controller.
func (m Model) State() playback.State {
	return m.state
}

// Title returns the title of the loaded media.
func (m Model) Title() string {
	return m.title
}

// CurrentFile returns the selected file, or empty when there is none.
func (m Model) CurrentFile() string {
	if len(m.files) == 0 {
		return ""
	}
	return m.files[m.index]
}

// remember records the playhead of the loaded file.
func (m *Model) remember(st playback.State) {
	if m.resume == nil || m.mediaID == "" || st.MediaID != m.mediaID {
		return
	}
	path := m.CurrentFile()
	switch {
	case st.IsEnded:
		m.resume.Forget(path)
	case st.IsReady:
		var dur time.Duration
		if st.DurationKnown {
			dur = st.Duration
		}
		m.resume.SavePosition(path, st.CurrentPosition, dur)
	}
}

func (m *Model) shutdown() {
	if err := m.ctrl.Close(); err != nil {
		logger.Log.Debug().Err(err).Msg("controller already closed")
	}
}
