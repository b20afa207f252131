package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mediaplayer/internal/app"
	"github.com/llehouerou/mediaplayer/internal/audiofocus"
	"github.com/llehouerou/mediaplayer/internal/config"
	"github.com/llehouerou/mediaplayer/internal/errmsg"
	"github.com/llehouerou/mediaplayer/internal/host"
	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/mediaservice"
	"github.com/llehouerou/mediaplayer/internal/mpris"
	"github.com/llehouerou/mediaplayer/internal/notify"
	"github.com/llehouerou/mediaplayer/internal/playback"
	"github.com/llehouerou/mediaplayer/internal/player"
	"github.com/llehouerou/mediaplayer/internal/state"
	"github.com/llehouerou/mediaplayer/internal/stderr"
)

const (
	appName  = "mediaplayer"
	identity = "Media Player"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	closeLog := initLogging(cfg)
	defer closeLog()

	files := playableFiles(args)
	logger.Log.Info().Int("files", len(files)).Msg("starting")

	notifier := openNotifier(cfg)
	defer func() {
		if err := notifier.Shutdown(); err != nil {
			logger.Log.Warn().Err(err).Msg("notifier shutdown")
		}
	}()

	bg := cfg.GetBackgroundConfig()
	h := host.New(notifier, host.Config{
		ForegroundDeadline: bg.ForegroundDeadline,
		MailboxSize:        bg.MailboxSize,
	})
	defer func() {
		if err := h.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("host close")
		}
	}()

	service := mediaservice.Install(h, mediaservice.Config{
		DefaultTitle:       bg.DefaultTitle,
		ChannelName:        bg.ChannelName,
		ChannelDescription: bg.ChannelDescription,
		Icon:               bg.Icon,
	}, sessionFactory(cfg))

	// Capture before the audio output is opened.
	var captured <-chan string
	if capture, err := stderr.Start(); err != nil {
		logger.Log.Warn().Err(err).Msg("stderr capture unavailable")
	} else {
		defer capture.Stop()
		captured = capture.Lines()
	}

	focus := audiofocus.NewManager()
	pb := cfg.GetPlaybackConfig()
	ctrl := playback.New(player.New(), focus.Client(appName), service, playback.Config{
		ReadyTimeout: pb.ReadyTimeout,
		PollInterval: pb.PollInterval,
	})

	opts := app.Options{
		Controller: ctrl,
		Focus:      focus,
		Files:      files,
		Stderr:     captured,
		AutoEnable: bg.AutoEnable,
	}
	if store := openResumeStore(cfg); store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Log.Warn().Err(err).Msg("resume store close")
			}
		}()
		opts.Resume = store
	}
	m := app.New(opts)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	// Quitting closes the controller; closing again covers a crashed program.
	if cerr := ctrl.Close(); cerr != nil && !errors.Is(cerr, playback.ErrClosed) {
		logger.Log.Warn().Err(cerr).Msg("controller close")
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// initLogging sends logs to the configured file. Logging stays disabled
// when the file cannot be opened, since stderr belongs to the TUI.
func initLogging(cfg *config.Config) func() {
	path, err := cfg.LogFile()
	if err != nil {
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return func() {}
	}
	logger.Init(cfg.LogLevel(), cfg.Logging.Pretty, f)
	return func() { _ = f.Close() }
}

func playableFiles(args []string) []string {
	files := make([]string, 0, len(args))
	for _, a := range args {
		if !player.IsMusicFile(a) {
			fmt.Fprintf(os.Stderr, "skipping %s: %s\n", a, errmsg.Reason(player.ErrUnsupportedFormat))
			continue
		}
		files = append(files, a)
	}
	return files
}

func openNotifier(cfg *config.Config) notify.Notifier {
	if !cfg.NotificationsEnabled() {
		return notify.NewStub()
	}
	n, err := notify.New(appName)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("desktop notifications unavailable")
		return notify.NewStub()
	}
	return n
}

func openResumeStore(cfg *config.Config) *state.Manager {
	if !cfg.ResumeEnabled() {
		return nil
	}
	store, err := state.Open()
	if err != nil {
		logger.Log.Warn().Err(err).Msg("resume positions unavailable")
		return nil
	}
	return store
}

// sessionFactory opens an MPRIS session per service instance, or none when
// MPRIS is disabled.
func sessionFactory(cfg *config.Config) mediaservice.SessionFactory {
	if !cfg.MPRISEnabled() {
		return nil
	}
	name := cfg.PlayerName()
	return func(c mediaservice.Callback) (mediaservice.Session, error) {
		s, err := mpris.Open(name, identity, c)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
