package mediaservice

import (
	"fmt"
	"time"

	"github.com/llehouerou/mediaplayer/internal/host"
	"github.com/llehouerou/mediaplayer/internal/logger"
)

// Session is a media transport session published next to the notification.
type Session interface {
	SetActive(active bool)
	Update(playing bool, position, duration time.Duration, title string)
	BusName() string
	Release() error
}

// SessionFactory opens a session whose commands go to c.
type SessionFactory func(c Callback) (Session, error)

// Config holds the presentation settings of the service.
type Config struct {
	DefaultTitle       string
	ChannelName        string
	ChannelDescription string
	Icon               string
}

type playbackState struct {
	isPlaying bool
	position  time.Duration
	duration  time.Duration
	title     string
}

type service struct {
	slot     *CallbackSlot
	sessions SessionFactory
	self     Callback
	cfg      Config

	ctx     host.Context
	session Session
	state   playbackState
}

func (s *service) OnCreate(ctx host.Context) {
	s.ctx = ctx
	s.state = playbackState{isPlaying: true, title: s.cfg.DefaultTitle}

	ctx.CreateNotificationChannel(host.Channel{
		ID:          ChannelID,
		Name:        s.cfg.ChannelName,
		Description: s.cfg.ChannelDescription,
		Importance:  host.ImportanceLow,
	})

	if s.sessions != nil {
		sess, err := s.sessions(s.self)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("media session unavailable")
		} else {
			s.session = sess
			s.session.SetActive(true)
		}
	}

	if err := ctx.StartForeground(NotificationID, s.notification()); err != nil {
		logger.Log.Error().Err(err).Str("service", ctx.Name()).Msg("could not enter foreground")
	}
}

func (s *service) OnStartCommand(in host.Intent) {
	switch in.Action {
	case ActionPlay:
		s.slot.dispatch(in.Action, func(cb Callback) { cb.OnPlay() })
	case ActionPause:
		s.slot.dispatch(in.Action, func(cb Callback) { cb.OnPause() })
	case ActionSeekTo:
		pos := millis(in.Extras.Int64(ExtraPosition, 0))
		s.slot.dispatch(in.Action, func(cb Callback) { cb.OnSeekTo(pos) })
	case ActionStop:
		s.slot.dispatch(in.Action, func(cb Callback) { cb.OnStop() })
		s.ctx.StopSelf()
	default:
		s.apply(in.Extras)
	}
}

func (s *service) OnDestroy() {
	if s.session != nil {
		s.session.SetActive(false)
		if err := s.session.Release(); err != nil {
			logger.Log.Warn().Err(err).Msg("could not release media session")
		}
		s.session = nil
	}
	s.ctx.StopForeground(true)
}

// apply replaces the playback state. Missing extras reset to their defaults
// except the title, which is kept.
func (s *service) apply(e host.Extras) {
	s.state = playbackState{
		isPlaying: e.Bool(ExtraIsPlaying, true),
		position:  millis(e.Int64(ExtraPosition, 0)),
		duration:  millis(e.Int64(ExtraDuration, 0)),
		title:     e.String(ExtraTitle, s.state.title),
	}
	if s.state.title == "" {
		s.state.title = s.cfg.DefaultTitle
	}

	if s.session != nil {
		s.session.Update(s.state.isPlaying, s.state.position, s.state.duration, s.state.title)
	}
	if err := s.ctx.Notify(NotificationID, s.notification()); err != nil {
		logger.Log.Error().Err(err).Msg("could not update playback notification")
	}
}

func (s *service) notification() host.Notification {
	toggle := host.NotificationAction{Label: "Play", Intent: host.NewIntent(ActionPlay)}
	body := "Paused"
	if s.state.isPlaying {
		toggle = host.NotificationAction{Label: "Pause", Intent: host.NewIntent(ActionPause)}
		body = "Playing"
	}
	if s.state.duration > 0 {
		body += " · " + formatClock(s.state.position) + " / " + formatClock(s.state.duration)
	}

	n := host.Notification{
		ChannelID: ChannelID,
		Title:     s.state.title,
		Body:      body,
		Icon:      s.cfg.Icon,
		Actions: []host.NotificationAction{
			toggle,
			{Label: "Stop", Intent: host.NewIntent(ActionStop)},
		},
		Ongoing:  s.state.isPlaying,
		Category: "x-media.playback",
	}
	if s.session != nil {
		n.Session = s.session.BusName()
	}
	return n
}

func millis(ms int64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func formatClock(d time.Duration) string {
	total := int(d / time.Second)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
