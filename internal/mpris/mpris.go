//go:build linux

// Package mpris exposes a media session on the session bus so desktop
// transport controls can drive playback.
package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

const (
	busPrefix         = "org.mpris.MediaPlayer2."
	noTrackObjectPath = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
	// seekTolerance is how far a reported position may drift from the
	// expected one before listeners are told about a seek.
	seekTolerance = time.Second
)

// Controls receives the commands issued through the session.
type Controls interface {
	OnPlay()
	OnPause()
	OnStop()
	OnSeekTo(position time.Duration)
}

type sessionState struct {
	active   bool
	playing  bool
	position time.Duration
	duration time.Duration
	title    string
	updated  time.Time
}

// Session is one MPRIS player on the session bus.
type Session struct {
	name     string
	identity string
	controls Controls
	server   *server.Server
	events   *events.EventHandler

	mu        sync.Mutex
	state     sessionState
	listening bool
	now       func() time.Time
}

var (
	_ types.OrgMprisMediaPlayer2Adapter       = (*rootAdapter)(nil)
	_ types.OrgMprisMediaPlayer2PlayerAdapter = (*playerAdapter)(nil)
)

// Open registers org.mpris.MediaPlayer2.<name> and starts serving it.
// Commands are forwarded to c.
func Open(name, identity string, c Controls) (*Session, error) {
	s := newSession(name, identity, c)
	s.server = server.NewServer(name, &rootAdapter{s: s}, &playerAdapter{s: s})
	s.events = events.NewEventHandler(s.server)
	s.listening = true

	go func() {
		// Returns early when the bus is unreachable.
		if err := s.server.Listen(); err != nil {
			logger.Log.Warn().Err(err).Str("bus", s.BusName()).Msg("MPRIS session stopped")
			s.mu.Lock()
			s.listening = false
			s.mu.Unlock()
		}
	}()

	return s, nil
}

func newSession(name, identity string, c Controls) *Session {
	return &Session{name: name, identity: identity, controls: c, now: time.Now}
}

// BusName is the well-known name the session is served under.
func (s *Session) BusName() string {
	return busPrefix + s.name
}

// SetActive marks the session as live. An inactive session reports Stopped.
func (s *Session) SetActive(active bool) {
	s.mu.Lock()
	changed := s.state.active != active
	s.state.active = active
	s.mu.Unlock()

	if changed {
		s.emit(func(e *events.EventHandler) { e.Player.OnPlayPause() })
	}
}

// Update replaces the playback state and metadata exposed on the bus.
func (s *Session) Update(playing bool, position, duration time.Duration, title string) {
	s.mu.Lock()
	prev := s.state
	now := s.now()
	s.state.playing = playing
	s.state.position = position
	s.state.duration = duration
	s.state.title = title
	s.state.updated = now
	s.mu.Unlock()

	if prev.playing != playing {
		s.emit(func(e *events.EventHandler) { e.Player.OnPlayPause() })
	}
	if prev.title != title || prev.duration != duration {
		s.emit(func(e *events.EventHandler) { e.Player.OnTitle() })
	}
	if isSeek(prev, position, now) {
		pos := types.Microseconds(position.Microseconds())
		s.emit(func(e *events.EventHandler) { e.Player.OnSeek(pos) })
	}
}

// isSeek reports whether position is not where prev would have drifted to by now.
func isSeek(prev sessionState, position time.Duration, now time.Time) bool {
	if prev.updated.IsZero() {
		return false
	}
	expected := prev.position
	if prev.playing {
		expected += now.Sub(prev.updated)
	}
	diff := position - expected
	return diff > seekTolerance || diff < -seekTolerance
}

func (s *Session) emit(fn func(e *events.EventHandler)) {
	s.mu.Lock()
	ok := s.listening && s.events != nil
	s.mu.Unlock()
	if ok {
		fn(s.events)
	}
}

// Release removes the session from the bus.
func (s *Session) Release() error {
	s.mu.Lock()
	s.listening = false
	s.state.active = false
	s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Stop()
}

func (s *Session) snapshot() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.playing {
		st.position += s.now().Sub(st.updated)
		if st.duration > 0 {
			st.position = min(st.position, st.duration)
		}
	}
	return st
}

func (s *Session) status() types.PlaybackStatus {
	st := s.snapshot()
	switch {
	case !st.active:
		return types.PlaybackStatusStopped
	case st.playing:
		return types.PlaybackStatusPlaying
	default:
		return types.PlaybackStatusPaused
	}
}

func (s *Session) metadata() types.Metadata {
	st := s.snapshot()
	if !st.active {
		return types.Metadata{TrackId: dbus.ObjectPath(noTrackObjectPath)}
	}
	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(st.title, st.duration)),
		Length:  types.Microseconds(st.duration.Microseconds()),
		Title:   st.title,
	}
}

func formatTrackID(title string, duration time.Duration) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%d", title, duration)
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	s *Session
}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return r.s.identity, nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{
		"audio/mpeg", "audio/flac", "audio/wav",
		"audio/ogg", "audio/opus", "audio/mp4",
	}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	s *Session
}

func (p *playerAdapter) Next() error {
	return nil // No queue
}

func (p *playerAdapter) Previous() error {
	return nil // No queue
}

func (p *playerAdapter) Pause() error {
	p.s.controls.OnPause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.s.snapshot().playing {
		p.s.controls.OnPause()
	} else {
		p.s.controls.OnPlay()
	}
	return nil
}

func (p *playerAdapter) Stop() error {
	p.s.controls.OnStop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.s.controls.OnPlay()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	st := p.s.snapshot()
	target := max(st.position+time.Duration(offset)*time.Microsecond, 0)
	if st.duration > 0 && target > st.duration {
		// Seeking past the end behaves like Next, which we do not have.
		p.s.controls.OnStop()
		return nil
	}
	p.s.controls.OnSeekTo(target)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	pos := time.Duration(position) * time.Microsecond
	if st := p.s.snapshot(); pos < 0 || (st.duration > 0 && pos > st.duration) {
		return nil // Out-of-range positions are ignored
	}
	p.s.controls.OnSeekTo(pos)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return p.s.status(), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	return p.s.metadata(), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.s.snapshot().position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.s.snapshot().active, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.s.snapshot().active, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.s.snapshot().duration > 0, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}
