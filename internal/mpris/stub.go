//go:build !linux

package mpris

import "time"

// Controls receives the commands issued through the session.
type Controls interface {
	OnPlay()
	OnPause()
	OnStop()
	OnSeekTo(position time.Duration)
}

// Session is a no-op on non-Linux platforms.
type Session struct {
	name string
}

// Open returns a no-op session on non-Linux platforms.
func Open(name, _ string, _ Controls) (*Session, error) {
	return &Session{name: name}, nil
}

func (s *Session) BusName() string { return "org.mpris.MediaPlayer2." + s.name }

func (s *Session) SetActive(bool) {}

func (s *Session) Update(bool, time.Duration, time.Duration, string) {}

func (s *Session) Release() error { return nil }
