//go:build linux

package mpris

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"
)

type recordedControls struct {
	mu    sync.Mutex
	calls []string
	seeks []time.Duration
}

func (c *recordedControls) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, s)
}

func (c *recordedControls) OnPlay()  { c.add("play") }
func (c *recordedControls) OnPause() { c.add("pause") }
func (c *recordedControls) OnStop()  { c.add("stop") }

func (c *recordedControls) OnSeekTo(pos time.Duration) {
	c.add("seek")
	c.mu.Lock()
	c.seeks = append(c.seeks, pos)
	c.mu.Unlock()
}

// testSession returns a session with a frozen clock and no bus connection.
func testSession(t *testing.T) (*Session, *recordedControls, *time.Time) {
	t.Helper()
	c := &recordedControls{}
	s := newSession("test", "Test", c)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, c, &now
}

func TestSession_BusName(t *testing.T) {
	s, _, _ := testSession(t)
	if got := s.BusName(); got != "org.mpris.MediaPlayer2.test" {
		t.Errorf("BusName() = %q", got)
	}
}

func TestSession_Status(t *testing.T) {
	s, _, _ := testSession(t)
	p := &playerAdapter{s: s}

	tests := []struct {
		name    string
		active  bool
		playing bool
		want    types.PlaybackStatus
	}{
		{"inactive", false, true, types.PlaybackStatusStopped},
		{"playing", true, true, types.PlaybackStatusPlaying},
		{"paused", true, false, types.PlaybackStatusPaused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetActive(tt.active)
			s.Update(tt.playing, 0, time.Minute, "note")
			got, err := p.PlaybackStatus()
			if err != nil || got != tt.want {
				t.Errorf("PlaybackStatus() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestSession_PositionAdvancesWhilePlaying(t *testing.T) {
	s, _, now := testSession(t)
	p := &playerAdapter{s: s}
	s.SetActive(true)
	s.Update(true, 2*time.Second, 10*time.Second, "note")

	*now = now.Add(3 * time.Second)
	pos, _ := p.Position()
	if pos != (5 * time.Second).Microseconds() {
		t.Errorf("Position() = %d, want 5s", pos)
	}

	*now = now.Add(time.Minute)
	pos, _ = p.Position()
	if pos != (10 * time.Second).Microseconds() {
		t.Errorf("Position() past end = %d, want clamped to 10s", pos)
	}

	s.Update(false, 4*time.Second, 10*time.Second, "note")
	*now = now.Add(time.Minute)
	pos, _ = p.Position()
	if pos != (4 * time.Second).Microseconds() {
		t.Errorf("Position() paused = %d, want 4s", pos)
	}
}

func TestSession_Metadata(t *testing.T) {
	s, _, _ := testSession(t)
	p := &playerAdapter{s: s}

	md, _ := p.Metadata()
	if string(md.TrackId) != noTrackObjectPath {
		t.Errorf("inactive TrackId = %q, want NoTrack", md.TrackId)
	}

	s.SetActive(true)
	s.Update(true, 0, 90*time.Second, "Voice note")
	md, _ = p.Metadata()
	if md.Title != "Voice note" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.Length != types.Microseconds((90 * time.Second).Microseconds()) {
		t.Errorf("Length = %d", md.Length)
	}
	if !strings.HasPrefix(string(md.TrackId), "/org/mpris/MediaPlayer2/Track/") {
		t.Errorf("TrackId = %q", md.TrackId)
	}
}

func TestPlayerAdapter_Commands(t *testing.T) {
	s, c, _ := testSession(t)
	p := &playerAdapter{s: s}
	s.SetActive(true)
	s.Update(false, 10*time.Second, time.Minute, "note")

	_ = p.PlayPause()
	s.Update(true, 10*time.Second, time.Minute, "note")
	_ = p.PlayPause()
	_ = p.Play()
	_ = p.Pause()
	_ = p.Stop()

	want := []string{"play", "pause", "play", "pause", "stop"}
	if strings.Join(c.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", c.calls, want)
	}
}

func TestPlayerAdapter_Seek(t *testing.T) {
	s, c, _ := testSession(t)
	p := &playerAdapter{s: s}
	s.SetActive(true)
	s.Update(false, 10*time.Second, time.Minute, "note")

	_ = p.Seek(types.Microseconds((5 * time.Second).Microseconds()))
	_ = p.Seek(types.Microseconds((-30 * time.Second).Microseconds()))
	_ = p.SetPosition("", types.Microseconds((42 * time.Second).Microseconds()))
	_ = p.SetPosition("", types.Microseconds((2 * time.Minute).Microseconds())) // ignored
	_ = p.Seek(types.Microseconds((5 * time.Minute).Microseconds()))          // past end

	wantSeeks := []time.Duration{15 * time.Second, 0, 42 * time.Second}
	if len(c.seeks) != len(wantSeeks) {
		t.Fatalf("seeks = %v, want %v", c.seeks, wantSeeks)
	}
	for i := range wantSeeks {
		if c.seeks[i] != wantSeeks[i] {
			t.Errorf("seek[%d] = %v, want %v", i, c.seeks[i], wantSeeks[i])
		}
	}
	if c.calls[len(c.calls)-1] != "stop" {
		t.Errorf("seek past end did not stop: %v", c.calls)
	}
}

func TestIsSeek(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	playing := sessionState{playing: true, position: 10 * time.Second, updated: base}
	paused := sessionState{playing: false, position: 10 * time.Second, updated: base}

	tests := []struct {
		name string
		prev sessionState
		pos  time.Duration
		at   time.Time
		want bool
	}{
		{"first update", sessionState{}, time.Minute, base, false},
		{"playing drift", playing, 12 * time.Second, base.Add(2 * time.Second), false},
		{"playing jump", playing, 40 * time.Second, base.Add(2 * time.Second), true},
		{"paused same", paused, 10 * time.Second, base.Add(time.Minute), false},
		{"paused jump back", paused, 0, base.Add(time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSeek(tt.prev, tt.pos, tt.at); got != tt.want {
				t.Errorf("isSeek() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootAdapter(t *testing.T) {
	s, _, _ := testSession(t)
	r := &rootAdapter{s: s}

	if id, _ := r.Identity(); id != "Test" {
		t.Errorf("Identity() = %q", id)
	}
	if ok, _ := r.CanQuit(); ok {
		t.Error("CanQuit() = true")
	}
	schemes, _ := r.SupportedUriSchemes()
	if len(schemes) != 1 || schemes[0] != "file" {
		t.Errorf("SupportedUriSchemes() = %v", schemes)
	}
}
