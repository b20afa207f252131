package playerbar

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/mediaplayer/internal/playback"
)

func TestNewState(t *testing.T) {
	st := playback.State{
		IsReady:         true,
		IsPlaying:       true,
		MediaID:         "m1",
		CurrentPosition: 5 * time.Second,
		Duration:        time.Minute,
		DurationKnown:   true,
	}

	got := NewState(st, "Voice note", true)

	want := State{
		Phase:         playback.PhasePlaying,
		Title:         "Voice note",
		Position:      5 * time.Second,
		Duration:      time.Minute,
		DurationKnown: true,
		Background:    true,
	}
	if got != want {
		t.Errorf("NewState() = %+v, want %+v", got, want)
	}
}

func TestRender_Idle(t *testing.T) {
	out := ansi.Strip(Render(State{Phase: playback.PhaseIdle}, 60))

	if !strings.Contains(out, "No media loaded") {
		t.Errorf("Render() = %q, want idle message", out)
	}
	if h := lipgloss.Height(out); h != Height {
		t.Errorf("height = %d, want %d", h, Height)
	}
}

func TestRender_Playing(t *testing.T) {
	s := State{
		Phase:         playback.PhasePlaying,
		Title:         "Voice note",
		Position:      83 * time.Second,
		Duration:      238 * time.Second,
		DurationKnown: true,
	}

	out := ansi.Strip(Render(s, 80))

	for _, want := range []string{"Voice note", playSymbol, "1:23 / 3:58", "━", "─"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, backgroundBadge) {
		t.Errorf("Render() shows background badge while disabled: %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 80 {
			t.Errorf("line width = %d, want <= 80: %q", w, line)
		}
	}
}

func TestRender_StatusSymbols(t *testing.T) {
	tests := []struct {
		phase playback.Phase
		want  string
	}{
		{playback.PhasePlaying, playSymbol},
		{playback.PhasePaused, pauseSymbol},
		{playback.PhaseReady, pauseSymbol},
		{playback.PhaseEnded, endedSymbol},
		{playback.PhasePreparing, loadingSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			out := ansi.Strip(Render(State{Phase: tt.phase, Title: "x"}, 60))
			if !strings.Contains(out, tt.want) {
				t.Errorf("Render(%v) = %q, want symbol %q", tt.phase, out, tt.want)
			}
		})
	}
}

func TestRender_BackgroundBadge(t *testing.T) {
	s := State{Phase: playback.PhasePaused, Title: "Voice note", Background: true}

	out := ansi.Strip(Render(s, 80))

	if !strings.Contains(out, backgroundBadge) {
		t.Errorf("Render() = %q, want background badge", out)
	}
}

func TestRender_UnknownDuration(t *testing.T) {
	s := State{Phase: playback.PhasePlaying, Title: "Stream", Position: 3 * time.Second}

	out := ansi.Strip(Render(s, 80))

	if !strings.Contains(out, "0:03 / --:--") {
		t.Errorf("Render() = %q, want unknown duration placeholder", out)
	}
}

func TestRender_LongTitleTruncated(t *testing.T) {
	s := State{
		Phase:         playback.PhasePlaying,
		Title:         strings.Repeat("very long title ", 20),
		Duration:      time.Minute,
		DurationKnown: true,
	}

	out := ansi.Strip(Render(s, 60))

	if !strings.Contains(out, "…") {
		t.Errorf("Render() = %q, want truncated title", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line width = %d, want <= 60", w)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		pos, dur   time.Duration
		known      bool
		width      int
		wantFilled int
	}{
		{"half", 30 * time.Second, time.Minute, true, 10, 5},
		{"start", 0, time.Minute, true, 10, 0},
		{"past end clamps", 2 * time.Minute, time.Minute, true, 10, 10},
		{"unknown duration", 30 * time.Second, 0, false, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ansi.Strip(ProgressBar(tt.pos, tt.dur, tt.known, tt.width))
			if got := strings.Count(out, "━"); got != tt.wantFilled {
				t.Errorf("filled = %d, want %d", got, tt.wantFilled)
			}
			if got := lipgloss.Width(out); got != tt.width {
				t.Errorf("width = %d, want %d", got, tt.width)
			}
		})
	}

	if got := ProgressBar(0, time.Minute, true, 0); got != "" {
		t.Errorf("ProgressBar(width 0) = %q, want empty", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{5 * time.Second, "0:05"},
		{83 * time.Second, "1:23"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
