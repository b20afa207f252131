// Package playerbar renders the one-line playback bar at the bottom of the TUI.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mediaplayer/internal/playback"
	"github.com/llehouerou/mediaplayer/internal/ui/render"
	"github.com/llehouerou/mediaplayer/internal/ui/styles"
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	endedSymbol   = "■"
	loadingSymbol = "…"

	backgroundBadge = "BG"
	separator       = "   "
	minBarWidth     = 5
	minTitleWidth   = 10
)

// Height is the rendered height: border, content, border.
const Height = 3

// State holds everything needed to render the bar.
type State struct {
	Phase         playback.Phase
	Title         string
	Position      time.Duration
	Duration      time.Duration
	DurationKnown bool
	Background    bool
}

// NewState builds the bar state from a controller snapshot.
func NewState(st playback.State, title string, background bool) State {
	return State{
		Phase:         st.Phase(),
		Title:         title,
		Position:      st.CurrentPosition,
		Duration:      st.Duration,
		DurationKnown: st.DurationKnown,
		Background:    background,
	}
}

// Render returns the bordered bar for the given terminal width.
func Render(s State, width int) string {
	inner := max(width-6, 0)
	t := styles.T().S()

	var content string
	if s.Phase == playback.PhaseIdle {
		content = t.Muted.Render(render.Truncate("No media loaded", inner))
	} else {
		content = renderLine(s, inner)
	}
	return t.Bar.Width(max(width-2, 0)).Render(content)
}

// Line: Title   [BG]   ▶  ━━━━───  1:23 / 3:58
func renderLine(s State, width int) string {
	t := styles.T().S()

	status := statusSymbol(s.Phase)
	timeStr := FormatDuration(s.Position) + " / " + durationText(s)

	badge := ""
	if s.Background {
		badge = t.Badge.Render(backgroundBadge) + separator
	}

	fixed := lipgloss.Width(badge) + lipgloss.Width(status) + 2 +
		lipgloss.Width(separator)*2 + lipgloss.Width(timeStr)
	titleSpace := max(width-fixed-minBarWidth, minTitleWidth)

	title := s.Title
	if title == "" {
		title = "Unknown"
	}
	title = render.Truncate(title, titleSpace)

	barWidth := max(width-fixed-lipgloss.Width(title), minBarWidth)

	titleStyle := t.Title
	if s.Phase == playback.PhasePlaying {
		titleStyle = t.Playing
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString(separator)
	b.WriteString(badge)
	b.WriteString(status)
	b.WriteString("  ")
	b.WriteString(ProgressBar(s.Position, s.Duration, s.DurationKnown, barWidth))
	b.WriteString(separator)
	b.WriteString(t.Muted.Render(timeStr))
	return b.String()
}

func statusSymbol(p playback.Phase) string {
	switch p {
	case playback.PhasePlaying:
		return playSymbol
	case playback.PhaseEnded:
		return endedSymbol
	case playback.PhasePreparing:
		return loadingSymbol
	default:
		return pauseSymbol
	}
}

func durationText(s State) string {
	if !s.DurationKnown {
		return "--:--"
	}
	return FormatDuration(s.Duration)
}

// ProgressBar renders a width-cell bar filled to position/duration. An
// unknown duration renders an empty bar.
func ProgressBar(position, duration time.Duration, known bool, width int) string {
	if width <= 0 {
		return ""
	}
	t := styles.T().S()

	filled := 0
	if known && duration > 0 {
		ratio := float64(position) / float64(duration)
		filled = min(max(int(float64(width)*ratio), 0), width)
	}
	return t.Filled.Render(strings.Repeat("━", filled)) +
		t.Empty.Render(strings.Repeat("─", width-filled))
}

// FormatDuration renders m:ss, or h:mm:ss from one hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
