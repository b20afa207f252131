package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llehouerou/mediaplayer/internal/ui/playerbar"
	"github.com/llehouerou/mediaplayer/internal/ui/render"
	"github.com/llehouerou/mediaplayer/internal/ui/styles"
)

const appTitle = "mediaplayer"

// View renders the header, the help and the player bar at the bottom.
func (m Model) View() string {
	if m.Width == 0 {
		return ""
	}
	t := styles.T().S()

	lines := []string{m.header()}
	if m.ErrorMsg != "" {
		lines = append(lines, t.Error.Render(render.Truncate(m.ErrorMsg, m.Width)))
	}
	if len(m.files) == 0 {
		lines = append(lines, t.Muted.Render("Pass audio files as arguments to play them."))
	}
	m.help.ShowAll = m.ShowHelp
	lines = append(lines, "", m.help.View(m.helpKeys))

	body := strings.Join(lines, "\n")
	if gap := m.Height - playerbar.Height - strings.Count(body, "\n") - 1; gap > 0 {
		body += strings.Repeat("\n", gap)
	}

	bar := playerbar.Render(playerbar.NewState(m.state, m.displayTitle(), m.ctrl.IsBackgroundPlaybackEnabled()), m.Width)
	return body + "\n" + bar
}

func (m Model) header() string {
	t := styles.T().S()
	left := t.Title.Render(appTitle)
	if f := m.CurrentFile(); f != "" {
		name := render.Truncate(filepath.Base(f), max(m.Width/2, 10))
		left += t.Muted.Render(fmt.Sprintf("  [%d/%d] ", m.index+1, len(m.files))) + t.Base.Render(name)
	}
	right := t.Subtle.Render(m.state.Phase().String())
	return render.Row(left, right, m.Width)
}

// displayTitle falls back to the file name while the tags are being read.
func (m Model) displayTitle() string {
	if m.title != "" {
		return m.title
	}
	if f := m.CurrentFile(); f != "" {
		return filepath.Base(f)
	}
	return ""
}
