package keymap

import (
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var testBindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionSeekBack, []string{"h", "left"}, "Seek back", "playback"},
	{ActionRestart, []string{"0", "home"}, "Back to start", "playback"},
	{ActionRestart, []string{"0"}, "Back to start", "global"},
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testBindings)

	for key, want := range map[string]Action{
		"q":       ActionQuit,
		"ctrl+c":  ActionQuit,
		" ":       ActionPlayPause,
		"left":    ActionSeekBack,
		"home":    ActionRestart,
		"unknown": "",
		"":        "",
	} {
		if got := r.Resolve(key); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestResolver_LaterBindingWins(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionReload, []string{"r"}, "Reload", "playback"},
		{ActionRestart, []string{"r"}, "Restart", "playback"},
	})

	if got := r.Resolve("r"); got != ActionRestart {
		t.Errorf("Resolve(r) = %q, want %q", got, ActionRestart)
	}
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver(testBindings)

	if got := r.KeysFor(ActionSeekBack); !slices.Equal(got, []string{"h", "left"}) {
		t.Errorf("KeysFor(seek_back) = %v", got)
	}
	// Restart is bound in two contexts; "0" must be listed once.
	if got := r.KeysFor(ActionRestart); !slices.Equal(got, []string{"0", "home"}) {
		t.Errorf("KeysFor(restart) = %v, want [0 home]", got)
	}
	if got := r.KeysFor(ActionInterrupt); got != nil {
		t.Errorf("KeysFor(interrupt) = %v, want nil", got)
	}
}

func TestDefault(t *testing.T) {
	r := Default()

	for _, b := range Bindings {
		for _, k := range b.Keys {
			if got := r.Resolve(k); got != b.Action {
				t.Errorf("Resolve(%q) = %q, want %q", k, got, b.Action)
			}
		}
	}
}

func TestResolver_ResolveKey(t *testing.T) {
	r := Default()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Action
	}{
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ActionPlayPause},
		{"arrow", tea.KeyMsg{Type: tea.KeyLeft}, ActionSeekBack},
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}}, ActionToggleBackground},
		{"ctrl", tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{"unbound", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ResolveKey(tt.msg); got != tt.want {
				t.Errorf("ResolveKey(%q) = %q, want %q", tt.msg.String(), got, tt.want)
			}
		})
	}
}
