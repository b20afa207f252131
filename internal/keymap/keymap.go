package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Binding maps keys to an action, with a description for help.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback"
}

// Bindings contains all key bindings.
var Bindings = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionHelp, []string{"?"}, "Toggle help", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionSeekBack, []string{"left", "h"}, "Seek -5s", "playback"},
	{ActionSeekForward, []string{"right", "l"}, "Seek +5s", "playback"},
	{ActionRestart, []string{"0", "home"}, "Back to start", "playback"},
	{ActionReload, []string{"r"}, "Reload media", "playback"},
	{ActionNextFile, []string{"n", "pgdown"}, "Next file", "playback"},
	{ActionPrevFile, []string{"p", "pgup"}, "Previous file", "playback"},
	{ActionToggleBackground, []string{"b"}, "Toggle background playback", "playback"},
	{ActionInterrupt, []string{"i"}, "Simulate audio interruption", "playback"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range Bindings {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// KeyBinding converts b to a bubbles key binding for help rendering.
func (b Binding) KeyBinding() key.Binding {
	return key.NewBinding(
		key.WithKeys(b.Keys...),
		key.WithHelp(helpKeys(b.Keys), b.Description),
	)
}

func helpKeys(keys []string) string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		switch k {
		case " ":
			names = append(names, "space")
		case "left":
			names = append(names, "←")
		case "right":
			names = append(names, "→")
		default:
			names = append(names, k)
		}
	}
	return strings.Join(names, "/")
}

// Help implements help.KeyMap over a set of bindings.
type Help struct {
	short []key.Binding
	full  [][]key.Binding
}

// NewHelp builds the help key map. The short view lists the first binding
// of each context; the full view has one column per context.
func NewHelp(contexts ...string) Help {
	var h Help
	for _, ctx := range contexts {
		var column []key.Binding
		for _, b := range ByContext(ctx) {
			column = append(column, b.KeyBinding())
		}
		if len(column) == 0 {
			continue
		}
		h.short = append(h.short, column[0])
		h.full = append(h.full, column)
	}
	return h
}

func (h Help) ShortHelp() []key.Binding { return h.short }

func (h Help) FullHelp() [][]key.Binding { return h.full }
