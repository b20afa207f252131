package playback

import (
	"testing"
	"time"
)

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhasePreparing, "Preparing"},
		{PhaseReady, "Ready"},
		{PhasePlaying, "Playing"},
		{PhasePaused, "Paused"},
		{PhaseEnded, "Ended"},
		{Phase(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPhase_IsActive(t *testing.T) {
	tests := []struct {
		phase Phase
		want  bool
	}{
		{PhaseIdle, false},
		{PhaseReady, false},
		{PhasePlaying, true},
		{PhasePaused, true},
		{PhaseEnded, false},
	}
	for _, tt := range tests {
		if got := tt.phase.IsActive(); got != tt.want {
			t.Errorf("%v.IsActive() = %v, want %v", tt.phase, got, tt.want)
		}
	}
}

func TestState_Phase(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Phase
	}{
		{"zero value", State{}, PhaseIdle},
		{"loading", State{MediaID: "m1"}, PhasePreparing},
		{"ready at start", State{MediaID: "m1", IsReady: true}, PhaseReady},
		{"ready mid-item", State{MediaID: "m1", IsReady: true, CurrentPosition: time.Second}, PhasePaused},
		{"playing", State{MediaID: "m1", IsReady: true, IsPlaying: true}, PhasePlaying},
		{"ended", State{MediaID: "m1", IsEnded: true, CurrentPosition: time.Minute}, PhaseEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Phase(); got != tt.want {
				t.Errorf("Phase() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	got := Config{}.withDefaults()
	if got != DefaultConfig() {
		t.Errorf("withDefaults() = %+v, want %+v", got, DefaultConfig())
	}

	custom := Config{ReadyTimeout: 3 * time.Second, PollInterval: 50 * time.Millisecond}
	if got := custom.withDefaults(); got != custom {
		t.Errorf("withDefaults() = %+v, want %+v", got, custom)
	}
}
