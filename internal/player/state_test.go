package player

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "Idle"},
		{Buffering, "Buffering"},
		{Ready, "Ready"},
		{Ended, "Ended"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_CanPlay(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Idle, false},
		{Buffering, false},
		{Ready, true},
		{Ended, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.CanPlay(); got != tt.want {
				t.Errorf("State.CanPlay() = %v, want %v", got, tt.want)
			}
		})
	}
}
