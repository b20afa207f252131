package audiofocus

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
)

func TestManager_GrantAndRelease(t *testing.T) {
	m := NewManager()
	a := m.Client("a")

	if !a.RequestFocus(RequesterVoiceMessage, nil) {
		t.Fatal("RequestFocus() = false, want true")
	}
	if m.Holder() != "a" {
		t.Errorf("Holder() = %q, want a", m.Holder())
	}

	a.ReleaseFocus()
	if m.Holder() != "" {
		t.Errorf("Holder() after release = %q, want empty", m.Holder())
	}
}

func TestManager_NewGrantRevokesPrevious(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewManager()
		a := m.Client("a")
		b := m.Client("b")

		var lost atomic.Int32
		a.RequestFocus(RequesterVoiceMessage, func() { lost.Add(1) })
		b.RequestFocus(RequesterMedia, nil)
		synctest.Wait()

		if lost.Load() != 1 {
			t.Errorf("onFocusLost called %d times, want 1", lost.Load())
		}
		if m.Holder() != "b" {
			t.Errorf("Holder() = %q, want b", m.Holder())
		}
	})
}

func TestManager_RerequestDoesNotRevokeSelf(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewManager()
		a := m.Client("a")

		var lost atomic.Int32
		a.RequestFocus(RequesterVoiceMessage, func() { lost.Add(1) })
		a.RequestFocus(RequesterVoiceMessage, func() { lost.Add(1) })
		synctest.Wait()

		if lost.Load() != 0 {
			t.Errorf("onFocusLost called %d times, want 0", lost.Load())
		}
	})
}

func TestManager_CallCannotBeDisplaced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewManager()
		call := m.Client("call")
		media := m.Client("media")

		var lost atomic.Int32
		call.RequestFocus(RequesterCall, func() { lost.Add(1) })

		if media.RequestFocus(RequesterVoiceMessage, nil) {
			t.Error("RequestFocus() during call = true, want false")
		}
		synctest.Wait()

		if lost.Load() != 0 {
			t.Error("call lost focus to a media requester")
		}
		if m.Holder() != "call" {
			t.Errorf("Holder() = %q, want call", m.Holder())
		}

		call.ReleaseFocus()
		if !media.RequestFocus(RequesterVoiceMessage, nil) {
			t.Error("RequestFocus() after call ended = false, want true")
		}
	})
}

func TestManager_ReleaseByNonHolderIsNoop(t *testing.T) {
	m := NewManager()
	a := m.Client("a")
	b := m.Client("b")

	a.RequestFocus(RequesterVoiceMessage, nil)
	b.ReleaseFocus()

	if m.Holder() != "a" {
		t.Errorf("Holder() = %q, want a", m.Holder())
	}
}

func TestManager_Interrupt(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewManager()
		a := m.Client("a")

		var lost atomic.Int32
		a.RequestFocus(RequesterVoiceMessage, func() { lost.Add(1) })
		m.Interrupt()
		m.Interrupt()
		synctest.Wait()

		if lost.Load() != 1 {
			t.Errorf("onFocusLost called %d times, want 1", lost.Load())
		}
		if m.Holder() != "" {
			t.Errorf("Holder() = %q, want empty", m.Holder())
		}
	})
}

func TestAlwaysGranted(t *testing.T) {
	a := AlwaysGranted()
	if !a.RequestFocus(RequesterCall, nil) {
		t.Error("AlwaysGranted().RequestFocus() = false")
	}
	a.ReleaseFocus()
}

func TestRequester_String(t *testing.T) {
	tests := []struct {
		r    Requester
		want string
	}{
		{RequesterVoiceMessage, "voice_message"},
		{RequesterMedia, "media"},
		{RequesterCall, "call"},
		{Requester(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Requester(%d).String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}
