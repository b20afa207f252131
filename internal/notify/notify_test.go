package notify

import (
	"slices"
	"testing"
)

func TestUrgencyValues(t *testing.T) {
	// Values are fixed by org.freedesktop.Notifications.
	if UrgencyLow != 0 {
		t.Errorf("UrgencyLow = %d, want 0", UrgencyLow)
	}
	if UrgencyNormal != 1 {
		t.Errorf("UrgencyNormal = %d, want 1", UrgencyNormal)
	}
	if UrgencyCritical != 2 {
		t.Errorf("UrgencyCritical = %d, want 2", UrgencyCritical)
	}
}

func TestActionList(t *testing.T) {
	got := actionList([]Action{{Key: "pause", Label: "Pause"}, {Key: "stop", Label: "Stop"}})
	want := []string{"pause", "Pause", "stop", "Stop"}
	if !slices.Equal(got, want) {
		t.Errorf("actionList() = %v, want %v", got, want)
	}

	if got := actionList(nil); got == nil || len(got) != 0 {
		t.Errorf("actionList(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestRecorder_ReplacesExisting(t *testing.T) {
	r := NewRecorder()

	id1, _ := r.Notify(Notification{Title: "one"})
	id2, _ := r.Notify(Notification{Title: "two", ReplacesID: id1})
	if id2 != id1 {
		t.Errorf("replacing returned id %d, want %d", id2, id1)
	}

	id3, _ := r.Notify(Notification{Title: "three", ReplacesID: 99})
	if id3 == id1 || id3 == 99 {
		t.Errorf("replacing an unknown id returned %d, want a fresh id", id3)
	}

	shown := r.Shown()
	if len(shown) != 2 || shown[id1].Title != "two" {
		t.Errorf("Shown() = %+v", shown)
	}
	if len(r.Sent()) != 3 {
		t.Errorf("Sent() has %d entries, want 3", len(r.Sent()))
	}

	_ = r.Close(id1)
	if _, ok := r.Shown()[id1]; ok {
		t.Error("notification still shown after Close")
	}
	if !slices.Equal(r.Closed(), []uint32{id1}) {
		t.Errorf("Closed() = %v", r.Closed())
	}
}

func TestRecorder_Invoke(t *testing.T) {
	r := NewRecorder()
	r.Invoke(1, "ignored") // no handler yet

	var gotID uint32
	var gotKey string
	r.OnAction(func(id uint32, key string) {
		gotID, gotKey = id, key
	})
	r.Invoke(7, "stop")

	if gotID != 7 || gotKey != "stop" {
		t.Errorf("handler got (%d, %q), want (7, stop)", gotID, gotKey)
	}
}

func TestStub(t *testing.T) {
	n := NewStub()
	id, err := n.Notify(Notification{Title: "x"})
	if id != 0 || err != nil {
		t.Errorf("stub Notify() = %d, %v", id, err)
	}
	if err := n.Close(id); err != nil {
		t.Errorf("stub Close() = %v", err)
	}
	if err := n.Shutdown(); err != nil {
		t.Errorf("stub Shutdown() = %v", err)
	}
}
