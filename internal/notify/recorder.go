package notify

import "sync"

// Recorder is an in-memory Notifier for tests. It assigns increasing ids,
// honours ReplacesID and lets tests invoke actions.
type Recorder struct {
	mu      sync.Mutex
	nextID  uint32
	shown   map[uint32]Notification
	sent    []Notification
	closed  []uint32
	handler ActionHandler
}

func NewRecorder() *Recorder {
	return &Recorder{shown: make(map[uint32]Notification)}
}

func (r *Recorder) Notify(n Notification) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := n.ReplacesID
	if _, ok := r.shown[id]; !ok || id == 0 {
		r.nextID++
		id = r.nextID
	}
	r.shown[id] = n
	r.sent = append(r.sent, n)
	return id, nil
}

func (r *Recorder) Close(id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shown, id)
	r.closed = append(r.closed, id)
	return nil
}

func (r *Recorder) OnAction(h ActionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

func (r *Recorder) Shutdown() error { return nil }

// Invoke simulates the user clicking action key on notification id.
func (r *Recorder) Invoke(id uint32, key string) {
	r.mu.Lock()
	h := r.handler
	r.mu.Unlock()
	if h != nil {
		h(id, key)
	}
}

// Shown returns the notifications currently on screen.
func (r *Recorder) Shown() map[uint32]Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint32]Notification, len(r.shown))
	for id, n := range r.shown {
		out[id] = n
	}
	return out
}

// Sent returns every notification sent, in order.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Closed returns the ids passed to Close, in order.
func (r *Recorder) Closed() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.closed...)
}
