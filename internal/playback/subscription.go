package playback

import "sync"

const eventBufferSize = 16

// Subscription delivers state snapshots to one subscriber. It starts with
// the latest snapshot. When the subscriber falls behind, the oldest pending
// snapshot is dropped so publication never blocks.
type Subscription struct {
	States <-chan State
	Done   <-chan struct{}

	c *Controller

	mu      sync.Mutex
	stateCh chan State
	doneCh  chan struct{}
	closed  bool
}

func newSubscription(c *Controller) *Subscription {
	s := &Subscription{
		c:       c,
		stateCh: make(chan State, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.States = s.stateCh
	s.Done = s.doneCh
	return s
}

// Unsubscribe stops delivery and closes Done. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.c != nil {
		s.c.removeSubscription(s)
	}
	s.close()
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.doneCh)
}

// send delivers st without blocking, dropping the oldest pending snapshot
// when the buffer is full.
func (s *Subscription) send(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.stateCh <- st:
			return
		default:
		}
		select {
		case <-s.stateCh:
		default:
		}
	}
}
