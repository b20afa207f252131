// Package audiofocus arbitrates which client may play audio.
package audiofocus

import (
	"sync"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

// Requester classifies who asks for focus.
type Requester int

const (
	RequesterVoiceMessage Requester = iota
	RequesterMedia
	// RequesterCall cannot be displaced by other requesters.
	RequesterCall
)

func (r Requester) String() string {
	switch r {
	case RequesterVoiceMessage:
		return "voice_message"
	case RequesterMedia:
		return "media"
	case RequesterCall:
		return "call"
	default:
		return "unknown"
	}
}

// Arbiter grants and revokes audio focus for one client.
type Arbiter interface {
	// RequestFocus asks for focus. onFocusLost runs at most once, on its own
	// goroutine, when focus is taken away. It returns false when denied.
	RequestFocus(r Requester, onFocusLost func()) bool
	// ReleaseFocus gives focus back. No-op when this client does not hold it.
	ReleaseFocus()
}

type holder struct {
	client    *client
	requester Requester
	onLost    func()
}

// Manager is an in-process arbiter. Each client gets its own Arbiter; at most
// one client holds focus at a time.
type Manager struct {
	mu      sync.Mutex
	current *holder
}

func NewManager() *Manager {
	return &Manager{}
}

// Client returns a new Arbiter bound to this manager.
func (m *Manager) Client(name string) Arbiter {
	return &client{m: m, name: name}
}

// Holder returns the name of the client holding focus, or "".
func (m *Manager) Holder() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.client.name
}

// Interrupt revokes focus from the current holder, as an incoming external
// event would.
func (m *Manager) Interrupt() {
	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev != nil {
		logger.Log.Debug().Str("client", prev.client.name).Msg("audio focus interrupted")
		revoke(prev)
	}
}

func (m *Manager) request(c *client, r Requester, onLost func()) bool {
	m.mu.Lock()
	prev := m.current
	if prev != nil && prev.client != c && prev.requester == RequesterCall && r != RequesterCall {
		m.mu.Unlock()
		logger.Log.Debug().
			Str("client", c.name).
			Str("holder", prev.client.name).
			Msg("audio focus denied")
		return false
	}
	m.current = &holder{client: c, requester: r, onLost: onLost}
	m.mu.Unlock()

	if prev != nil && prev.client != c {
		logger.Log.Debug().
			Str("client", c.name).
			Str("previous", prev.client.name).
			Stringer("requester", r).
			Msg("audio focus transferred")
		revoke(prev)
	}
	return true
}

func (m *Manager) release(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.client == c {
		m.current = nil
	}
}

func revoke(h *holder) {
	if h.onLost != nil {
		go h.onLost()
	}
}

type client struct {
	m    *Manager
	name string
}

func (c *client) RequestFocus(r Requester, onFocusLost func()) bool {
	return c.m.request(c, r, onFocusLost)
}

func (c *client) ReleaseFocus() {
	c.m.release(c)
}

// Always grants focus and never revokes it.
type alwaysGranted struct{}

func (alwaysGranted) RequestFocus(Requester, func()) bool { return true }

func (alwaysGranted) ReleaseFocus() {}

// AlwaysGranted returns an Arbiter for hosts without focus arbitration.
func AlwaysGranted() Arbiter {
	return alwaysGranted{}
}
