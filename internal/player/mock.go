// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a test double for Player. It is safe for concurrent use and emits
// listener events synchronously, after releasing its lock.
type Mock struct {
	mu sync.Mutex

	item          *Item
	state         State
	playing       bool
	playWhenReady bool
	position      time.Duration
	duration      time.Duration
	durationKnown bool
	autoReady     bool
	released      bool

	listeners    []Listener
	setItemCalls []Item
	seekCalls    []time.Duration
	playCalls    int
	pauseCalls   int
}

// NewMock creates a new mock player for testing. Prepare reaches Ready
// immediately unless SetAutoReady(false) is called.
func NewMock() *Mock {
	return &Mock{
		state:     Idle,
		autoReady: true,
	}
}

type event func(l Listener)

func (m *Mock) emit(events []event) {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			e(l)
		}
	}
}

func playingEvent(v bool) event { return func(l Listener) { l.OnIsPlayingChanged(v) } }

func stateEvent(s State) event { return func(l Listener) { l.OnPlaybackStateChanged(s) } }

func itemEvent(it *Item) event {
	return func(l Listener) {
		if it == nil {
			l.OnItemTransition(nil)
			return
		}
		cp := *it
		l.OnItemTransition(&cp)
	}
}

// setStateLocked changes the state and returns the events it produced.
func (m *Mock) setStateLocked(s State) []event {
	var events []event
	if m.state != s {
		m.state = s
		events = append(events, stateEvent(s))
	}
	if s != Ready && m.playing {
		m.playing = false
		events = append([]event{playingEvent(false)}, events...)
	}
	if s == Ready && m.playWhenReady && !m.playing {
		m.playing = true
		events = append(events, playingEvent(true))
	}
	return events
}

func (m *Mock) SetItem(item Item, start time.Duration) {
	m.mu.Lock()
	m.setItemCalls = append(m.setItemCalls, item)
	it := item
	m.item = &it
	m.position = start
	m.durationKnown = false
	events := m.setStateLocked(Idle)
	events = append(events, itemEvent(m.item))
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) Prepare() {
	m.mu.Lock()
	if m.item == nil {
		m.mu.Unlock()
		return
	}
	events := m.setStateLocked(Buffering)
	if m.autoReady {
		m.durationKnown = m.duration > 0
		events = append(events, m.setStateLocked(Ready)...)
	}
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) Play() {
	m.mu.Lock()
	m.playCalls++
	m.playWhenReady = true
	var events []event
	if m.state == Ready && !m.playing {
		m.playing = true
		events = append(events, playingEvent(true))
	}
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) Pause() {
	m.mu.Lock()
	m.pauseCalls++
	m.playWhenReady = false
	var events []event
	if m.playing {
		m.playing = false
		events = append(events, playingEvent(false))
	}
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) SeekTo(position time.Duration) {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, position)
	m.position = max(position, 0)
	var events []event
	if m.state == Ended {
		events = m.setStateLocked(Ready)
	}
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) ClearItems() {
	m.mu.Lock()
	hadItem := m.item != nil
	m.item = nil
	m.position = 0
	m.durationKnown = false
	events := m.setStateLocked(Idle)
	if hadItem {
		events = append(events, itemEvent(nil))
	}
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) CurrentItem() *Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.item == nil {
		return nil
	}
	cp := *m.item
	return &cp
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration, m.durationKnown
}

func (m *Mock) PlaybackState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = true
	m.playing = false
	m.listeners = nil
}

// Test helpers

// SetAutoReady controls whether Prepare reaches Ready on its own.
func (m *Mock) SetAutoReady(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReady = v
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// Advance moves the position forward as if d of audio had been played.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position += d
}

// SimulateReady finishes a pending Prepare.
func (m *Mock) SimulateReady() {
	m.mu.Lock()
	if m.item == nil {
		m.mu.Unlock()
		return
	}
	m.durationKnown = m.duration > 0
	events := m.setStateLocked(Ready)
	m.mu.Unlock()

	m.emit(events)
}

// SimulateEnded simulates the end of the current item.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	if m.durationKnown {
		m.position = m.duration
	}
	events := m.setStateLocked(Ended)
	m.mu.Unlock()

	m.emit(events)
}

func (m *Mock) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

func (m *Mock) SetItemCalls() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.setItemCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
