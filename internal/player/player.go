package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

// Player is the beep-backed Interface implementation. Loading happens on a
// background goroutine; all listener callbacks run outside the player lock.
//
// Lock order: p.mu, then the output lock.
type Player struct {
	mu        sync.Mutex
	out       output
	listeners []Listener

	item          *Item
	start         time.Duration
	state         State
	playing       bool
	playWhenReady bool
	released      bool

	src    *source
	ctrl   *beep.Ctrl
	queued bool   // ctrl is currently handed to the output
	gen    uint64 // bumped on every item change
}

// New returns a Player that plays through the system speaker.
func New() *Player {
	return newPlayer(speakerOutput{})
}

func newPlayer(out output) *Player {
	return &Player{out: out, state: Idle}
}

func (p *Player) emit(events []event) {
	if len(events) == 0 {
		return
	}
	p.mu.Lock()
	listeners := append([]Listener(nil), p.listeners...)
	p.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			e(l)
		}
	}
}

func (p *Player) setStateLocked(s State) []event {
	var events []event
	if p.state != s {
		p.state = s
		events = append(events, stateEvent(s))
	}
	if s != Ready && p.playing {
		p.pauseOutputLocked()
		p.playing = false
		events = append([]event{playingEvent(false)}, events...)
	}
	if s == Ready && p.playWhenReady && !p.playing {
		p.startLocked()
		p.playing = true
		events = append(events, playingEvent(true))
	}
	return events
}

func (p *Player) startLocked() {
	if p.ctrl == nil {
		return
	}
	p.out.lock()
	p.ctrl.Paused = false
	p.out.unlock()

	if p.queued {
		return
	}
	gen := p.gen
	p.queued = true
	p.out.play(beep.Seq(p.ctrl, beep.Callback(func() {
		// Runs under the output lock; hop off before touching p.mu.
		go p.onStreamEnd(gen)
	})))
}

func (p *Player) pauseOutputLocked() {
	if p.ctrl == nil {
		return
	}
	p.out.lock()
	p.ctrl.Paused = true
	p.out.unlock()
}

// resetLocked drops the loaded stream and returns to Idle.
func (p *Player) resetLocked() []event {
	p.gen++
	if p.queued {
		p.out.clear()
		p.queued = false
	}
	events := p.setStateLocked(Idle)
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	p.ctrl = nil
	return events
}

func (p *Player) SetItem(item Item, start time.Duration) {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	events := p.resetLocked()
	it := item
	p.item = &it
	p.start = max(start, 0)
	events = append(events, itemEvent(p.item))
	p.mu.Unlock()

	p.emit(events)
}

func (p *Player) Prepare() {
	p.mu.Lock()
	if p.released || p.item == nil || p.state != Idle {
		p.mu.Unlock()
		return
	}
	gen := p.gen
	item := *p.item
	events := p.setStateLocked(Buffering)
	p.mu.Unlock()

	p.emit(events)
	go p.load(gen, item)
}

func (p *Player) load(gen uint64, item Item) {
	src, err := openSource(item)
	if err != nil {
		logger.Log.Warn().Err(err).Str("uri", item.URI).Msg("could not load media item")
		p.fail(gen)
		return
	}

	p.mu.Lock()
	if p.gen != gen || p.released {
		p.mu.Unlock()
		src.Close()
		return
	}

	if p.start > 0 {
		n := min(src.format.SampleRate.N(p.start), src.streamer.Len())
		if err := src.streamer.Seek(n); err != nil {
			logger.Log.Debug().Err(err).Dur("position", p.start).Msg("initial seek failed")
		}
	}

	rate, err := p.out.init(src.format.SampleRate)
	if err != nil {
		p.mu.Unlock()
		src.Close()
		logger.Log.Error().Err(err).Msg("could not initialize audio output")
		p.fail(gen)
		return
	}

	var s beep.Streamer = src.streamer
	if rate != src.format.SampleRate {
		s = beep.Resample(4, src.format.SampleRate, rate, s)
	}

	p.src = src
	p.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	events := p.setStateLocked(Ready)
	p.mu.Unlock()

	logger.Log.Debug().
		Str("media_id", item.MediaID).
		Dur("duration", src.format.SampleRate.D(src.streamer.Len())).
		Msg("media item ready")
	p.emit(events)
}

func (p *Player) fail(gen uint64) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	events := p.setStateLocked(Idle)
	p.mu.Unlock()
	p.emit(events)
}

func (p *Player) onStreamEnd(gen uint64) {
	p.mu.Lock()
	if p.gen != gen || p.state != Ready {
		p.mu.Unlock()
		return
	}
	p.queued = false
	events := p.setStateLocked(Ended)
	p.mu.Unlock()
	p.emit(events)
}

func (p *Player) Play() {
	p.mu.Lock()
	p.playWhenReady = true
	var events []event
	if p.state == Ready && !p.playing {
		p.startLocked()
		p.playing = true
		events = append(events, playingEvent(true))
	}
	p.mu.Unlock()
	p.emit(events)
}

func (p *Player) Pause() {
	p.mu.Lock()
	p.playWhenReady = false
	var events []event
	if p.playing {
		p.pauseOutputLocked()
		p.playing = false
		events = append(events, playingEvent(false))
	}
	p.mu.Unlock()
	p.emit(events)
}

func (p *Player) SeekTo(position time.Duration) {
	position = max(position, 0)

	p.mu.Lock()
	if p.src == nil {
		// Not loaded yet: applied once the stream opens.
		p.start = position
		p.mu.Unlock()
		return
	}

	n := min(p.src.format.SampleRate.N(position), p.src.streamer.Len())
	p.out.lock()
	err := p.src.streamer.Seek(n)
	p.out.unlock()
	if err != nil {
		logger.Log.Warn().Err(err).Dur("position", position).Msg("seek failed")
	}

	var events []event
	if p.state == Ended {
		events = p.setStateLocked(Ready)
	}
	p.mu.Unlock()
	p.emit(events)
}

func (p *Player) ClearItems() {
	p.mu.Lock()
	events := p.resetLocked()
	if p.item != nil {
		p.item = nil
		events = append(events, itemEvent(nil))
	}
	p.start = 0
	p.mu.Unlock()
	p.emit(events)
}

func (p *Player) CurrentItem() *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.item == nil {
		return nil
	}
	cp := *p.item
	return &cp
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		if p.item == nil {
			return 0
		}
		return p.start
	}
	p.out.lock()
	n := p.src.streamer.Position()
	p.out.unlock()
	return p.src.format.SampleRate.D(n)
}

func (p *Player) Duration() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil || p.src.streamer.Len() <= 0 {
		return 0, false
	}
	return p.src.format.SampleRate.D(p.src.streamer.Len()), true
}

func (p *Player) PlaybackState() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) AddListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Release stops output and drops all listeners. The player is unusable afterwards.
func (p *Player) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	p.playWhenReady = false
	p.resetLocked()
	p.item = nil
	p.listeners = nil
}
