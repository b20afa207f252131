// Package playback owns a single playback session: it drives the player,
// publishes state snapshots, polls the position while playing and mirrors
// the state to the background service when background mode is on.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llehouerou/mediaplayer/internal/audiofocus"
	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/mediaservice"
	"github.com/llehouerou/mediaplayer/internal/player"
)

var (
	ErrTimeout = errors.New("media not ready in time")
	ErrClosed  = errors.New("controller closed")
)

// Background is the background playback service as seen by the controller.
type Background interface {
	Register(cb mediaservice.Callback) *mediaservice.Registration
	Start(title string)
	Stop()
	UpdateState(u mediaservice.Update)
}

type noBackground struct{}

func (noBackground) Register(mediaservice.Callback) *mediaservice.Registration { return nil }
func (noBackground) Start(string)                                             {}
func (noBackground) Stop()                                                    {}
func (noBackground) UpdateState(mediaservice.Update)                          {}

// Controller serializes every mutation onto one goroutine. Public methods
// wait for their task; player, focus and service callbacks are posted.
type Controller struct {
	player player.Interface
	focus  audiofocus.Arbiter
	bg     Background
	cfg    Config
	tasks  *taskQueue

	// Owned by the task goroutine.
	state    State
	title    string
	enabled  bool
	reg      *mediaservice.Registration
	pollGen  uint64
	pollStop chan struct{}

	background atomic.Bool

	mu       sync.Mutex
	snapshot State
	subs     []*Subscription
	closed   bool
}

// New returns a controller that takes ownership of p. A nil focus always
// grants focus and a nil bg disables background playback.
func New(p player.Interface, focus audiofocus.Arbiter, bg Background, cfg Config) *Controller {
	if focus == nil {
		focus = audiofocus.AlwaysGranted()
	}
	if bg == nil {
		bg = noBackground{}
	}
	c := &Controller{
		player: p,
		focus:  focus,
		bg:     bg,
		cfg:    cfg.withDefaults(),
		tasks:  newTaskQueue(),
	}
	p.AddListener(listener{c})
	return c
}

// do runs fn on the task goroutine and waits for it.
func (c *Controller) do(fn func()) error {
	done := make(chan struct{})
	if !c.tasks.post(func() {
		defer close(done)
		fn()
	}) {
		return ErrClosed
	}

	select {
	case <-done:
		return nil
	case <-c.tasks.done:
		select {
		case <-done:
			return nil
		default:
			return ErrClosed
		}
	}
}

// State returns the latest snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Subscribe returns a subscription that starts with the latest snapshot.
// After Close the subscription is already done.
func (c *Controller) Subscribe() *Subscription {
	sub := newSubscription(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	sub.send(c.snapshot)
	if c.closed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

// subscribeFresh registers a subscription without replay. Must run on the
// task goroutine so that it sees every snapshot published after the
// current task.
func (c *Controller) subscribeFresh() *Subscription {
	sub := newSubscription(c)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, sub)
	return sub
}

func (c *Controller) removeSubscription(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// SetMedia stops the current playback, loads m and waits until the player
// reports it ready. A later SetMedia replaces the item this call waits for.
func (c *Controller) SetMedia(ctx context.Context, m Media) (State, error) {
	var sub *Subscription
	err := c.do(func() {
		c.title = m.Title
		sub = c.subscribeFresh()
		c.player.Pause()
		c.player.ClearItems()
		c.player.SetItem(player.Item{
			URI:      m.URI,
			MediaID:  m.MediaID,
			MimeType: m.MimeType,
		}, m.StartPosition)
		c.player.Prepare()
	})
	if err != nil {
		return State{}, err
	}
	defer sub.Unsubscribe()

	timer := time.NewTimer(c.cfg.ReadyTimeout)
	defer timer.Stop()

	for {
		select {
		case st := <-sub.States:
			if st.IsReady && st.MediaID == m.MediaID {
				return st, nil
			}
		case <-sub.Done:
			return State{}, ErrClosed
		case <-timer.C:
			logger.Log.Warn().Str("media_id", m.MediaID).Dur("timeout", c.cfg.ReadyTimeout).Msg("media not ready")
			return State{}, fmt.Errorf("%w: %s after %v", ErrTimeout, m.MediaID, c.cfg.ReadyTimeout)
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
}

// Play requests audio focus and starts playback, replaying from the start
// when the current item has ended.
func (c *Controller) Play() error {
	return c.do(c.play)
}

// Pause pauses playback. Audio focus is released once the player stops.
func (c *Controller) Pause() error {
	return c.do(c.pause)
}

// SeekTo moves the playhead. The new position is visible in State as soon
// as SeekTo returns.
func (c *Controller) SeekTo(pos time.Duration) error {
	return c.do(func() { c.seekTo(pos) })
}

// EnableBackgroundPlayback starts the background service and routes its
// commands to this controller. Enabling twice is the same as enabling once.
func (c *Controller) EnableBackgroundPlayback() error {
	return c.do(c.enable)
}

// DisableBackgroundPlayback stops the background service. Disabling twice
// is the same as disabling once.
func (c *Controller) DisableBackgroundPlayback() error {
	return c.do(c.disable)
}

// IsBackgroundPlaybackEnabled reports whether background mode is on.
func (c *Controller) IsBackgroundPlaybackEnabled() bool {
	return c.background.Load()
}

// Close disables background playback, releases the player and ends every
// subscription. Later calls return ErrClosed.
func (c *Controller) Close() error {
	err := c.do(func() {
		c.disable()
		c.stopPolling()
		c.focus.ReleaseFocus()
		c.player.Release()
		c.tasks.shutdown()
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	logger.Log.Debug().Msg("playback controller closed")
	return nil
}

func (c *Controller) play() {
	if !c.focus.RequestFocus(audiofocus.RequesterVoiceMessage, c.onFocusLost) {
		logger.Log.Debug().Msg("audio focus denied, playing anyway")
	}

	if c.player.PlaybackState() == player.Ended {
		if it := c.player.CurrentItem(); it != nil {
			c.player.SetItem(*it, 0)
			c.player.Prepare()
		}
	}
	c.player.Play()
}

func (c *Controller) pause() {
	c.player.Pause()
}

func (c *Controller) seekTo(pos time.Duration) {
	c.player.SeekTo(pos)
	next := c.state
	next.CurrentPosition = c.player.Position()
	c.commit(next)
	c.push()
}

func (c *Controller) onFocusLost() {
	c.tasks.post(func() {
		if c.player.IsPlaying() {
			logger.Log.Debug().Msg("audio focus lost, pausing")
			c.player.Pause()
		}
	})
}

func (c *Controller) enable() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.background.Store(true)
	c.reg = c.bg.Register(serviceCallback{c})
	c.bg.Start(c.title)
	c.push()
}

func (c *Controller) disable() {
	if !c.enabled {
		return
	}
	c.enabled = false
	c.background.Store(false)
	c.reg.Unregister()
	c.reg = nil
	c.bg.Stop()
}

// push mirrors the current state to the background service.
func (c *Controller) push() {
	if !c.enabled {
		return
	}
	u := mediaservice.Update{
		IsPlaying: c.state.IsPlaying,
		Position:  c.state.CurrentPosition,
		Title:     c.title,
	}
	if c.state.DurationKnown {
		u.Duration = c.state.Duration
	}
	c.bg.UpdateState(u)
}

// refreshed returns s with the player's position and duration.
func (c *Controller) refreshed(s State) State {
	s.CurrentPosition = c.player.Position()
	s.Duration, s.DurationKnown = c.player.Duration()
	if !s.DurationKnown {
		s.Duration = 0
	}
	return s
}

// commit replaces the state, publishes it and runs the side effects of a
// playing transition.
func (c *Controller) commit(next State) {
	if next.IsEnded {
		next.IsPlaying = false
	}
	prev := c.state
	if next == prev {
		return
	}
	c.state = next
	c.publish(next)

	if prev.IsPlaying == next.IsPlaying {
		return
	}
	if next.IsPlaying {
		c.startPolling()
	} else {
		c.stopPolling()
		c.focus.ReleaseFocus()
	}
	c.push()
}

func (c *Controller) publish(st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = st
	for _, sub := range c.subs {
		sub.send(st)
	}
}

func (c *Controller) startPolling() {
	c.stopPolling()
	c.pollGen++
	stop := make(chan struct{})
	c.pollStop = stop
	go c.poll(c.pollGen, stop)
}

func (c *Controller) stopPolling() {
	if c.pollStop == nil {
		return
	}
	close(c.pollStop)
	c.pollStop = nil
	c.pollGen++
}

func (c *Controller) poll(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.tasks.post(func() { c.pollTick(gen) }) {
				return
			}
		}
	}
}

// pollTick discards ticks from a poller that has since been stopped.
func (c *Controller) pollTick(gen uint64) {
	if gen != c.pollGen || !c.state.IsPlaying {
		return
	}
	next := c.state
	next.CurrentPosition = c.player.Position()
	c.commit(next)
}

func (c *Controller) onIsPlayingChanged(playing bool) {
	next := c.refreshed(c.state)
	next.IsPlaying = playing
	c.commit(next)
}

func (c *Controller) onItemTransition(item *player.Item) {
	next := c.refreshed(c.state)
	next.MediaID = ""
	if item != nil {
		next.MediaID = item.MediaID
	}
	c.commit(next)
}

func (c *Controller) onPlaybackStateChanged(s player.State) {
	next := c.refreshed(c.state)
	next.IsReady = s == player.Ready
	next.IsEnded = s == player.Ended
	c.commit(next)

	if s == player.Ended && c.enabled {
		logger.Log.Debug().Str("media_id", c.state.MediaID).Msg("playback ended, leaving background mode")
		c.disable()
	}
}

// listener posts player events onto the task goroutine.
type listener struct{ c *Controller }

func (l listener) OnIsPlayingChanged(playing bool) {
	l.c.tasks.post(func() { l.c.onIsPlayingChanged(playing) })
}

func (l listener) OnItemTransition(item *player.Item) {
	l.c.tasks.post(func() { l.c.onItemTransition(item) })
}

func (l listener) OnPlaybackStateChanged(s player.State) {
	l.c.tasks.post(func() { l.c.onPlaybackStateChanged(s) })
}

// serviceCallback receives commands from the background service.
type serviceCallback struct{ c *Controller }

func (s serviceCallback) OnPlay()  { s.c.tasks.post(s.c.play) }
func (s serviceCallback) OnPause() { s.c.tasks.post(s.c.pause) }

func (s serviceCallback) OnStop() {
	s.c.tasks.post(func() {
		s.c.pause()
		s.c.disable()
	})
}

func (s serviceCallback) OnSeekTo(pos time.Duration) {
	s.c.tasks.post(func() { s.c.seekTo(pos) })
}
