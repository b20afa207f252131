// Package host runs named long-lived services that receive intents, may
// promote themselves to the foreground and post notifications whose actions
// route back to them as intents.
package host

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/notify"
)

var (
	ErrUnknownService    = errors.New("unknown service")
	ErrNotRunning        = errors.New("service not running")
	ErrMailboxFull       = errors.New("service mailbox full")
	ErrClosed            = errors.New("host closed")
	ErrUnknownChannel    = errors.New("unknown notification channel")
	ErrForegroundTimeout = errors.New("service did not call StartForeground in time")
)

const (
	defaultForegroundDeadline = 5 * time.Second
	defaultMailboxSize        = 32
)

// Service is a long-lived component managed by the host. All three methods
// run on the instance's own goroutine, in order.
type Service interface {
	OnCreate(ctx Context)
	OnStartCommand(in Intent)
	OnDestroy()
}

// Factory creates a fresh Service instance for each start after a stop.
type Factory func() Service

type Config struct {
	// ForegroundDeadline is how long a service started with
	// StartForegroundService has to call StartForeground.
	ForegroundDeadline time.Duration
	MailboxSize        int
}

type Host struct {
	cfg      Config
	notifier notify.Notifier

	mu        sync.Mutex
	closed    bool
	factories map[string]Factory
	running   map[string]*instance
	stopping  map[string]*instance
	wg        sync.WaitGroup

	notifications *notificationManager
}

// New returns a host posting notifications through n.
func New(n notify.Notifier, cfg Config) *Host {
	if cfg.ForegroundDeadline <= 0 {
		cfg.ForegroundDeadline = defaultForegroundDeadline
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = defaultMailboxSize
	}

	h := &Host{
		cfg:       cfg,
		notifier:  n,
		factories: make(map[string]Factory),
		running:   make(map[string]*instance),
		stopping:  make(map[string]*instance),
	}
	h.notifications = newNotificationManager(n, h.deliverAction)
	return h
}

// Register makes a service startable by name. Registering a name twice
// replaces the factory for future instances.
func (h *Host) Register(name string, f Factory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.factories[name] = f
}

// StartService delivers in to the named service, creating it if needed.
func (h *Host) StartService(name string, in Intent) error {
	return h.start(name, in, false)
}

// StartForegroundService is StartService for a service that must call
// StartForeground within the foreground deadline or be stopped.
func (h *Host) StartForegroundService(name string, in Intent) error {
	return h.start(name, in, true)
}

func (h *Host) start(name string, in Intent, foreground bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}

	inst := h.running[name]
	if inst == nil {
		f, ok := h.factories[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownService, name)
		}
		inst = h.launchLocked(name, f())
	}

	if foreground {
		inst.armDeadline(h.cfg.ForegroundDeadline)
	}

	return inst.post(in)
}

// Deliver hands in to the running instance of the named service. Unlike
// StartService it never creates one: a service that is stopped or stopping
// fails with ErrNotRunning.
func (h *Host) Deliver(name string, in Intent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	inst := h.running[name]
	if inst == nil {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}
	return inst.post(in)
}

func (h *Host) launchLocked(name string, svc Service) *instance {
	inst := &instance{
		h:       h,
		name:    name,
		svc:     svc,
		mailbox: make(chan Intent, h.cfg.MailboxSize),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	prev := h.stopping[name]
	h.running[name] = inst

	logger.Log.Debug().Str("service", name).Msg("starting service")
	h.wg.Add(1)
	go inst.run(prev)
	return inst
}

// StopService stops the named service. Pending intents are dropped.
// Stopping a service that is not running is a no-op.
func (h *Host) StopService(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if inst := h.running[name]; inst != nil {
		h.stopLocked(inst)
	}
	return nil
}

func (h *Host) stopLocked(inst *instance) {
	if h.running[inst.name] == inst {
		delete(h.running, inst.name)
		h.stopping[inst.name] = inst
	}
	inst.requestStop()
}

func (h *Host) stopInstance(inst *instance) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked(inst)
}

// Running reports whether an instance of the named service is alive.
func (h *Host) Running(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running[name] != nil
}

// Close stops every service, waits for them to finish and removes their
// notifications. Further calls fail with ErrClosed.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, inst := range h.running {
		h.stopLocked(inst)
	}
	h.mu.Unlock()

	h.wg.Wait()
	h.notifications.cancelAll()
	return nil
}

func (h *Host) finished(inst *instance) {
	h.mu.Lock()
	if h.running[inst.name] == inst {
		delete(h.running, inst.name)
	}
	if h.stopping[inst.name] == inst {
		delete(h.stopping, inst.name)
	}
	h.mu.Unlock()
	h.wg.Done()
}

// deliverAction routes a notification action back to its service. Actions
// from a notification that outlived its service are dropped.
func (h *Host) deliverAction(service string, in Intent) {
	err := h.Deliver(service, in)
	if errors.Is(err, ErrNotRunning) {
		logger.Log.Debug().Str("service", service).Str("action", in.Action).Msg("notification action for stopped service")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).
			Str("service", service).
			Str("action", in.Action).
			Msg("could not deliver notification action")
	}
}
