package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

// Context is the service's handle on the host.
type Context interface {
	// Name is the name the service was started under.
	Name() string
	// StartForeground posts n under id and marks the service as foreground.
	StartForeground(id int, n Notification) error
	// StopForeground leaves the foreground, removing the notification if asked.
	StopForeground(remove bool)
	CreateNotificationChannel(ch Channel)
	// Notify posts or replaces the notification with this id.
	Notify(id int, n Notification) error
	// Cancel removes the notification with this id.
	Cancel(id int)
	// StopSelf stops this instance once the current callback returns.
	StopSelf()
}

// instance is one running service: a goroutine draining a bounded mailbox.
type instance struct {
	h       *Host
	name    string
	svc     Service
	mailbox chan Intent
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu         sync.Mutex
	foreground bool
	fgID       int
	deadline   *time.Timer
}

func (i *instance) run(prev *instance) {
	defer i.h.finished(i)
	defer close(i.done)

	// A restart waits for the previous instance to finish tearing down.
	if prev != nil {
		<-prev.done
	}

	i.svc.OnCreate(i)
	for {
		select {
		case <-i.stop:
			i.destroy()
			return
		default:
		}

		select {
		case <-i.stop:
			i.destroy()
			return
		case in := <-i.mailbox:
			i.svc.OnStartCommand(in)
		}
	}
}

func (i *instance) destroy() {
	i.svc.OnDestroy()

	i.mu.Lock()
	if i.deadline != nil {
		i.deadline.Stop()
	}
	fg, id := i.foreground, i.fgID
	i.foreground = false
	i.mu.Unlock()

	if fg {
		i.h.notifications.cancel(i.name, id)
	}
	logger.Log.Debug().Str("service", i.name).Msg("service destroyed")
}

// post queues in without blocking. Callers hold the host lock.
func (i *instance) post(in Intent) error {
	select {
	case i.mailbox <- in:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrMailboxFull, i.name)
	}
}

func (i *instance) requestStop() {
	i.once.Do(func() { close(i.stop) })
}

func (i *instance) armDeadline(d time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.foreground || i.deadline != nil {
		return
	}
	i.deadline = time.AfterFunc(d, func() {
		i.mu.Lock()
		fg := i.foreground
		i.mu.Unlock()
		if fg {
			return
		}
		logger.Log.Error().Err(ErrForegroundTimeout).
			Str("service", i.name).
			Dur("deadline", d).
			Msg("stopping service")
		i.h.stopInstance(i)
	})
}

func (i *instance) Name() string { return i.name }

func (i *instance) StartForeground(id int, n Notification) error {
	if err := i.h.notifications.post(i.name, id, n); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.foreground = true
	i.fgID = id
	if i.deadline != nil {
		i.deadline.Stop()
		i.deadline = nil
	}
	return nil
}

func (i *instance) StopForeground(remove bool) {
	i.mu.Lock()
	fg, id := i.foreground, i.fgID
	i.foreground = false
	i.mu.Unlock()

	if fg && remove {
		i.h.notifications.cancel(i.name, id)
	}
}

func (i *instance) CreateNotificationChannel(ch Channel) {
	i.h.notifications.createChannel(ch)
}

func (i *instance) Notify(id int, n Notification) error {
	return i.h.notifications.post(i.name, id, n)
}

func (i *instance) Cancel(id int) {
	i.h.notifications.cancel(i.name, id)
}

func (i *instance) StopSelf() {
	i.h.stopInstance(i)
}
