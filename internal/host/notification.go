package host

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/llehouerou/mediaplayer/internal/logger"
	"github.com/llehouerou/mediaplayer/internal/notify"
)

// Importance of a notification channel.
type Importance int

const (
	ImportanceLow Importance = iota
	ImportanceDefault
	ImportanceHigh
)

func (i Importance) urgency() notify.Urgency {
	switch i {
	case ImportanceHigh:
		return notify.UrgencyCritical
	case ImportanceDefault:
		return notify.UrgencyNormal
	default:
		return notify.UrgencyLow
	}
}

// Channel groups notifications that share an importance.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
}

// NotificationAction is a button that sends Intent to the posting service.
type NotificationAction struct {
	Label  string
	Intent Intent
}

type Notification struct {
	ChannelID string
	Title     string
	Body      string
	Icon      string
	Actions   []NotificationAction
	// Ongoing notifications do not expire and survive action invocations.
	Ongoing  bool
	Category string
	// Session is the bus name of the media session backing this notification.
	Session string
}

type postKey struct {
	service string
	id      int
}

type posted struct {
	key     postKey
	actions map[string]Intent
}

// notificationManager maps service-local notification ids onto notifier ids
// and turns action invocations back into intents.
type notificationManager struct {
	notifier notify.Notifier
	deliver  func(service string, in Intent)

	mu       sync.Mutex
	channels map[string]Channel
	ids      map[postKey]uint32
	byID     map[uint32]posted
}

func newNotificationManager(n notify.Notifier, deliver func(string, Intent)) *notificationManager {
	m := &notificationManager{
		notifier: n,
		deliver:  deliver,
		channels: make(map[string]Channel),
		ids:      make(map[postKey]uint32),
		byID:     make(map[uint32]posted),
	}
	n.OnAction(m.onAction)
	return m
}

// createChannel is idempotent; importance is fixed by the first call.
func (m *notificationManager) createChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.channels[ch.ID]; ok {
		ch.Importance = existing.Importance
	}
	m.channels[ch.ID] = ch
}

func (m *notificationManager) post(service string, id int, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[n.ChannelID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, n.ChannelID)
	}

	key := postKey{service: service, id: id}
	out := notify.Notification{
		Title:      n.Title,
		Body:       n.Body,
		Icon:       n.Icon,
		Timeout:    -1,
		ReplacesID: m.ids[key],
		Urgency:    ch.Importance.urgency(),
		Resident:   n.Ongoing,
		Category:   n.Category,
		Session:    n.Session,
	}
	if n.Ongoing {
		out.Timeout = 0
	}

	actions := make(map[string]Intent, len(n.Actions))
	for i, a := range n.Actions {
		k := "action-" + strconv.Itoa(i)
		out.Actions = append(out.Actions, notify.Action{Key: k, Label: a.Label})
		actions[k] = a.Intent
	}

	nid, err := m.notifier.Notify(out)
	if err != nil {
		return err
	}
	if nid == 0 {
		// Notifications unavailable.
		return nil
	}

	if old, ok := m.ids[key]; ok && old != nid {
		delete(m.byID, old)
	}
	m.ids[key] = nid
	m.byID[nid] = posted{key: key, actions: actions}
	return nil
}

func (m *notificationManager) cancel(service string, id int) {
	m.mu.Lock()
	key := postKey{service: service, id: id}
	nid, ok := m.ids[key]
	delete(m.ids, key)
	delete(m.byID, nid)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := m.notifier.Close(nid); err != nil {
		logger.Log.Warn().Err(err).Str("service", service).Msg("could not close notification")
	}
}

func (m *notificationManager) cancelAll() {
	m.mu.Lock()
	keys := make([]postKey, 0, len(m.ids))
	for k := range m.ids {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	for _, k := range keys {
		m.cancel(k.service, k.id)
	}
}

func (m *notificationManager) onAction(nid uint32, key string) {
	m.mu.Lock()
	p, ok := m.byID[nid]
	var in Intent
	if ok {
		in, ok = p.actions[key]
	}
	m.mu.Unlock()

	if !ok {
		logger.Log.Debug().Uint32("id", nid).Str("key", key).Msg("ignoring unknown notification action")
		return
	}
	m.deliver(p.key.service, in)
}
