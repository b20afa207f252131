//go:build linux

package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
	signalActionInvoked = dbusNotifyInterface + ".ActionInvoked"
)

// dbusNotifier sends notifications via D-Bus.
type dbusNotifier struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	appName string
	signals chan *dbus.Signal

	mu      sync.Mutex
	handler ActionHandler
}

// New creates a Notifier that sends desktop notifications via D-Bus.
// Returns a no-op notifier if D-Bus is unavailable.
func New(appName string) (Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		logger.Log.Info().Err(err).Msg("D-Bus unavailable, notifications disabled")
		return NewStub(), nil //nolint:nilerr // graceful fallback when D-Bus unavailable
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(dbusNotifyInterface),
		dbus.WithMatchMember("ActionInvoked"),
	); err != nil {
		conn.Close()
		return nil, err
	}

	n := &dbusNotifier{
		conn:    conn,
		obj:     conn.Object(dbusNotifyDest, dbusNotifyPath),
		appName: appName,
		signals: make(chan *dbus.Signal, 16),
	}
	conn.Signal(n.signals)
	go n.listen()

	return n, nil
}

func (n *dbusNotifier) listen() {
	for sig := range n.signals {
		if sig.Name != signalActionInvoked || len(sig.Body) != 2 {
			continue
		}
		id, ok1 := sig.Body[0].(uint32)
		key, ok2 := sig.Body[1].(string)
		if !ok1 || !ok2 {
			continue
		}

		n.mu.Lock()
		h := n.handler
		n.mu.Unlock()
		if h != nil {
			h(id, key)
		}
	}
}

// Notify sends a notification via D-Bus.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	// D-Bus Notify method signature:
	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		n.appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		actionList(notif.Actions),
		buildHints(notif, n.appName),
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

func (n *dbusNotifier) OnAction(h ActionHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = h
}

// Shutdown closes the private bus connection, which also ends the signal loop.
func (n *dbusNotifier) Shutdown() error {
	n.conn.RemoveSignal(n.signals)
	close(n.signals)
	return n.conn.Close()
}

func buildHints(notif Notification, appName string) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
	}
	if notif.Resident {
		hints["resident"] = dbus.MakeVariant(true)
	}
	if notif.Category != "" {
		hints["category"] = dbus.MakeVariant(notif.Category)
	}
	if notif.Session != "" {
		hints["x-mpris-bus-name"] = dbus.MakeVariant(notif.Session)
	}
	return hints
}
