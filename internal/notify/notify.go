// Package notify provides desktop notifications via D-Bus.
package notify

// Urgency is the freedesktop notification urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Action is a button on a notification. Key is reported back when invoked.
type Action struct {
	Key   string
	Label string
}

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
	Actions    []Action
	Resident   bool   // keep after an action is invoked
	Category   string // e.g. "x-media.playback"
	Session    string // MPRIS bus name of the media session, if any
}

// ActionHandler receives action invocations: the notification id and action key.
type ActionHandler func(id uint32, key string)

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
	// OnAction sets the handler for action invocations, replacing any previous one.
	OnAction(h ActionHandler)
	// Shutdown releases the connection to the notification server.
	Shutdown() error
}

// actionList flattens actions into the key/label pairs D-Bus expects.
func actionList(actions []Action) []string {
	out := make([]string, 0, len(actions)*2)
	for _, a := range actions {
		out = append(out, a.Key, a.Label)
	}
	return out
}
