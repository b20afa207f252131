package notify

// stubNotifier is used when D-Bus is unavailable or notifications are disabled.
type stubNotifier struct{}

// NewStub returns a Notifier that drops everything.
func NewStub() Notifier {
	return stubNotifier{}
}

func (stubNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (stubNotifier) Close(uint32) error { return nil }

func (stubNotifier) OnAction(ActionHandler) {}

func (stubNotifier) Shutdown() error { return nil }
