//go:build !linux

package notify

// New returns a no-op notifier on non-Linux platforms.
func New(string) (Notifier, error) {
	return NewStub(), nil
}
