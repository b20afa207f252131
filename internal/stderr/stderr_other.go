//go:build !linux && !darwin

package stderr

import "os"

// Capture is a no-op where audio libraries do not write to fd 2.
type Capture struct{}

func Start() (*Capture, error) {
	return &Capture{}, nil
}

// Lines returns a channel that never delivers.
func (c *Capture) Lines() <-chan string {
	return nil
}

func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

func (c *Capture) Stop() {}
