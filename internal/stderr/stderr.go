//go:build linux || darwin

// Package stderr captures output that audio libraries write straight to
// file descriptor 2, which would otherwise corrupt the TUI.
package stderr

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/llehouerou/mediaplayer/internal/logger"
)

const bufferSize = 100

// Capture redirects fd 2 into a pipe until Stop is called.
type Capture struct {
	orig  int
	r, w  *os.File
	lines chan string
	done  chan struct{}
}

// Start begins capturing. The program can continue without capture when it
// fails; output then goes to the terminal as usual.
func Start() (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := unix.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{
		orig:  orig,
		r:     r,
		w:     w,
		lines: make(chan string, bufferSize),
		done:  make(chan struct{}),
	}
	go c.read()
	return c, nil
}

func (c *Capture) read() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		logger.Log.Warn().Str("line", line).Msg("captured stderr")
		select {
		case c.lines <- line:
		case <-c.done:
			return
		default:
			// Nobody is reading; the line is already in the log.
		}
	}
}

// Lines delivers captured lines. It is closed after Stop.
func (c *Capture) Lines() <-chan string {
	return c.lines
}

// WriteOriginal writes to the terminal's stderr, bypassing capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = unix.Write(c.orig, []byte(msg))
}

// Stop restores fd 2 and ends the capture.
func (c *Capture) Stop() {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	_ = unix.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = unix.Close(c.orig)
	c.w.Close()
	c.r.Close()
}
