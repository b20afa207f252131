//go:build linux || darwin

package stderr

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_Lines(t *testing.T) {
	c, err := Start()
	require.NoError(t, err)
	defer c.Stop()

	_, err = os.Stderr.WriteString("ALSA lib pcm.c: underrun occurred\n\n")
	require.NoError(t, err)

	select {
	case line := <-c.Lines():
		assert.Equal(t, "ALSA lib pcm.c: underrun occurred", line)
	case <-time.After(time.Second):
		t.Fatal("captured line not delivered")
	}
}

func TestCapture_StopRestoresAndCloses(t *testing.T) {
	c, err := Start()
	require.NoError(t, err)

	c.Stop()
	c.Stop()

	select {
	case _, ok := <-c.Lines():
		assert.False(t, ok, "no line was written")
	case <-time.After(time.Second):
		t.Fatal("lines channel not closed after Stop")
	}
}
