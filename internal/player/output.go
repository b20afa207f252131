package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// output is the audio sink a Player streams into.
type output interface {
	// init prepares the sink for a stream at sr and returns the rate the
	// sink actually runs at.
	init(sr beep.SampleRate) (beep.SampleRate, error)
	play(s beep.Streamer)
	clear()
	lock()
	unlock()
}

var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
)

// speakerOutput plays through the process-wide beep speaker. The speaker
// is initialized once with the first item's rate; later items are resampled.
type speakerOutput struct{}

func (speakerOutput) init(sr beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerRate != 0 {
		return speakerRate, nil
	}
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return 0, err
	}
	speakerRate = sr
	return sr, nil
}

func (speakerOutput) play(s beep.Streamer) { speaker.Play(s) }

func (speakerOutput) clear() { speaker.Clear() }

func (speakerOutput) lock() { speaker.Lock() }

func (speakerOutput) unlock() { speaker.Unlock() }
