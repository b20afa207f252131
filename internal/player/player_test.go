package player

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOutput records what the player hands to the audio device. drain plays
// everything queued to completion, the way the speaker would.
type fakeOutput struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	inits   int
	plays   int
	clears  int
	playing []beep.Streamer
}

func (o *fakeOutput) init(sr beep.SampleRate) (beep.SampleRate, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inits++
	if o.rate == 0 {
		o.rate = sr
	}
	return o.rate, nil
}

func (o *fakeOutput) play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.plays++
	o.playing = append(o.playing, s)
}

func (o *fakeOutput) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clears++
	o.playing = nil
}

func (o *fakeOutput) lock() { o.mu.Lock() }

func (o *fakeOutput) unlock() { o.mu.Unlock() }

func (o *fakeOutput) drain() {
	o.mu.Lock()
	defer o.mu.Unlock()
	buf := make([][2]float64, 512)
	for _, s := range o.playing {
		for range 10000 {
			if _, ok := s.Stream(buf); !ok {
				break
			}
		}
	}
	o.playing = nil
}

func (o *fakeOutput) playCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plays
}

// writeWAV writes one second of 8kHz mono silence.
func writeWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(8000), format))
	return path
}

func waitState(t *testing.T, p *Player, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return p.PlaybackState() == want },
		2*time.Second, 5*time.Millisecond, "player never reached %v", want)
}

func loadedPlayer(t *testing.T, out *fakeOutput) (*Player, *recordingListener) {
	t.Helper()
	p := newPlayer(out)
	l := &recordingListener{}
	p.AddListener(l)

	p.SetItem(Item{URI: writeWAV(t), MediaID: "m1"}, 0)
	p.Prepare()
	waitState(t, p, Ready)
	t.Cleanup(p.Release)
	return p, l
}

func TestPlayer_PrepareReachesReady(t *testing.T) {
	out := &fakeOutput{}
	p, l := loadedPlayer(t, out)

	assertEvents(t, l.take(), "item=m1", "state=Buffering", "state=Ready")

	d, ok := p.Duration()
	assert.True(t, ok)
	assert.Equal(t, time.Second, d)
	assert.Equal(t, 1, out.inits)
	assert.False(t, p.IsPlaying())
	assert.Equal(t, 0, out.playCount(), "nothing should play before Play()")
}

func TestPlayer_PlayAndPause(t *testing.T) {
	out := &fakeOutput{}
	p, l := loadedPlayer(t, out)
	l.take()

	p.Play()
	assert.True(t, p.IsPlaying())
	assert.Equal(t, 1, out.playCount())

	p.Pause()
	assert.False(t, p.IsPlaying())

	p.Play()
	assert.Equal(t, 1, out.playCount(), "resume should reuse the queued stream")

	assertEvents(t, l.take(), "playing=true", "playing=false", "playing=true")
}

func TestPlayer_PlayBeforeReady(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out)
	defer p.Release()

	p.SetItem(Item{URI: writeWAV(t), MediaID: "m1"}, 0)
	p.Play()
	p.Prepare()

	waitState(t, p, Ready)
	assert.True(t, p.IsPlaying())
	assert.Equal(t, 1, out.playCount())
}

func TestPlayer_EndsAndReplaysAfterSeek(t *testing.T) {
	out := &fakeOutput{}
	p, l := loadedPlayer(t, out)
	l.take()

	p.Play()
	out.drain()
	waitState(t, p, Ended)
	assert.False(t, p.IsPlaying())
	assertEvents(t, l.take(), "playing=true", "playing=false", "state=Ended")

	p.SeekTo(0)
	assert.Equal(t, Ready, p.PlaybackState())
	assert.True(t, p.IsPlaying())
	assert.Equal(t, 2, out.playCount())
}

func TestPlayer_StartPosition(t *testing.T) {
	out := &fakeOutput{}
	p := newPlayer(out)
	defer p.Release()

	p.SetItem(Item{URI: writeWAV(t)}, 500*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, p.Position())

	p.Prepare()
	waitState(t, p, Ready)
	assert.Equal(t, 500*time.Millisecond, p.Position())
}

func TestPlayer_SeekClamps(t *testing.T) {
	out := &fakeOutput{}
	p, _ := loadedPlayer(t, out)

	p.SeekTo(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, p.Position())

	p.SeekTo(-time.Second)
	assert.Equal(t, time.Duration(0), p.Position())

	p.SeekTo(time.Hour)
	assert.Equal(t, time.Second, p.Position())
}

func TestPlayer_LoadFailureReturnsToIdle(t *testing.T) {
	p := newPlayer(&fakeOutput{})
	defer p.Release()
	l := &recordingListener{}
	p.AddListener(l)

	p.SetItem(Item{URI: filepath.Join(t.TempDir(), "missing.wav"), MediaID: "m1"}, 0)
	p.Prepare()

	waitState(t, p, Idle)
	assertEvents(t, l.take(), "item=m1", "state=Buffering", "state=Idle")
}

func TestPlayer_ClearItems(t *testing.T) {
	out := &fakeOutput{}
	p, l := loadedPlayer(t, out)
	p.Play()
	l.take()

	p.ClearItems()

	assert.Nil(t, p.CurrentItem())
	assert.Equal(t, Idle, p.PlaybackState())
	assert.False(t, p.IsPlaying())
	assert.Equal(t, 1, out.clears)
	_, known := p.Duration()
	assert.False(t, known)
	assertEvents(t, l.take(), "playing=false", "state=Idle", "item=<nil>")
}

func TestPlayer_ResamplesToOutputRate(t *testing.T) {
	out := &fakeOutput{rate: 44100}
	p, _ := loadedPlayer(t, out)

	p.Play()
	out.drain()
	waitState(t, p, Ended)
	assert.Equal(t, time.Second, p.Position())
}

func TestPlayer_ReleaseIgnoresFurtherCalls(t *testing.T) {
	out := &fakeOutput{}
	p, l := loadedPlayer(t, out)
	l.take()

	p.Release()
	p.SetItem(Item{URI: "x.wav"}, 0)
	p.Prepare()

	assert.Nil(t, p.CurrentItem())
	assert.Equal(t, Idle, p.PlaybackState())
	assert.Empty(t, l.take())
}
