package player

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

var errM4ACodec = errors.New("m4a: unsupported codec")

// m4aFrameDecoder turns one container sample into stereo frames.
type m4aFrameDecoder interface {
	decode(data []byte) ([][2]float64, error)
	close()
}

// m4aStreamer implements beep.StreamSeekCloser over an MP4 container
// carrying AAC or ALAC audio.
type m4aStreamer struct {
	container *m4a.Reader
	closer    io.Closer
	frames    m4aFrameDecoder
	rate      int
	total     int
	next      int // index of the next container sample
	buf       [][2]float64
	bufPos    int
	err       error
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}

	rate := int(container.SampleRate())
	channels := int(container.Channels())
	bits := int(container.SampleSize())

	var frames m4aFrameDecoder
	precision := 2
	switch container.Codec() {
	case m4a.CodecAAC:
		frames, err = newAACFrames(container.CodecConfig(), channels)
	case m4a.CodecALAC:
		frames, err = newALACFrames(rate, bits, channels)
		if bits == 24 {
			precision = 3
		}
	default:
		err = errM4ACodec
	}
	if err != nil {
		return nil, beep.Format{}, err
	}

	s := &m4aStreamer{
		container: container,
		closer:    rc,
		frames:    frames,
		rate:      rate,
		total:     int(container.Duration().Seconds() * float64(rate)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   precision,
	}
	return s, format, nil
}

func (s *m4aStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if s.bufPos < len(s.buf) {
			c := copy(samples[n:], s.buf[s.bufPos:])
			s.bufPos += c
			n += c
			continue
		}
		if s.next >= s.container.SampleCount() {
			return n, n > 0
		}

		data, err := s.container.ReadSample(s.next)
		if err != nil {
			s.err = err
			return n, n > 0
		}
		s.next++

		s.buf, err = s.frames.decode(data)
		if err != nil {
			s.err = err
			return n, n > 0
		}
		s.bufPos = 0
	}
	return n, true
}

func (s *m4aStreamer) Err() error { return s.err }

func (s *m4aStreamer) Len() int { return s.total }

func (s *m4aStreamer) Position() int {
	pos := s.container.SampleTime(s.next)
	return int(pos.Seconds()*float64(s.rate)) - (len(s.buf) - s.bufPos)
}

func (s *m4aStreamer) Seek(p int) error {
	p = min(max(p, 0), s.total)
	pos := time.Duration(float64(p) / float64(s.rate) * float64(time.Second))
	s.next = s.container.SeekToTime(pos)
	s.buf = nil
	s.bufPos = 0
	s.err = nil
	return nil
}

func (s *m4aStreamer) Close() error {
	s.frames.close()
	return s.closer.Close()
}

type aacFrames struct {
	decoder  *faad2.Decoder
	channels int
}

func newAACFrames(config []byte, channels int) (*aacFrames, error) {
	ctx := context.Background()
	decoder, err := faad2.NewDecoder(ctx)
	if err != nil {
		return nil, err
	}
	if err := decoder.Init(ctx, config); err != nil {
		decoder.Close(ctx)
		return nil, err
	}
	return &aacFrames{decoder: decoder, channels: channels}, nil
}

func (a *aacFrames) decode(data []byte) ([][2]float64, error) {
	pcm, err := a.decoder.Decode(context.Background(), data)
	if err != nil {
		return nil, err
	}

	ch := max(a.channels, 1)
	out := make([][2]float64, len(pcm)/ch)
	for i := range out {
		l := float64(pcm[i*ch]) / 32768.0
		r := l
		if ch > 1 {
			r = float64(pcm[i*ch+1]) / 32768.0
		}
		out[i] = [2]float64{l, r}
	}
	return out, nil
}

func (a *aacFrames) close() {
	a.decoder.Close(context.Background())
}

type alacFrames struct {
	decoder  *alac.Alac
	bits     int
	channels int
}

func newALACFrames(rate, bits, channels int) (*alacFrames, error) {
	decoder, err := alac.NewWithConfig(alac.Config{
		SampleRate:  rate,
		SampleSize:  bits,
		NumChannels: channels,
		FrameSize:   4096,
	})
	if err != nil {
		return nil, err
	}
	return &alacFrames{decoder: decoder, bits: bits, channels: channels}, nil
}

func (a *alacFrames) decode(data []byte) ([][2]float64, error) {
	raw := a.decoder.Decode(data)
	width := 2
	if a.bits == 24 {
		width = 3
	}
	stride := width * max(a.channels, 1)
	out := make([][2]float64, len(raw)/stride)
	for i := range out {
		frame := raw[i*stride:]
		l := pcmSample(frame, width)
		r := l
		if a.channels > 1 {
			r = pcmSample(frame[width:], width)
		}
		out[i] = [2]float64{l, r}
	}
	return out, nil
}

func (a *alacFrames) close() {}

// pcmSample reads a little-endian signed 16 or 24 bit sample.
func pcmSample(b []byte, width int) float64 {
	if width == 3 {
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / 8388608.0
	}
	return float64(int16(uint16(b[0])|uint16(b[1])<<8)) / 32768.0 //nolint:gosec // audio samples
}
