package player

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

// Opus always decodes at 48kHz regardless of the input rate in OpusHead.
const (
	opusSampleRate = 48000
	opusMaxFrame   = 5760 // 120ms at 48kHz
)

var (
	errUnknownOggCodec = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errOpusHead        = errors.New("opus: invalid OpusHead packet")
	errVorbisHead      = errors.New("vorbis: invalid identification header")
)

func newOggCodec(first []byte) (oggCodec, error) {
	switch {
	case len(first) >= 8 && string(first[:8]) == "OpusHead":
		return newOpusCodec(first)
	case len(first) >= 7 && first[0] == 0x01 && string(first[1:7]) == "vorbis":
		return newVorbisCodec(first)
	}
	return nil, errUnknownOggCodec
}

type opusCodec struct {
	decoder *opus.Decoder
	ch      int
	skip    int
	headers int
	pcm     []float32
}

func newOpusCodec(head []byte) (*opusCodec, error) {
	if len(head) < 19 {
		return nil, errOpusHead
	}
	// Major version must be 0; minor versions are compatible.
	if head[8]>>4 != 0 {
		return nil, fmt.Errorf("%w: version %d", errOpusHead, head[8])
	}
	ch := int(head[9])
	if ch < 1 || ch > 2 {
		return nil, fmt.Errorf("%w: %d channels", errOpusHead, ch)
	}

	decoder, err := opus.NewDecoder(opusSampleRate, ch)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		decoder: decoder,
		ch:      ch,
		skip:    int(binary.LittleEndian.Uint16(head[10:12])),
		headers: 1,
		pcm:     make([]float32, opusMaxFrame*ch),
	}, nil
}

func (c *opusCodec) sampleRate() int { return opusSampleRate }

func (c *opusCodec) channels() int { return c.ch }

func (c *opusCodec) preSkip() int { return c.skip }

// OpusHead is followed by exactly one OpusTags packet.
func (c *opusCodec) headerDone() bool { return c.headers >= 2 }

func (c *opusCodec) addHeader(packet []byte) error {
	if len(packet) < 8 || string(packet[:8]) != "OpusTags" {
		return errors.New("opus: missing OpusTags packet")
	}
	c.headers++
	return nil
}

func (c *opusCodec) decode(packet []byte) ([]float32, error) {
	n, err := c.decoder.DecodeFloat32(packet, c.pcm)
	if err != nil {
		return nil, err
	}
	return c.pcm[:n*c.ch], nil
}

// The Opus decoder resynchronizes on its own after a jump.
func (c *opusCodec) reset() {}

type vorbisCodec struct {
	decoder vorbis.Decoder
	ch      int
	rate    int
	headers int
	out     []float32
}

func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	// [7:11] version (0), [11] channels, [12:16] sample rate
	if len(ident) < 16 || binary.LittleEndian.Uint32(ident[7:11]) != 0 {
		return nil, errVorbisHead
	}
	c := &vorbisCodec{
		ch:   int(ident[11]),
		rate: int(binary.LittleEndian.Uint32(ident[12:16])),
	}
	if c.ch < 1 || c.rate <= 0 {
		return nil, errVorbisHead
	}
	if err := c.decoder.ReadHeader(ident); err != nil {
		return nil, err
	}
	c.headers = 1
	return c, nil
}

func (c *vorbisCodec) sampleRate() int { return c.rate }

// channels reports at most two; extra channels are dropped in decode.
func (c *vorbisCodec) channels() int { return min(c.ch, 2) }

func (c *vorbisCodec) preSkip() int { return 0 }

// Identification, comment and setup headers.
func (c *vorbisCodec) headerDone() bool { return c.headers >= 3 }

func (c *vorbisCodec) addHeader(packet []byte) error {
	if err := c.decoder.ReadHeader(packet); err != nil {
		return err
	}
	c.headers++
	return nil
}

func (c *vorbisCodec) decode(packet []byte) ([]float32, error) {
	samples, err := c.decoder.Decode(packet)
	if err != nil {
		return nil, err
	}
	if c.ch <= 2 {
		return samples, nil
	}

	frames := len(samples) / c.ch
	c.out = c.out[:0]
	for i := range frames {
		c.out = append(c.out, samples[i*c.ch], samples[i*c.ch+1])
	}
	return c.out, nil
}

func (c *vorbisCodec) reset() { c.decoder.Clear() }
