package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	oggHeaderSize   = 27
	oggFlagContinue = 0x01
	oggTailScan     = 64 * 1024
)

var (
	errOggCapture = errors.New("ogg: invalid capture pattern")
	errOggVersion = errors.New("ogg: unsupported version")
	errOggEmpty   = errors.New("ogg: stream has no packets")
)

// oggPageHeader is the fixed part of an Ogg page plus its lacing table.
type oggPageHeader struct {
	flags   byte
	granule int64
	lacing  []byte
}

func (h *oggPageHeader) bodySize() int {
	n := 0
	for _, l := range h.lacing {
		n += int(l)
	}
	return n
}

func readOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [oggHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errOggCapture
	}
	if buf[4] != 0 {
		return nil, errOggVersion
	}

	h := &oggPageHeader{
		flags:   buf[5],
		granule: int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // -1 means "no packet ends here"
		lacing:  make([]byte, buf[26]),
	}
	if _, err := io.ReadFull(r, h.lacing); err != nil {
		return nil, err
	}
	return h, nil
}

// oggPacketReader reassembles packets from consecutive pages of a single
// logical stream.
type oggPacketReader struct {
	r       io.Reader
	queue   [][]byte
	pending []byte
	// fresh is set after a reposition: a continued packet at the start of
	// the next page has lost its head and is dropped.
	fresh bool
}

func newOggPacketReader(r io.Reader) *oggPacketReader {
	return &oggPacketReader{r: r}
}

func (pr *oggPacketReader) reset() {
	pr.queue = nil
	pr.pending = nil
	pr.fresh = true
}

func (pr *oggPacketReader) next() ([]byte, error) {
	for len(pr.queue) == 0 {
		if err := pr.readPage(); err != nil {
			return nil, err
		}
	}
	pkt := pr.queue[0]
	pr.queue = pr.queue[1:]
	return pkt, nil
}

func (pr *oggPacketReader) readPage() error {
	h, err := readOggPageHeader(pr.r)
	if err != nil {
		return err
	}
	body := make([]byte, h.bodySize())
	if _, err := io.ReadFull(pr.r, body); err != nil {
		return err
	}

	drop := pr.fresh && h.flags&oggFlagContinue != 0
	pr.fresh = false

	off := 0
	for _, l := range h.lacing {
		seg := body[off : off+int(l)]
		off += int(l)
		if !drop {
			pr.pending = append(pr.pending, seg...)
		}
		if l < 255 {
			if !drop {
				pr.queue = append(pr.queue, pr.pending)
			}
			pr.pending = nil
			drop = false
		}
	}
	return nil
}

// oggCodec decodes the packets of one Ogg logical stream.
type oggCodec interface {
	sampleRate() int
	channels() int
	// preSkip is the number of decoded frames to discard at stream start.
	preSkip() int
	headerDone() bool
	addHeader(packet []byte) error
	// decode returns interleaved samples, valid until the next call.
	decode(packet []byte) ([]float32, error)
	reset()
}

// oggStreamer implements beep.StreamSeekCloser over an Ogg Opus or Vorbis file.
type oggStreamer struct {
	rs      io.ReadSeeker
	closer  io.Closer
	codec   oggCodec
	packets *oggPacketReader

	dataStart int64
	total     int64 // frames, excluding pre-skip
	pos       int64
	skip      int64 // decoded frames to drop before output
	pcm       []float32
	pcmPos    int
	err       error
}

// decodeOgg decodes an Ogg stream, picking Opus or Vorbis from the first packet.
func decodeOgg(rc io.ReadSeekCloser) (*oggStreamer, error) {
	pr := newOggPacketReader(rc)
	first, err := pr.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errOggEmpty
		}
		return nil, err
	}
	codec, err := newOggCodec(first)
	if err != nil {
		return nil, err
	}
	return newOggStreamer(rc, pr, codec)
}

func newOggStreamer(rc io.ReadSeekCloser, pr *oggPacketReader, codec oggCodec) (*oggStreamer, error) {
	for !codec.headerDone() {
		pkt, err := pr.next()
		if err != nil {
			return nil, err
		}
		if err := codec.addHeader(pkt); err != nil {
			return nil, err
		}
	}

	// Audio always starts on a fresh page.
	dataStart, err := rc.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	s := &oggStreamer{
		rs:        rc,
		closer:    rc,
		codec:     codec,
		packets:   pr,
		dataStart: dataStart,
		skip:      int64(codec.preSkip()),
	}

	last, err := lastGranule(rc, dataStart)
	if err != nil {
		return nil, err
	}
	s.total = max(last-int64(codec.preSkip()), 0)

	if _, err := rc.Seek(dataStart, io.SeekStart); err != nil {
		return nil, err
	}
	pr.reset()
	return s, nil
}

// lastGranule returns the granule position of the last page in the stream.
func lastGranule(rs io.ReadSeeker, dataStart int64) (int64, error) {
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	from := max(end-oggTailScan, dataStart)
	if _, err := rs.Seek(from, io.SeekStart); err != nil {
		return 0, err
	}
	tail := make([]byte, end-from)
	if _, err := io.ReadFull(rs, tail); err != nil {
		return 0, err
	}

	for i := bytes.LastIndex(tail, []byte("OggS")); i >= 0; i = bytes.LastIndex(tail[:i], []byte("OggS")) {
		if len(tail)-i < oggHeaderSize {
			continue
		}
		g := int64(binary.LittleEndian.Uint64(tail[i+6 : i+14])) //nolint:gosec // granule is signed
		if g >= 0 {
			return g, nil
		}
	}
	return 0, nil
}

func (s *oggStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	ch := s.codec.channels()
	for n < len(samples) {
		if s.total > 0 && s.pos >= s.total {
			return n, n > 0
		}

		if s.pcmPos < len(s.pcm) {
			if s.skip > 0 {
				drop := min(s.skip, int64((len(s.pcm)-s.pcmPos)/ch))
				s.pcmPos += int(drop) * ch
				s.skip -= drop
				continue
			}
			samples[n][0] = float64(s.pcm[s.pcmPos])
			if ch > 1 {
				samples[n][1] = float64(s.pcm[s.pcmPos+1])
			} else {
				samples[n][1] = samples[n][0]
			}
			s.pcmPos += ch
			s.pos++
			n++
			continue
		}

		pkt, err := s.packets.next()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.err = err
			}
			return n, n > 0
		}
		pcm, err := s.codec.decode(pkt)
		if err != nil {
			// Corrupt packets are skipped; the next one usually decodes.
			continue
		}
		s.pcm = pcm
		s.pcmPos = 0
	}
	return n, true
}

func (s *oggStreamer) Err() error { return s.err }

func (s *oggStreamer) Len() int { return int(s.total) }

func (s *oggStreamer) Position() int { return int(s.pos) }

// Seek moves to the page containing frame p and discards the decoded
// frames that precede it.
func (s *oggStreamer) Seek(p int) error {
	target := min(max(int64(p), 0), s.total)
	preSkip := int64(s.codec.preSkip())

	if _, err := s.rs.Seek(s.dataStart, io.SeekStart); err != nil {
		return err
	}

	start := s.dataStart
	base := -preSkip // frame index of the first sample decoded from start
	for {
		off, err := s.rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		h, err := readOggPageHeader(s.rs)
		if err != nil {
			break
		}
		if h.granule >= 0 {
			frame := h.granule - preSkip
			if frame > target {
				break
			}
			start = off + oggHeaderSize + int64(len(h.lacing)) + int64(h.bodySize())
			base = frame
		}
		if _, err := s.rs.Seek(int64(h.bodySize()), io.SeekCurrent); err != nil {
			return err
		}
	}

	if _, err := s.rs.Seek(start, io.SeekStart); err != nil {
		return err
	}
	s.packets.reset()
	s.codec.reset()
	s.pcm = nil
	s.pcmPos = 0
	s.pos = target
	s.skip = target - base
	s.err = nil
	return nil
}

func (s *oggStreamer) Close() error {
	return s.closer.Close()
}
