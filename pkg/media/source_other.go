//go:build !ffmpeg || !cgo

package media

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"io"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/user/framescribe/pkg/ports"
)

// maxGIFSize bounds how much of a GIF stream is read into memory, since
// image/gif can only decode a whole file at once.
const maxGIFSize = 64 << 20

// Source is an opened GIF stream. It is reference counted: the caller of
// Context.Open holds one reference and every VideoSource holds another.
// The body is read and decoded once, by the first VideoSource.Next.
type Source struct {
	mu     sync.Mutex
	reader io.Reader
	config image.Config
	format Format
	refs   int

	loaded bool
	gif    *gif.GIF
	stop   error // returned after the decoded frames instead of io.EOF
}

func newSource(r io.Reader, cfg image.Config, f Format) *Source {
	return &Source{reader: r, config: cfg, format: f, refs: 1}
}

// Format returns the descriptor the source was opened with.
func (s *Source) Format() Format {
	return s.format
}

// Close drops the caller's reference.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unrefLocked()
	return nil
}

func (s *Source) unrefLocked() {
	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.reader = nil
		s.gif = nil
	}
}

// loadLocked reads the rest of the body and decodes it. Frames that were
// complete before a read error, a size overrun or corrupt data are kept;
// the failure is stashed in s.stop and reported once they are drained.
func (s *Source) loadLocked() {
	s.loaded = true
	data, err := io.ReadAll(io.LimitReader(s.reader, maxGIFSize+1))
	s.reader = nil

	switch {
	case err != nil:
		s.stop = &ports.IOError{Op: "read", Err: err}
	case len(data) > maxGIFSize:
		data = data[:maxGIFSize]
		s.stop = &ports.NativeError{Op: "decode", Code: -1, Message: "gif exceeds size limit"}
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		if s.stop == nil {
			s.stop = &ports.NativeError{Op: "decode", Code: -1, Message: err.Error()}
		}
		g = salvageGIF(data)
	}
	if len(g.Image) == 0 && s.stop == nil {
		s.stop = &ports.NativeError{Op: "decode", Code: -1, Message: "no frames"}
	}
	s.gif = g
}

// salvageGIF decodes the frames of data that precede the first incomplete
// block. It returns an empty GIF when there are none.
func salvageGIF(data []byte) *gif.GIF {
	end := completeGIFPrefix(data)
	if end == 0 {
		return &gif.GIF{}
	}
	g, err := gif.DecodeAll(bytes.NewReader(append(data[:end:end], gifTrailer)))
	if err != nil {
		return &gif.GIF{}
	}
	return g
}

const (
	gifExtension  = 0x21
	gifImageBlock = 0x2C
	gifTrailer    = 0x3B
)

// completeGIFPrefix returns the offset just past the last image block of
// data that is complete, or 0 when no image block is complete.
func completeGIFPrefix(data []byte) int {
	const screenEnd = 13
	if len(data) < screenEnd {
		return 0
	}
	pos := screenEnd + colorTableSize(data[10])
	last := 0

	for pos < len(data) {
		switch data[pos] {
		case gifExtension:
			next, ok := skipSubBlocks(data, pos+2)
			if !ok {
				return last
			}
			pos = next
		case gifImageBlock:
			if pos+10 > len(data) {
				return last
			}
			// Descriptor, optional local colour table, LZW minimum code size.
			next, ok := skipSubBlocks(data, pos+10+colorTableSize(data[pos+9])+1)
			if !ok {
				return last
			}
			pos, last = next, next
		default:
			return last
		}
	}
	return last
}

func colorTableSize(flags byte) int {
	if flags&0x80 == 0 {
		return 0
	}
	return 3 << ((flags & 0x07) + 1)
}

// skipSubBlocks walks a data sub-block chain starting at pos and returns
// the offset after its terminator.
func skipSubBlocks(data []byte, pos int) (int, bool) {
	for pos < len(data) {
		n := int(data[pos])
		pos++
		if n == 0 {
			return pos, true
		}
		pos += n
	}
	return 0, false
}

// Video returns a decoder over the GIF's frames.
func (s *Source) Video() (*VideoSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return nil, errors.New("media: source is closed")
	}

	s.refs++
	v := &VideoSource{src: s}
	if s.config.Width > 0 && s.config.Height > 0 {
		v.canvas = image.NewRGBA(image.Rect(0, 0, s.config.Width, s.config.Height))
	}
	return v, nil
}

// VideoSource composites GIF frames onto a canvas, honouring each frame's
// disposal method. It implements ports.FrameSource.
type VideoSource struct {
	src    *Source
	canvas *image.RGBA
	next   int
	closed bool
}

// Next returns the next composited frame, or io.EOF after the last one.
func (v *VideoSource) Next() (ports.VideoFrame, error) {
	v.src.mu.Lock()
	defer v.src.mu.Unlock()

	if v.closed {
		return ports.VideoFrame{}, errors.New("media: video source is closed")
	}
	s := v.src
	if !s.loaded {
		s.loadLocked()
	}
	g := s.gif
	if v.next >= len(g.Image) {
		if s.stop != nil {
			return ports.VideoFrame{}, s.stop
		}
		return ports.VideoFrame{}, io.EOF
	}

	i := v.next
	v.next++

	frame := g.Image[i]
	if v.canvas == nil {
		v.canvas = image.NewRGBA(image.Rect(0, 0, frame.Bounds().Max.X, frame.Bounds().Max.Y))
	}
	var previous *image.RGBA
	if disposal(g, i) == gif.DisposalPrevious {
		previous = cloneRGBA(v.canvas)
	}

	draw.Draw(v.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
	out := cloneRGBA(v.canvas)

	switch disposal(g, i) {
	case gif.DisposalBackground:
		draw.Draw(v.canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		v.canvas = previous
	}

	delay := defaultFrameDelay
	if i < len(g.Delay) && g.Delay[i] > 0 {
		delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
	}
	return ports.VideoFrame{Image: out, Delay: delay}, nil
}

// Close drops the reference on the source.
func (v *VideoSource) Close() error {
	v.src.mu.Lock()
	defer v.src.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	v.src.unrefLocked()
	return nil
}

func disposal(g *gif.GIF, i int) byte {
	if i < len(g.Disposal) {
		return g.Disposal[i]
	}
	return gif.DisposalNone
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
