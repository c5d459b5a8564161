package media

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// Reader buffers bytes pulled from a network source and serves them to a
// synchronous consumer. Bytes made resident by EnsureBuffered are returned
// by Read before any further bytes are pulled from the source, so nothing
// inspected by the prober is lost to the decoder.
type Reader struct {
	src io.Reader
	buf []byte // resident bytes are buf[off:]
	off int
	eof bool

	mu  sync.Mutex
	err error
}

// NewReader creates a Reader over src.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src: src,
		buf: make([]byte, 0, IOBufferSize),
	}
}

// EnsureBuffered pulls from the source until at least min bytes are resident
// or the source reaches end of stream. End of stream is not an error.
func (r *Reader) EnsureBuffered(min int) error {
	for len(r.buf)-r.off < min && !r.eof {
		if cap(r.buf)-len(r.buf) == 0 {
			r.grow(min)
		}

		n, err := r.src.Read(r.buf[len(r.buf):cap(r.buf)])
		r.buf = r.buf[:len(r.buf)+n]

		switch {
		case errors.Is(err, io.EOF):
			r.eof = true
		case err != nil:
			r.setErr(err)
			return &ports.IOError{Op: "buffer", Err: err}
		case n == 0:
			r.eof = true
		}
	}
	return nil
}

// Buffered returns the resident, unconsumed bytes without consuming them.
// The slice is only valid until the next call to EnsureBuffered or Read.
func (r *Reader) Buffered() []byte {
	return r.buf[r.off:]
}

// Read drains resident bytes first and then reads the source directly.
// A zero-length read from the source is reported as io.EOF.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if r.off < len(r.buf) {
		n := copy(p, r.buf[r.off:])
		r.off += n
		if r.off == len(r.buf) {
			// Fully drained; reuse the backing array.
			r.buf = r.buf[:0]
			r.off = 0
		}
		return n, nil
	}

	if r.eof {
		return 0, io.EOF
	}

	n, err := r.src.Read(p)
	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
		if n > 0 {
			return n, nil
		}
		return 0, io.EOF
	case err != nil:
		r.setErr(err)
		return n, err
	case n == 0:
		r.eof = true
		return 0, io.EOF
	}
	return n, nil
}

// Err returns the most recent I/O error reported by the source, or nil.
// A consumer that only saw a generic end-of-stream signal uses it to tell a
// failed read apart from a genuine end of stream.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reader) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// grow makes room for at least min resident bytes, compacting consumed
// bytes away first.
func (r *Reader) grow(min int) {
	resident := len(r.buf) - r.off
	size := 2 * cap(r.buf)
	if size < min {
		size = min
	}
	if size < IOBufferSize {
		size = IOBufferSize
	}
	next := make([]byte, resident, size)
	copy(next, r.buf[r.off:])
	r.buf = next
	r.off = 0
}

// String implements fmt.Stringer for debug logging.
func (r *Reader) String() string {
	return fmt.Sprintf("Reader{buffered: %d bytes, err: %v}", len(r.buf)-r.off, r.Err())
}
