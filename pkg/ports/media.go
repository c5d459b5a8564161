package ports

import (
	"context"
	"image"
	"io"
	"time"
)

// VideoFrame is a fully decoded RGBA bitmap in decode order.
type VideoFrame struct {
	Image *image.RGBA
	Index int           // Sequence number assigned by the receiving side, starting at 0
	Delay time.Duration // Nominal per-frame delay, carried through only
}

// MediaInfo describes the container format a stream was opened with.
type MediaInfo struct {
	Name        string
	Description string
	Extensions  []string
	MIMETypes   []string
}

// FrameSource is a forward-only, non-restartable sequence of decoded frames.
// Next returns io.EOF once the source is exhausted and on every call after.
type FrameSource interface {
	Next() (VideoFrame, error)
	Close() error
}

// MediaOpener probes a byte stream and opens its best video track.
type MediaOpener interface {
	// Open consumes src lazily; src must stay readable until the returned
	// FrameSource is closed.
	Open(src io.Reader) (FrameSource, MediaInfo, error)
}

// FrameStream is the consumer side of a frame handoff between goroutines.
type FrameStream interface {
	// Next blocks until the next frame is available.
	// It returns io.EOF after the producer has finished.
	Next(ctx context.Context) (VideoFrame, error)

	// Close tells the producer that no more frames will be consumed.
	Close()

	// Wait blocks until the producer has exited and released its source.
	Wait()
}

// ImageComparer scores how alike two bitmaps look.
type ImageComparer interface {
	// Compare returns a similarity score in [0, 1]; 1 means identical.
	Compare(a, b *image.RGBA) (float64, error)
}
