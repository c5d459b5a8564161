// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// FrameItem is one scripted result of FrameSource.Next.
type FrameItem struct {
	Frame ports.VideoFrame
	Err   error
}

// FrameSource is a mock implementation of ports.FrameSource that replays a
// script and then reports io.EOF.
type FrameSource struct {
	mu     sync.Mutex
	items  []FrameItem
	pulled int
	closed bool

	NextFunc  func() (ports.VideoFrame, error)
	CloseFunc func() error
}

// NewFrameSource creates a FrameSource that replays items.
func NewFrameSource(items ...FrameItem) *FrameSource {
	return &FrameSource{items: items}
}

// NewSolidFrames creates a FrameSource of n solid-color frames of the given
// size, cycling through colors.
func NewSolidFrames(n, width, height int, colors ...color.Color) *FrameSource {
	if len(colors) == 0 {
		colors = []color.Color{color.Black}
	}
	items := make([]FrameItem, n)
	for i := range items {
		items[i] = FrameItem{Frame: ports.VideoFrame{Image: SolidImage(width, height, colors[i%len(colors)])}}
	}
	return NewFrameSource(items...)
}

// SolidImage returns an RGBA image filled with c.
func SolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	r, g, b, a := c.RGBA()
	px := []byte{byte(r >> 8), byte(g >> 8), byte(b >> 8), byte(a >> 8)}
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], px)
	}
	return img
}

func (m *FrameSource) Next() (ports.VideoFrame, error) {
	if m.NextFunc != nil {
		return m.NextFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pulled >= len(m.items) {
		return ports.VideoFrame{}, io.EOF
	}
	item := m.items[m.pulled]
	m.pulled++
	return item.Frame, item.Err
}

func (m *FrameSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Pulled returns how many scripted items were handed out.
func (m *FrameSource) Pulled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulled
}

// Closed reports whether Close was called.
func (m *FrameSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.FrameSource = (*FrameSource)(nil)

// MediaOpener is a mock implementation of ports.MediaOpener.
type MediaOpener struct {
	OpenFunc func(src io.Reader) (ports.FrameSource, ports.MediaInfo, error)

	// Recorded calls for verification
	OpenCalls int
}

func (m *MediaOpener) Open(src io.Reader) (ports.FrameSource, ports.MediaInfo, error) {
	m.OpenCalls++
	if m.OpenFunc != nil {
		return m.OpenFunc(src)
	}
	return NewFrameSource(), ports.MediaInfo{Name: "mock"}, nil
}

var _ ports.MediaOpener = (*MediaOpener)(nil)

// ImageComparer is a mock implementation of ports.ImageComparer.
type ImageComparer struct {
	mu sync.Mutex

	CompareFunc func(a, b *image.RGBA) (float64, error)

	// Scores are returned in order when CompareFunc is nil; 1.0 (identical)
	// afterwards.
	Scores []float64
	Calls  int
}

func (m *ImageComparer) Compare(a, b *image.RGBA) (float64, error) {
	m.mu.Lock()
	call := m.Calls
	m.Calls++
	m.mu.Unlock()

	if m.CompareFunc != nil {
		return m.CompareFunc(a, b)
	}
	if call < len(m.Scores) {
		return m.Scores[call], nil
	}
	return 1.0, nil
}

var _ ports.ImageComparer = (*ImageComparer)(nil)

// FrameStream is a mock implementation of ports.FrameStream that numbers
// scripted items like the real receiver does.
type FrameStream struct {
	mu     sync.Mutex
	items  []FrameItem
	next   int
	index  int
	closed bool

	// Recorded calls for verification
	NextCalls int
}

// NewFrameStream creates a FrameStream that replays items.
func NewFrameStream(items ...FrameItem) *FrameStream {
	return &FrameStream{items: items}
}

func (m *FrameStream) Next(ctx context.Context) (ports.VideoFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NextCalls++
	if err := ctx.Err(); err != nil {
		return ports.VideoFrame{}, err
	}
	if m.next >= len(m.items) {
		return ports.VideoFrame{}, io.EOF
	}
	item := m.items[m.next]
	m.next++
	if item.Err != nil {
		return ports.VideoFrame{}, item.Err
	}
	frame := item.Frame
	frame.Index = m.index
	m.index++
	return frame, nil
}

func (m *FrameStream) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *FrameStream) Wait() {}

// Closed reports whether Close was called.
func (m *FrameStream) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.FrameStream = (*FrameStream)(nil)
