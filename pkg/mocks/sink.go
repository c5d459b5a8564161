package mocks

import (
	"image"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	KeptFrames   map[int]image.Image
	Captions     map[int]string
	CaptionsJSON []byte
	Summary      string
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:    enabled,
		KeptFrames: make(map[int]image.Image),
		Captions:   make(map[int]string),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveKeptFrame(index int, img image.Image, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.KeptFrames[index] = img
	m.Captions[index] = caption
	return nil
}

func (m *DebugSink) SaveCaptionsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CaptionsJSON = data
	return nil
}

func (m *DebugSink) SaveSummary(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summary = text
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                                  { return false }
func (m *NullSink) SaveKeptFrame(index int, img image.Image, caption string) error { return nil }
func (m *NullSink) SaveCaptionsJSON(data []byte) error                             { return nil }
func (m *NullSink) SaveSummary(text string) error                                  { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
