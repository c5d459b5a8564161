// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/framescribe/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveKeptFrame does nothing.
func (s *Sink) SaveKeptFrame(index int, img image.Image, caption string) error {
	return nil
}

// SaveCaptionsJSON does nothing.
func (s *Sink) SaveCaptionsJSON(data []byte) error {
	return nil
}

// SaveSummary does nothing.
func (s *Sink) SaveSummary(text string) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
