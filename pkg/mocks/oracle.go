package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/framescribe/pkg/ports"
)

// Captioner is a mock implementation of ports.Captioner.
type Captioner struct {
	mu sync.Mutex

	CaptionFunc func(ctx context.Context, img image.Image) (ports.Caption, error)

	// Recorded calls for verification
	Calls int
}

func (m *Captioner) Caption(ctx context.Context, img image.Image) (ports.Caption, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.CaptionFunc != nil {
		return m.CaptionFunc(ctx, img)
	}
	return ports.Caption{Description: "a frame", Confidence: 1}, nil
}

// CallCount returns the number of Caption calls.
func (m *Captioner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

var _ ports.Captioner = (*Captioner)(nil)

// TextGenerator is a mock implementation of ports.TextGenerator.
type TextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Recorded calls for verification
	Prompts []string
}

func (m *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "summary", nil
}

var _ ports.TextGenerator = (*TextGenerator)(nil)
