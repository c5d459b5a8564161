package ports

import (
	"context"
	"image"
)

// Caption is the captioning oracle's answer for one frame.
type Caption struct {
	Description string  `json:"description"`
	Confidence  float32 `json:"confidence"`
}

// Captioner describes a single bitmap.
// Failures are never fatal to a pipeline run.
type Captioner interface {
	Caption(ctx context.Context, img image.Image) (Caption, error)
}

// TextGenerator produces prose from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
