// Package throttle rate-limits calls to the captioning and summary oracles.
package throttle

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/time/rate"

	"github.com/user/framescribe/pkg/ports"
)

// Captioner limits the rate of calls to an underlying captioner. One
// limiter may be shared by many concurrent pipeline runs.
type Captioner struct {
	next    ports.Captioner
	limiter *rate.Limiter
}

// NewCaptioner wraps next with limiter. A nil limiter disables throttling.
func NewCaptioner(next ports.Captioner, limiter *rate.Limiter) *Captioner {
	return &Captioner{next: next, limiter: limiter}
}

func (c *Captioner) Caption(ctx context.Context, img image.Image) (ports.Caption, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ports.Caption{}, fmt.Errorf("throttle: %w", err)
		}
	}
	return c.next.Caption(ctx, img)
}

// TextGenerator limits the rate of calls to an underlying generator.
type TextGenerator struct {
	next    ports.TextGenerator
	limiter *rate.Limiter
}

// NewTextGenerator wraps next with limiter. A nil limiter disables
// throttling.
func NewTextGenerator(next ports.TextGenerator, limiter *rate.Limiter) *TextGenerator {
	return &TextGenerator{next: next, limiter: limiter}
}

func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("throttle: %w", err)
		}
	}
	return g.next.Generate(ctx, prompt)
}

// NewLimiter returns a limiter allowing perSecond calls with the given
// burst, or nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

var (
	_ ports.Captioner     = (*Captioner)(nil)
	_ ports.TextGenerator = (*TextGenerator)(nil)
)
