package prommetrics

import (
	"time"

	"github.com/user/framescribe/pkg/ports"
)

// Nop discards all observations.
type Nop struct{}

// NewNop creates a Metrics that records nothing.
func NewNop() *Nop {
	return &Nop{}
}

func (*Nop) ObserveFrame(outcome string) {}

func (*Nop) ObserveStage(stage string, elapsed time.Duration) {}

func (*Nop) ObserveRun(outcome string, elapsed time.Duration) {}

var _ ports.Metrics = (*Nop)(nil)
