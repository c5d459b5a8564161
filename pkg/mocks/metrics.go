package mocks

import (
	"sync"
	"time"

	"github.com/user/framescribe/pkg/ports"
)

// Metrics is a mock implementation of ports.Metrics that counts outcomes.
type Metrics struct {
	mu     sync.Mutex
	frames map[string]int
	runs   map[string]int
	stages map[string]int
}

// NewMetrics creates a new mock Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		frames: make(map[string]int),
		runs:   make(map[string]int),
		stages: make(map[string]int),
	}
}

func (m *Metrics) ObserveFrame(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames[outcome]++
}

func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[stage]++
}

func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[outcome]++
}

// Frames returns the count for a frame outcome.
func (m *Metrics) Frames(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames[outcome]
}

// Runs returns the count for a run outcome.
func (m *Metrics) Runs(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[outcome]
}

// Stages returns how many times a stage was observed.
func (m *Metrics) Stages(stage string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stages[stage]
}

var _ ports.Metrics = (*Metrics)(nil)
