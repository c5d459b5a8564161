package ports

import "time"

// Frame outcomes reported to Metrics.
const (
	FrameKept     = "kept"
	FrameSkipped  = "skipped"
	FrameAccepted = "accepted"
	FrameRejected = "rejected"
	FrameFailed   = "caption_failed"
)

// Metrics records pipeline counters.
type Metrics interface {
	// ObserveFrame counts a frame with the given outcome.
	ObserveFrame(outcome string)

	// ObserveStage records the wall time of one pipeline stage.
	ObserveStage(stage string, elapsed time.Duration)

	// ObserveRun records a finished run. outcome is "ok" or an error class.
	ObserveRun(outcome string, elapsed time.Duration)
}
