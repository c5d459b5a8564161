package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveKeptFrame saves a frame that passed deduplication together with
	// its caption (empty when captioning failed or was rejected).
	SaveKeptFrame(index int, img image.Image, caption string) error

	// SaveCaptionsJSON saves the accepted captions as JSON.
	SaveCaptionsJSON(data []byte) error

	// SaveSummary saves the final summary text.
	SaveSummary(text string) error
}
