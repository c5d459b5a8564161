package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/user/framescribe/pkg/ports"
)

// Tuning constants observed in production runs. Config may override them.
const (
	// DefaultSimilarityThreshold is the similarity score above which a
	// frame is skipped as redundant with its predecessor.
	DefaultSimilarityThreshold = 0.28

	// DefaultMinConfidence is the lowest caption confidence that is accepted.
	DefaultMinConfidence float32 = 0.5

	// DefaultMaxCaptions is the number of accepted captions after which
	// frame pulling stops.
	DefaultMaxCaptions = 10

	// SummaryInstruction prefixes the joined captions in the summary prompt.
	SummaryInstruction = "The following is a description of unique frames in a video, write a concise summary: "
)

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput carries the network body to decode.
type DecodeInput struct {
	Body io.Reader
}

// DecodeResult is a live frame stream produced on a decode goroutine.
type DecodeResult struct {
	Frames ports.FrameStream
	Media  ports.MediaInfo
}

// =============================================================================
// Caption Stage Types
// =============================================================================

// CaptionOptions tunes deduplication and caption acceptance.
type CaptionOptions struct {
	Threshold     float64 // Skip a frame when its score exceeds this
	MinConfidence float32 // Accept captions at or above this
	MaxCaptions   int     // Stop after this many accepted captions
}

// DefaultCaptionOptions returns CaptionOptions with default values.
func DefaultCaptionOptions() CaptionOptions {
	return CaptionOptions{
		Threshold:     DefaultSimilarityThreshold,
		MinConfidence: DefaultMinConfidence,
		MaxCaptions:   DefaultMaxCaptions,
	}
}

// CaptionInput contains the frame stream to caption.
type CaptionInput struct {
	Frames  ports.FrameStream
	Options CaptionOptions
}

// CaptionRecord is one accepted caption.
type CaptionRecord struct {
	FrameIndex int     `json:"frame_index"`
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

// FrameStats counts what happened to each received frame.
type FrameStats struct {
	Received int `json:"received"`
	Skipped  int `json:"skipped"`
	Kept     int `json:"kept"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

// CaptionResult contains accepted captions in frame order.
type CaptionResult struct {
	Captions []CaptionRecord
	Stats    FrameStats

	// StopErr is the decode error that ended the stream early, if any.
	// The captions gathered before it are still valid.
	StopErr error
}

// JoinCaptions renders captions as "Frame #i: text" entries separated by
// one space.
func JoinCaptions(captions []CaptionRecord) string {
	parts := make([]string, len(captions))
	for i, c := range captions {
		parts[i] = fmt.Sprintf("Frame #%d: %s", c.FrameIndex, c.Text)
	}
	return strings.Join(parts, " ")
}

// =============================================================================
// Summarize Stage Types
// =============================================================================

// SummarizeInput contains the captions to summarize.
type SummarizeInput struct {
	Captions []CaptionRecord
}

// SummarizeResult contains the final summary.
type SummarizeResult struct {
	Prompt  string
	Summary string
}
