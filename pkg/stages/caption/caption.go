// Package caption implements the deduplicate-and-caption stage.
package caption

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/user/framescribe/pkg/pipeline"
	"github.com/user/framescribe/pkg/ports"
)

// Stage pulls frames, drops redundant ones and captions the rest until
// enough captions have been accepted or the stream ends.
type Stage struct {
	captioner ports.Captioner
	comparer  ports.ImageComparer
	sink      ports.DebugSink
	metrics   ports.Metrics
	logger    ports.Logger
}

// NewStage creates a new caption stage.
func NewStage(captioner ports.Captioner, comparer ports.ImageComparer, sink ports.DebugSink, metrics ports.Metrics, logger ports.Logger) *Stage {
	return &Stage{
		captioner: captioner,
		comparer:  comparer,
		sink:      sink,
		metrics:   metrics,
		logger:    logger.WithComponent("caption"),
	}
}

// Execute consumes input.Frames. Decode errors end the stream softly and
// are reported in CaptionResult.StopErr; only a byte source failure before
// the first frame, or cancellation, is returned as an error.
func (s *Stage) Execute(ctx context.Context, input pipeline.CaptionInput) (pipeline.CaptionResult, error) {
	opts := normalize(input.Options)
	dedup := NewDeduplicator(s.comparer, opts.Threshold, s.logger)

	result := pipeline.CaptionResult{Captions: []pipeline.CaptionRecord{}}
	stats := &result.Stats

	for len(result.Captions) < opts.MaxCaptions {
		frame, err := input.Frames.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			if ports.IsIOError(err) && stats.Received == 0 {
				return result, fmt.Errorf("caption: %w", err)
			}
			s.logger.Warn("Frame stream ended early after %d frames: %v", stats.Received, err)
			result.StopErr = err
			break
		}
		stats.Received++

		keep, score := dedup.Observe(frame.Image)
		if !keep {
			stats.Skipped++
			s.metrics.ObserveFrame(ports.FrameSkipped)
			s.logger.Debug("Frame %d skipped (score %.3f)", frame.Index, score)
			continue
		}
		stats.Kept++
		s.metrics.ObserveFrame(ports.FrameKept)

		record, outcome, err := s.caption(ctx, frame, opts)
		if err != nil {
			return result, err
		}
		s.metrics.ObserveFrame(outcome)
		switch outcome {
		case ports.FrameAccepted:
			stats.Accepted++
			result.Captions = append(result.Captions, record)
		case ports.FrameRejected:
			stats.Rejected++
		case ports.FrameFailed:
			stats.Failed++
		}
	}

	if len(result.Captions) >= opts.MaxCaptions {
		s.logger.Debug("Caption limit of %d reached", opts.MaxCaptions)
	}
	s.logger.Debug("Captioned %d of %d frames (%d skipped, %d rejected, %d failed)",
		stats.Accepted, stats.Received, stats.Skipped, stats.Rejected, stats.Failed)

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(result.Captions, "", "  "); err == nil {
			if err := s.sink.SaveCaptionsJSON(data); err != nil {
				s.logger.Warn("Failed to save captions: %v", err)
			}
		}
	}

	return result, nil
}

// caption asks the oracle about one kept frame and returns its outcome.
// Oracle failures and low confidence are outcomes, not errors; only
// cancellation is an error.
func (s *Stage) caption(ctx context.Context, frame ports.VideoFrame, opts pipeline.CaptionOptions) (pipeline.CaptionRecord, string, error) {
	caption, err := s.captioner.Caption(ctx, frame.Image)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pipeline.CaptionRecord{}, "", ctxErr
		}
		s.logger.Warn("Captioning frame %d failed: %v", frame.Index, err)
		s.saveFrame(frame, "")
		return pipeline.CaptionRecord{}, ports.FrameFailed, nil
	}

	s.saveFrame(frame, caption.Description)
	if caption.Confidence < opts.MinConfidence {
		s.logger.Debug("Frame %d caption rejected (confidence %.2f)", frame.Index, caption.Confidence)
		return pipeline.CaptionRecord{}, ports.FrameRejected, nil
	}

	s.logger.Debug("Frame %d: %s", frame.Index, caption.Description)
	return pipeline.CaptionRecord{
		FrameIndex: frame.Index,
		Text:       caption.Description,
		Confidence: caption.Confidence,
	}, ports.FrameAccepted, nil
}

func (s *Stage) saveFrame(frame ports.VideoFrame, caption string) {
	if !s.sink.Enabled() {
		return
	}
	if err := s.sink.SaveKeptFrame(frame.Index, frame.Image, caption); err != nil {
		s.logger.Warn("Failed to save frame %d: %v", frame.Index, err)
	}
}

func normalize(opts pipeline.CaptionOptions) pipeline.CaptionOptions {
	def := pipeline.DefaultCaptionOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = def.MinConfidence
	}
	if opts.MaxCaptions <= 0 {
		opts.MaxCaptions = def.MaxCaptions
	}
	return opts
}
