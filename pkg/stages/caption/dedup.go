package caption

import (
	"image"

	"github.com/user/framescribe/pkg/ports"
)

// Deduplicator decides, frame by frame, whether a frame is kept for
// captioning. Every frame becomes the baseline for the next comparison,
// whether it was kept or not.
type Deduplicator struct {
	comparer  ports.ImageComparer
	threshold float64
	logger    ports.Logger

	previous *image.RGBA
}

// NewDeduplicator creates a Deduplicator that skips a frame when its
// similarity to the previous frame exceeds threshold.
func NewDeduplicator(comparer ports.ImageComparer, threshold float64, logger ports.Logger) *Deduplicator {
	return &Deduplicator{
		comparer:  comparer,
		threshold: threshold,
		logger:    logger,
	}
}

// Observe reports whether frame should be kept. The first frame is always
// kept without a comparison. A frame whose comparison fails is kept.
func (d *Deduplicator) Observe(frame *image.RGBA) (keep bool, score float64) {
	previous := d.previous
	d.previous = frame

	if previous == nil {
		return true, 0
	}

	score, err := d.comparer.Compare(previous, frame)
	if err != nil {
		d.logger.Warn("Frame comparison failed, keeping frame: %v", err)
		return true, 0
	}
	return score <= d.threshold, score
}
