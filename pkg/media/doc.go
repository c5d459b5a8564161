// Package media turns a forward-only byte stream into decoded video frames.
//
// The stream is pulled through a Reader, which keeps a resident prefix so the
// container format can be probed before the same bytes are handed to the
// demuxer. Builds tagged `ffmpeg` with cgo enabled bind libavformat,
// libavcodec and libswscale; other builds fall back to a pure-Go prober and
// an animated GIF decoder.
package media

import "time"

const (
	// ProbeSize is the number of prefix bytes inspected by Guess.
	ProbeSize = 4096

	// ProbePadding is the zeroed scratch margin the native prober may read
	// past the probed bytes (AVPROBE_PADDING_SIZE).
	ProbePadding = 32

	// IOBufferSize is the size of the scratch buffer handed to the native
	// I/O context.
	IOBufferSize = 4096

	// probeFilename is passed to probers that use the extension as a weak
	// signal. It carries no meaning.
	probeFilename = "stream"
)

// defaultFrameDelay is reported when the stream carries no usable frame rate.
const defaultFrameDelay = 10 * time.Millisecond
