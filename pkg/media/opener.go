package media

import (
	"io"

	"github.com/user/framescribe/pkg/ports"
)

// Opener probes a byte stream and opens its best video stream.
// It implements ports.MediaOpener.
type Opener struct {
	logger ports.Logger
}

// NewOpener creates an Opener.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{logger: logger.WithComponent("media")}
}

// Open reads the stream prefix, identifies the container and opens a frame
// source over it. The prefix bytes are replayed to the demuxer, so src is
// read exactly once from the start.
func (o *Opener) Open(src io.Reader) (ports.FrameSource, ports.MediaInfo, error) {
	r := NewReader(src)
	if err := r.EnsureBuffered(ProbeSize); err != nil {
		return nil, ports.MediaInfo{}, err
	}

	format, err := Guess(r.Buffered())
	if err != nil {
		return nil, ports.MediaInfo{}, err
	}
	o.logger.Debug("Detected format %s from %d prefix bytes", format, len(r.Buffered()))

	ctx, err := NewContext()
	if err != nil {
		return nil, ports.MediaInfo{}, err
	}
	if err := ctx.AttachReader(r); err != nil {
		ctx.Close()
		return nil, ports.MediaInfo{}, err
	}

	source, err := ctx.Open(format)
	if err != nil {
		return nil, ports.MediaInfo{}, err
	}
	// The video stream keeps its own reference on the source.
	defer source.Close()

	video, err := source.Video()
	if err != nil {
		return nil, ports.MediaInfo{}, err
	}
	return video, format.Info(), nil
}
