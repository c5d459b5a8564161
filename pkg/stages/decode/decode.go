// Package decode implements the stage that turns a network body into a
// live frame stream.
package decode

import (
	"context"
	"fmt"

	"github.com/user/framescribe/pkg/framequeue"
	"github.com/user/framescribe/pkg/pipeline"
	"github.com/user/framescribe/pkg/ports"
)

// Stage probes the body, opens its video stream and starts a decode
// goroutine feeding a frame queue.
type Stage struct {
	opener ports.MediaOpener
	logger ports.Logger
}

// NewStage creates a new decode stage.
func NewStage(opener ports.MediaOpener, logger ports.Logger) *Stage {
	return &Stage{
		opener: opener,
		logger: logger.WithComponent("decode"),
	}
}

// Execute opens input.Body. Probing and opening run on the calling
// goroutine; frame decoding continues in the background until the returned
// stream is drained or closed. Callers must Close and then Wait on the
// stream before releasing the body.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.DecodeResult{}, err
	}

	src, info, err := s.opener.Open(input.Body)
	if err != nil {
		return pipeline.DecodeResult{}, fmt.Errorf("decode: %w", err)
	}
	s.logger.Debug("Opened %s stream", info.Name)

	return pipeline.DecodeResult{
		Frames: framequeue.Start(src, s.logger),
		Media:  info,
	}, nil
}
