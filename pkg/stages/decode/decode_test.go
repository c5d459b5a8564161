package decode

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/user/framescribe/pkg/adapters/logger"
	"github.com/user/framescribe/pkg/mocks"
	"github.com/user/framescribe/pkg/pipeline"
	"github.com/user/framescribe/pkg/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStage_Execute(t *testing.T) {
	src := mocks.NewSolidFrames(3, 8, 8, color.White)
	opener := &mocks.MediaOpener{
		OpenFunc: func(r io.Reader) (ports.FrameSource, ports.MediaInfo, error) {
			return src, ports.MediaInfo{Name: "gif"}, nil
		},
	}

	result, err := NewStage(opener, logger.NewNoop()).Execute(context.Background(), pipeline.DecodeInput{Body: bytes.NewReader(nil)})
	require.NoError(t, err)
	assert.Equal(t, "gif", result.Media.Name)

	count := 0
	for {
		_, err := result.Frames.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		count++
	}
	result.Frames.Close()
	result.Frames.Wait()

	assert.Equal(t, 3, count)
	assert.True(t, src.Closed())
}

func TestStage_OpenFailure(t *testing.T) {
	opener := &mocks.MediaOpener{
		OpenFunc: func(r io.Reader) (ports.FrameSource, ports.MediaInfo, error) {
			return nil, ports.MediaInfo{}, ports.ErrFormatUnrecognized
		},
	}

	_, err := NewStage(opener, logger.NewNoop()).Execute(context.Background(), pipeline.DecodeInput{Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, ports.ErrFormatUnrecognized)
}
