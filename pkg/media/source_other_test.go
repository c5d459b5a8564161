//go:build !ffmpeg || !cgo

package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framescribe/pkg/adapters/logger"
	"github.com/user/framescribe/pkg/ports"
)

func encodeGIF(t *testing.T, colors ...color.Color) []byte {
	t.Helper()

	g := &gif.GIF{}
	for _, c := range colors {
		palette := color.Palette{color.Transparent, c}
		img := image.NewPaletted(image.Rect(0, 0, 16, 16), palette)
		for i := range img.Pix {
			img.Pix[i] = 1
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 4)
	}

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func TestOpener_GIF(t *testing.T) {
	data := encodeGIF(t, color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, A: 255}, color.RGBA{B: 255, A: 255})

	src, info, err := NewOpener(logger.NewNoop()).Open(bytes.NewReader(data))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "gif", info.Name)

	var frames []ports.VideoFrame
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}

	require.Len(t, frames, 3)
	assert.Equal(t, image.Rect(0, 0, 16, 16), frames[0].Image.Bounds())
	assert.Equal(t, uint8(255), frames[0].Image.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(255), frames[1].Image.RGBAAt(0, 0).G)
	assert.Equal(t, uint8(255), frames[2].Image.RGBAAt(0, 0).B)
	assert.Equal(t, 40*time.Millisecond, frames[0].Delay)

	// Exhausted sources stay exhausted.
	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpener_UnrecognizedFormat(t *testing.T) {
	_, _, err := NewOpener(logger.NewNoop()).Open(bytes.NewReader([]byte("definitely not media")))
	assert.ErrorIs(t, err, ports.ErrFormatUnrecognized)
}

func TestOpener_FormatWithoutDecoder(t *testing.T) {
	_, _, err := NewOpener(logger.NewNoop()).Open(bytes.NewReader([]byte("OggS\x00\x02rest-of-page")))
	assert.ErrorIs(t, err, ports.ErrPlatformNotSupported)
}

func TestOpener_IOErrorDuringOpen(t *testing.T) {
	data := encodeGIF(t, color.White)
	boom := errors.New("peer went away")
	src := io.MultiReader(bytes.NewReader(data[:len(data)/2]), iotest.ErrReader(boom))

	_, _, err := NewOpener(logger.NewNoop()).Open(src)
	require.Error(t, err)
	assert.True(t, ports.IsIOError(err), "want IOError, got %v", err)
	assert.ErrorIs(t, err, boom)
}

func TestOpener_TruncatedGIF(t *testing.T) {
	data := encodeGIF(t, color.White)

	src, _, err := NewOpener(logger.NewNoop()).Open(bytes.NewReader(data[:len(data)-8]))
	require.NoError(t, err, "the header is intact")
	defer src.Close()

	_, err = src.Next()
	require.Error(t, err)
	assert.True(t, ports.IsNativeError(err), "want NativeError, got %v", err)
}

func TestOpener_CorruptHeader(t *testing.T) {
	data := []byte("GIF89a\x00")

	_, _, err := NewOpener(logger.NewNoop()).Open(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, ports.IsNativeError(err), "want NativeError, got %v", err)
}

// noisyGIF encodes frames of random pixels, which compress poorly and so
// make a body well past the probe prefix.
func noisyGIF(t *testing.T, frames int) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	g := &gif.GIF{}
	for range frames {
		img := image.NewPaletted(image.Rect(0, 0, 64, 64), palette.Plan9)
		rng.Read(img.Pix)
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 5)
	}

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	require.Greater(t, buf.Len(), 2*ProbeSize)
	return buf.Bytes()
}

type countingReader struct {
	r     io.Reader
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	return c.r.Read(p)
}

func drain(src ports.FrameSource) (int, error) {
	n := 0
	for {
		if _, err := src.Next(); err != nil {
			return n, err
		}
		n++
	}
}

func TestOpener_DecodesOnFirstNext(t *testing.T) {
	data := noisyGIF(t, 3)
	tail := &countingReader{r: bytes.NewReader(data[ProbeSize:])}

	src, info, err := NewOpener(logger.NewNoop()).Open(io.MultiReader(bytes.NewReader(data[:ProbeSize]), tail))
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, "gif", info.Name)
	assert.Zero(t, tail.reads, "Open must not read past the probed prefix")

	n, err := drain(src)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, n)
	assert.NotZero(t, tail.reads)
}

func TestSource_IOErrorAfterFramesIsDeferred(t *testing.T) {
	data := noisyGIF(t, 3)
	boom := errors.New("connection reset")
	cut := len(data) * 5 / 6
	body := io.MultiReader(bytes.NewReader(data[:cut]), iotest.ErrReader(boom))

	src, _, err := NewOpener(logger.NewNoop()).Open(body)
	require.NoError(t, err)
	defer src.Close()

	n, err := drain(src)
	assert.Equal(t, completeFrames(t, data[:cut]), n)
	assert.GreaterOrEqual(t, n, 1, "frames before the failure are delivered")
	assert.True(t, ports.IsIOError(err), "want IOError, got %v", err)
	assert.ErrorIs(t, err, boom)

	// The stop error sticks.
	_, err = src.Next()
	assert.ErrorIs(t, err, boom)
}

func completeFrames(t *testing.T, data []byte) int {
	t.Helper()
	return len(salvageGIF(data).Image)
}

func TestCompleteGIFPrefix(t *testing.T) {
	data := noisyGIF(t, 2)

	assert.Equal(t, len(data)-1, completeGIFPrefix(data), "everything up to the trailer")
	assert.Zero(t, completeGIFPrefix(data[:12]))
	assert.Zero(t, completeGIFPrefix(data[:40]), "first image still incomplete")

	end := completeGIFPrefix(data[:len(data)-20])
	assert.Greater(t, end, 0)
	assert.Less(t, end, len(data)-1)
	assert.Len(t, salvageGIF(data[:len(data)-20]).Image, 1)
}

func TestSource_ReferenceCounting(t *testing.T) {
	data := encodeGIF(t, color.White, color.Black)

	ctx, err := NewContext()
	require.NoError(t, err)
	require.NoError(t, ctx.AttachReader(NewReader(bytes.NewReader(data))))

	f, err := Guess(data)
	require.NoError(t, err)
	source, err := ctx.Open(f)
	require.NoError(t, err)

	video, err := source.Video()
	require.NoError(t, err)

	// Dropping the caller's reference keeps the video stream usable.
	require.NoError(t, source.Close())
	_, err = video.Next()
	require.NoError(t, err)

	require.NoError(t, video.Close())
	require.NoError(t, video.Close())

	_, err = source.Video()
	assert.Error(t, err)
}
