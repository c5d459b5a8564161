//go:build ffmpeg && cgo

package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/framescribe/pkg/adapters/logger"
	"github.com/user/framescribe/pkg/ports"
)

func encodeGIF(t *testing.T, n int) []byte {
	t.Helper()

	g := &gif.GIF{}
	for i := 0; i < n; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 32, 32), color.Palette{color.Black, color.White})
		for p := range img.Pix {
			img.Pix[p] = uint8((p + i) % 2)
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10)
	}

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func TestNativeOpener_DecodesAllFrames(t *testing.T) {
	data := encodeGIF(t, 5)

	src, info, err := NewOpener(logger.NewNoop()).Open(bytes.NewReader(data))
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, "gif", info.Name)

	count := 0
	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 32, 32), f.Image.Bounds())
		count++
	}
	assert.Equal(t, 5, count)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNativeOpener_SmallReads(t *testing.T) {
	data := encodeGIF(t, 3)

	src, _, err := NewOpener(logger.NewNoop()).Open(iotest.OneByteReader(bytes.NewReader(data)))
	require.NoError(t, err)
	defer src.Close()

	count := 0
	for {
		_, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestNativeGuess_Unrecognized(t *testing.T) {
	_, err := Guess(bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 1024))
	assert.ErrorIs(t, err, ports.ErrFormatUnrecognized)
}

func TestNativeContext_CloseWithoutOpen(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)
	require.NoError(t, ctx.AttachReader(NewReader(bytes.NewReader(nil))))
	ctx.Close()
	ctx.Close()
}
