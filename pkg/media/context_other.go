//go:build !ffmpeg || !cgo

package media

import (
	"bytes"
	"errors"
	"fmt"
	"image/gif"

	"github.com/user/framescribe/pkg/ports"
)

// Context holds the byte source until a format is opened. Builds without
// FFmpeg can only open GIF streams.
type Context struct {
	reader *Reader
	closed bool
}

// NewContext allocates an empty context.
func NewContext() (*Context, error) {
	return &Context{}, nil
}

// AttachReader installs r as the byte source of the context.
func (c *Context) AttachReader(r *Reader) error {
	if c.closed {
		return errors.New("media: context is closed")
	}
	if c.reader != nil {
		return errors.New("media: reader already attached")
	}
	c.reader = r
	return nil
}

// Open checks the stream header for the given format. The returned Source
// takes over the byte source and decodes it on the first VideoSource.Next,
// so the body is read on the goroutine that pulls frames. On failure the
// context is torn down before Open returns.
func (c *Context) Open(f Format) (*Source, error) {
	if c.closed {
		return nil, errors.New("media: context is closed")
	}
	if c.reader == nil {
		return nil, errors.New("media: no reader attached")
	}
	defer c.Close()

	if f.Name != "gif" {
		return nil, fmt.Errorf("media: %s: %w", f.Name, ports.ErrPlatformNotSupported)
	}

	// The header sits in the probed prefix; reading it must not consume it.
	cfg, err := gif.DecodeConfig(bytes.NewReader(c.reader.Buffered()))
	if err != nil {
		return nil, &ports.NativeError{Op: "open", Code: -1, Message: err.Error()}
	}
	return newSource(c.reader, cfg, f), nil
}

// Close releases the byte source. It is safe to call more than once.
func (c *Context) Close() {
	c.closed = true
	c.reader = nil
}
