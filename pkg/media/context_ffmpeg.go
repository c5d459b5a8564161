//go:build ffmpeg && cgo

package media

/*
#cgo pkg-config: libavformat libavcodec libavutil libswscale
#include "media_ffmpeg.h"
*/
import "C"

import (
	"errors"
	"io"
	"runtime/cgo"
	"unsafe"

	"github.com/user/framescribe/pkg/ports"
)

// Context owns an AVFormatContext together with the custom I/O context that
// feeds it from a Reader.
//
// Teardown order is fixed: the format context is closed first, then the
// AVIO scratch buffer and AVIO context are freed, and finally the reader
// handle is released.
type Context struct {
	fmtCtx *C.AVFormatContext
	avio   *C.AVIOContext
	handle cgo.Handle
	reader *Reader
	opened bool
}

// NewContext allocates an empty demuxer context.
func NewContext() (*Context, error) {
	fmtCtx := C.avformat_alloc_context()
	if fmtCtx == nil {
		return nil, ports.ErrOutOfMemory
	}
	return &Context{fmtCtx: fmtCtx}, nil
}

// nativeBuffer is a scratch buffer allocated with av_malloc. Once handed to
// avio_alloc_context it belongs to the AVIO context and must not be freed
// here; release records that transfer.
type nativeBuffer struct {
	ptr  unsafe.Pointer
	size int
}

func allocNativeBuffer(size int) (*nativeBuffer, error) {
	ptr := C.av_malloc(C.size_t(size))
	if ptr == nil {
		return nil, ports.ErrOutOfMemory
	}
	return &nativeBuffer{ptr: ptr, size: size}, nil
}

// release gives up ownership and returns the raw pointer.
func (b *nativeBuffer) release() unsafe.Pointer {
	ptr := b.ptr
	b.ptr = nil
	return ptr
}

func (b *nativeBuffer) free() {
	if b.ptr != nil {
		C.av_free(b.ptr)
		b.ptr = nil
	}
}

// AttachReader installs r as the byte source of the context. The context
// holds r until it is torn down.
func (c *Context) AttachReader(r *Reader) error {
	if c.fmtCtx == nil {
		return errors.New("media: context is closed")
	}
	if c.avio != nil {
		return errors.New("media: reader already attached")
	}

	buf, err := allocNativeBuffer(IOBufferSize)
	if err != nil {
		return err
	}

	h := cgo.NewHandle(r)
	avio := C.media_avio_alloc((*C.uchar)(buf.ptr), C.int(buf.size), C.uintptr_t(h))
	if avio == nil {
		buf.free()
		h.Delete()
		return ports.ErrOutOfMemory
	}
	buf.release()

	c.avio = avio
	c.handle = h
	c.reader = r
	c.fmtCtx.pb = avio
	c.fmtCtx.flags |= C.AVFMT_FLAG_CUSTOM_IO
	return nil
}

// Open runs the demuxer with the given format and reads stream information.
// The returned Source owns the context; on failure the context is torn down
// before Open returns.
func (c *Context) Open(f Format) (*Source, error) {
	if c.fmtCtx == nil {
		return nil, errors.New("media: context is closed")
	}
	if c.avio == nil {
		return nil, errors.New("media: no reader attached")
	}

	ret := C.avformat_open_input(&c.fmtCtx, nil, (*C.AVInputFormat)(f.native), nil)
	if ret < 0 {
		// avformat_open_input frees the format context on failure.
		c.fmtCtx = nil
		err := translateError("open", ret, c.reader)
		c.Close()
		return nil, err
	}
	c.opened = true

	if ret := C.avformat_find_stream_info(c.fmtCtx, nil); ret < 0 {
		err := translateError("find stream info", ret, c.reader)
		c.Close()
		return nil, err
	}

	return newSource(c, f), nil
}

// Close tears the context down. It is safe to call more than once.
func (c *Context) Close() {
	if c.fmtCtx != nil {
		if c.opened {
			C.avformat_close_input(&c.fmtCtx)
		} else {
			C.avformat_free_context(c.fmtCtx)
		}
		c.fmtCtx = nil
	}
	if c.avio != nil {
		C.media_avio_free(&c.avio)
		c.avio = nil
	}
	if c.handle != 0 {
		c.handle.Delete()
		c.handle = 0
	}
	c.reader = nil
}

// mediaReadPacket is the AVIO read callback. End of stream and invalid
// buffers map to AVERROR_EOF; a failed read is stashed on the reader and
// reported to the demuxer as AVERROR(EIO).
//
//export mediaReadPacket
func mediaReadPacket(opaque C.uintptr_t, buf *C.uint8_t, size C.int) C.int {
	if opaque == 0 || buf == nil || size <= 0 {
		return averrorEOF
	}
	r, ok := cgo.Handle(opaque).Value().(*Reader)
	if !ok {
		return averrorEOF
	}

	p := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(size))
	n, err := r.Read(p)
	if n > 0 {
		return C.int(n)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return averrorEOF
	}
	return C.int(averrorEIO)
}
