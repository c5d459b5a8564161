//go:build ffmpeg && cgo

package media

/*
#include "media_ffmpeg.h"
*/
import "C"

import (
	"errors"
	"image"
	"io"
	"sync"
	"time"
	"unsafe"

	"github.com/user/framescribe/pkg/ports"
)

// Source is an opened container. It is reference counted: the caller of
// Context.Open holds one reference and every VideoSource holds another.
// The underlying context is torn down when the last reference is dropped.
type Source struct {
	mu     sync.Mutex
	ctx    *Context
	format Format
	refs   int
}

func newSource(c *Context, f Format) *Source {
	return &Source{ctx: c, format: f, refs: 1}
}

// Format returns the descriptor the source was opened with.
func (s *Source) Format() Format {
	return s.format
}

// Close drops the caller's reference.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unrefLocked()
	return nil
}

func (s *Source) unrefLocked() {
	if s.refs == 0 {
		return
	}
	s.refs--
	if s.refs == 0 {
		s.ctx.Close()
	}
}

// Video opens a decoder for the best video stream.
func (s *Source) Video() (*VideoSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refs == 0 {
		return nil, errors.New("media: source is closed")
	}

	var (
		codec *C.AVCodecContext
		index C.int
	)
	if ret := C.media_open_video(s.ctx.fmtCtx, &codec, &index); ret < 0 {
		return nil, translateError("open video stream", ret, s.ctx.reader)
	}

	v := &VideoSource{
		src:    s,
		codec:  codec,
		stream: index,
		delay:  defaultFrameDelay,
	}
	v.pkt = C.av_packet_alloc()
	v.frame = C.av_frame_alloc()
	v.rgba = C.av_frame_alloc()
	if v.pkt == nil || v.frame == nil || v.rgba == nil {
		v.freeLocked()
		return nil, ports.ErrOutOfMemory
	}

	var num, den C.int
	C.media_frame_rate(s.ctx.fmtCtx, index, &num, &den)
	if num > 0 && den > 0 {
		v.delay = time.Duration(int64(time.Second) * int64(den) / int64(num))
	}

	s.refs++
	return v, nil
}

// VideoSource decodes frames from one video stream. It implements
// ports.FrameSource.
type VideoSource struct {
	src    *Source
	codec  *C.AVCodecContext
	stream C.int
	pkt    *C.AVPacket
	frame  *C.AVFrame
	rgba   *C.AVFrame
	sws    *C.struct_SwsContext
	delay  time.Duration

	flushed bool // flush packet sent
	done    bool // decoder fully drained
	err     error
	closed  bool
}

// Next returns the next decoded frame, or io.EOF once the stream is
// exhausted. Errors are sticky.
func (v *VideoSource) Next() (ports.VideoFrame, error) {
	v.src.mu.Lock()
	defer v.src.mu.Unlock()

	if v.closed {
		return ports.VideoFrame{}, errors.New("media: video source is closed")
	}
	if v.err != nil {
		return ports.VideoFrame{}, v.err
	}
	if v.done {
		return ports.VideoFrame{}, io.EOF
	}

	img, err := v.pull()
	if err != nil {
		if errors.Is(err, io.EOF) {
			v.done = true
		} else {
			v.err = err
		}
		return ports.VideoFrame{}, err
	}
	return ports.VideoFrame{Image: img, Delay: v.delay}, nil
}

func (v *VideoSource) pull() (*image.RGBA, error) {
	fmtCtx := v.src.ctx.fmtCtx
	reader := v.src.ctx.reader

	for {
		// Frames already buffered in the decoder go out before more input
		// is read.
		ret := C.avcodec_receive_frame(v.codec, v.frame)
		switch {
		case ret == 0:
			img, err := v.convert()
			C.av_frame_unref(v.frame)
			if err != nil {
				return nil, err
			}
			if img == nil {
				continue
			}
			return img, nil
		case ret == averrorEOF:
			return nil, io.EOF
		case int(ret) != averrorEAGAIN:
			return nil, translateError("decode", ret, reader)
		}

		if v.flushed {
			return nil, io.EOF
		}

		ret = C.av_read_frame(fmtCtx, v.pkt)
		if ret < 0 {
			if reader.Err() != nil || ret != averrorEOF {
				return nil, translateError("read packet", ret, reader)
			}
			// Demuxer exhausted: enter draining mode.
			if ret := C.avcodec_send_packet(v.codec, nil); ret < 0 && ret != averrorEOF {
				return nil, translateError("flush decoder", ret, reader)
			}
			v.flushed = true
			continue
		}

		if v.pkt.stream_index != v.stream {
			C.av_packet_unref(v.pkt)
			continue
		}

		ret = C.avcodec_send_packet(v.codec, v.pkt)
		C.av_packet_unref(v.pkt)
		if ret < 0 && int(ret) != averrorEAGAIN {
			return nil, translateError("send packet", ret, reader)
		}
	}
}

// convert copies the current decoded frame into an RGBA bitmap. It returns
// nil without error when the frame carries no image planes.
func (v *VideoSource) convert() (*image.RGBA, error) {
	ret := C.media_to_rgba(&v.sws, v.frame, v.rgba)
	if ret < 0 {
		return nil, translateError("convert frame", ret, nil)
	}
	if ret == 0 {
		return nil, nil
	}
	defer C.av_frame_unref(v.rgba)

	width := int(v.rgba.width)
	height := int(v.rgba.height)
	stride := int(v.rgba.linesize[0])
	src := unsafe.Slice((*byte)(unsafe.Pointer(v.rgba.data[0])), stride*height)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+width*4], src[y*stride:y*stride+width*4])
	}
	return img, nil
}

// Close frees the decoder and drops the reference on the source.
func (v *VideoSource) Close() error {
	v.src.mu.Lock()
	defer v.src.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true
	v.freeLocked()
	v.src.unrefLocked()
	return nil
}

func (v *VideoSource) freeLocked() {
	if v.sws != nil {
		C.sws_freeContext(v.sws)
		v.sws = nil
	}
	if v.rgba != nil {
		C.av_frame_free(&v.rgba)
	}
	if v.frame != nil {
		C.av_frame_free(&v.frame)
	}
	if v.pkt != nil {
		C.av_packet_free(&v.pkt)
	}
	if v.codec != nil {
		C.avcodec_free_context(&v.codec)
	}
}
