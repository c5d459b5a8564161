//go:build ffmpeg && cgo

package media

/*
#include "media_ffmpeg.h"
*/
import "C"

import (
	"fmt"
	"syscall"

	"github.com/user/framescribe/pkg/ports"
)

// AVERROR values used by the read callback and the decode loop.
const (
	averrorEOF    = -0x20464F45 // FFERRTAG('E','O','F',' ')
	averrorEAGAIN = -int(syscall.EAGAIN)
	averrorEIO    = -int(syscall.EIO)
	averrorENOMEM = -int(syscall.ENOMEM)

	// AVPROBE_SCORE_MAX / 4
	probeScoreRetry = 25
)

func avErrorString(code C.int) string {
	var buf [64]C.char // AV_ERROR_MAX_STRING_SIZE
	if C.av_strerror(code, &buf[0], C.size_t(len(buf))) < 0 {
		return fmt.Sprintf("unknown error %d", int(code))
	}
	return C.GoString(&buf[0])
}

// translateError converts a negative AVERROR into the pipeline error
// taxonomy. A failed read stashed on the reader takes precedence, since
// the demuxer only ever sees a generic code for it.
func translateError(op string, code C.int, r *Reader) error {
	if r != nil {
		if err := r.Err(); err != nil {
			return &ports.IOError{Op: op, Err: err}
		}
	}
	if int(code) == averrorENOMEM {
		return fmt.Errorf("%s: %w", op, ports.ErrOutOfMemory)
	}
	return &ports.NativeError{Op: op, Code: int(code), Message: avErrorString(code)}
}
