//go:build ffmpeg && cgo

package media

/*
#include "media_ffmpeg.h"
*/
import "C"

import (
	"unsafe"
)

// probe asks libavformat to identify the prefix. The strict pass only
// accepts a score above AVPROBE_SCORE_RETRY; the relaxed pass accepts any
// positive score.
func probe(b []byte, strict bool) (Format, bool) {
	n := len(b)

	// The prober may read up to ProbePadding bytes past the data, which must
	// be zero.
	scratch := C.av_mallocz(C.size_t(n + ProbePadding))
	if scratch == nil {
		return Format{}, false
	}
	defer C.av_free(scratch)
	if n > 0 {
		C.memcpy(scratch, unsafe.Pointer(&b[0]), C.size_t(n))
	}

	filename := C.CString(probeFilename)
	defer C.free(unsafe.Pointer(filename))

	var pd C.AVProbeData
	pd.filename = filename
	pd.buf = (*C.uchar)(scratch)
	pd.buf_size = C.int(n)

	score := C.int(0)
	if strict {
		score = probeScoreRetry
	}
	ifmt := C.av_probe_input_format2(&pd, 1, &score)
	if ifmt == nil {
		return Format{}, false
	}
	return formatFromNative(ifmt), true
}

func formatFromNative(ifmt *C.AVInputFormat) Format {
	return Format{
		Name:        C.GoString(ifmt.name),
		Description: C.GoString(ifmt.long_name),
		Extensions:  splitList(C.GoString(ifmt.extensions)),
		MIMETypes:   splitList(C.GoString(ifmt.mime_type)),
		native:      unsafe.Pointer(ifmt),
	}
}
