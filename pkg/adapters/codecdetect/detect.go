// Package codecdetect inspects the video track of seekable MP4 files.
package codecdetect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when a file has no video track.
var ErrNoVideoTrack = errors.New("codecdetect: no video track found")

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

var sampleEntryCodecs = map[string]Codec{
	"avc1": CodecH264,
	"avc3": CodecH264,
	"hvc1": CodecHEVC,
	"hev1": CodecHEVC,
	"av01": CodecAV1,
	"vp09": CodecVP9,
}

// VideoTrack describes the first video track of an MP4 file.
type VideoTrack struct {
	Codec       Codec
	SampleEntry string // Four-character sample entry type, e.g. "avc1"
	Width       int
	Height      int
	Timescale   uint32
	Duration    time.Duration // Zero for fragmented files
	Samples     int           // Zero for fragmented files
}

// InspectFile inspects the MP4 file at path.
func InspectFile(path string) (VideoTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return VideoTrack{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Inspect(f)
}

// Inspect decodes the box structure of r and describes its first video track.
func Inspect(r io.ReadSeeker) (VideoTrack, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return VideoTrack{}, fmt.Errorf("decode mp4: %w", err)
	}

	var traks []*mp4.TrakBox
	if mp4File.Moov != nil {
		traks = append(traks, mp4File.Moov.Traks...)
	}
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		traks = append(traks, mp4File.Init.Moov.Traks...)
	}

	for _, trak := range traks {
		if track, ok := inspectTrack(trak); ok {
			return track, nil
		}
	}
	return VideoTrack{}, ErrNoVideoTrack
}

func inspectTrack(trak *mp4.TrakBox) (VideoTrack, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return VideoTrack{}, false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return VideoTrack{}, false
	}
	stbl := trak.Mdia.Minf.Stbl

	track := VideoTrack{Codec: CodecUnknown}
	for _, child := range stbl.Stsd.Children {
		track.SampleEntry = child.Type()
		if codec, ok := sampleEntryCodecs[child.Type()]; ok {
			track.Codec = codec
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			track.Width = int(vse.Width)
			track.Height = int(vse.Height)
		}
		break
	}

	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		track.Timescale = mdhd.Timescale
		track.Duration = time.Duration(float64(mdhd.Duration) / float64(mdhd.Timescale) * float64(time.Second))
	}
	if stbl.Stsz != nil {
		track.Samples = int(stbl.Stsz.SampleNumber)
	}
	return track, true
}
