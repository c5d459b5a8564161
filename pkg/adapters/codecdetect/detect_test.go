package codecdetect

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

func buildInit(t *testing.T, mediaType, sampleEntry string, width, height uint16) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(90000, mediaType, "und")
	if sampleEntry != "" {
		entry := mp4.CreateVisualSampleEntryBox(sampleEntry, width, height, nil)
		init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	}

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		t.Fatalf("encode init: %v", err)
	}
	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	tests := []struct {
		entry string
		want  Codec
	}{
		{"avc1", CodecH264},
		{"hvc1", CodecHEVC},
		{"av01", CodecAV1},
		{"vp09", CodecVP9},
		{"mp4v", CodecUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			data := buildInit(t, "video", tt.entry, 320, 240)

			track, err := Inspect(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}
			if track.Codec != tt.want {
				t.Errorf("codec = %s, want %s", track.Codec, tt.want)
			}
			if track.SampleEntry != tt.entry {
				t.Errorf("sample entry = %q, want %q", track.SampleEntry, tt.entry)
			}
			if track.Width != 320 || track.Height != 240 {
				t.Errorf("size = %dx%d, want 320x240", track.Width, track.Height)
			}
			if track.Timescale != 90000 {
				t.Errorf("timescale = %d, want 90000", track.Timescale)
			}
		})
	}
}

func TestInspect_NoVideoTrack(t *testing.T) {
	data := buildInit(t, "audio", "", 0, 0)

	_, err := Inspect(bytes.NewReader(data))
	if !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}
}

func TestInspect_NotMP4(t *testing.T) {
	_, err := Inspect(bytes.NewReader([]byte("GIF89a not an mp4 at all")))
	if err == nil {
		t.Error("expected error")
	}
}

func TestInspectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.mp4")
	if err := os.WriteFile(path, buildInit(t, "video", "avc1", 640, 360), 0o644); err != nil {
		t.Fatal(err)
	}

	track, err := InspectFile(path)
	if err != nil {
		t.Fatalf("InspectFile failed: %v", err)
	}
	if track.Codec != CodecH264 || track.Width != 640 {
		t.Errorf("unexpected track: %+v", track)
	}

	if _, err := InspectFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
