package filesink

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/user/framescribe/pkg/mocks"
	"github.com/user/framescribe/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(testBaseDir, fs, renderer)

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveKeptFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	canvas := &mocks.Canvas{}
	var canvasW, canvasH int
	renderer := &mocks.Renderer{
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas {
			canvasW, canvasH = width, height
			return canvas
		},
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			if format != ports.FormatPNG {
				t.Errorf("expected PNG, got %d", format)
			}
			return []byte{0x89, 0x50, 0x4E, 0x47}, nil
		},
	}
	sink := New(testBaseDir, fs, renderer)

	img := image.NewRGBA(image.Rect(0, 0, 64, 36))
	if err := sink.SaveKeptFrame(7, img, "a red car"); err != nil {
		t.Fatalf("SaveKeptFrame failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "frames", "frame-0007.png")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
	if canvasW != 64 || canvasH != 36+captionBand {
		t.Errorf("canvas = %dx%d, want %dx%d", canvasW, canvasH, 64, 36+captionBand)
	}
	if len(canvas.Texts) != 1 || canvas.Texts[0] != "#7 a red car" {
		t.Errorf("drawn text = %q", canvas.Texts)
	}
	if len(canvas.Rects) != 1 || canvas.Rects[0] != image.Rect(0, 36, 64, 38) {
		t.Errorf("separator = %v", canvas.Rects)
	}
}

func TestSink_SaveKeptFrameDownscalesWideFrames(t *testing.T) {
	fs := mocks.NewFileSystem()
	var resizedW, resizedH, canvasH int
	renderer := &mocks.Renderer{
		ResizeImageFunc: func(img image.Image, width, height int) image.Image {
			resizedW, resizedH = width, height
			return image.NewRGBA(image.Rect(0, 0, width, height))
		},
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas {
			canvasH = height
			return &mocks.Canvas{}
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveKeptFrame(2, image.NewRGBA(image.Rect(0, 0, 1920, 1080)), "wide"); err != nil {
		t.Fatalf("SaveKeptFrame failed: %v", err)
	}
	if resizedW != 640 || resizedH != 360 {
		t.Errorf("resized to %dx%d, want 640x360", resizedW, resizedH)
	}
	if canvasH != 360+captionBand {
		t.Errorf("canvas height = %d, want %d", canvasH, 360+captionBand)
	}
}

func TestSink_SaveKeptFrameWithoutCaption(t *testing.T) {
	fs := mocks.NewFileSystem()
	canvas := &mocks.Canvas{}
	renderer := &mocks.Renderer{
		CreateCanvasFunc: func(width, height int, bg color.Color) ports.Canvas { return canvas },
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveKeptFrame(0, image.NewRGBA(image.Rect(0, 0, 8, 8)), ""); err != nil {
		t.Fatalf("SaveKeptFrame failed: %v", err)
	}
	if len(canvas.Texts) != 1 || canvas.Texts[0] != "#0 (no caption)" {
		t.Errorf("drawn text = %q", canvas.Texts)
	}
}

func TestSink_SaveKeptFrameEncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("encoder broke")
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveKeptFrame(1, image.NewRGBA(image.Rect(0, 0, 8, 8)), "x"); err == nil {
		t.Error("expected error")
	}
}

func TestSink_SaveCaptionsJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`[{"frame_index": 0}]`)
	if err := sink.SaveCaptionsJSON(data); err != nil {
		t.Fatalf("SaveCaptionsJSON failed: %v", err)
	}

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "captions.json"))
	if !ok {
		t.Fatal("expected captions.json to be saved")
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveSummary(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	if err := sink.SaveSummary("A short clip."); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, "summary.txt"))
	if !ok {
		t.Fatal("expected summary.txt to be saved")
	}
	if string(saved) != "A short clip.\n" {
		t.Errorf("got %q", saved)
	}
}

func TestSink_WriteFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.Fail = errors.New("disk full")
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	if err := sink.SaveSummary("x"); !errors.Is(err, fs.Fail) {
		t.Errorf("expected disk full, got %v", err)
	}
	if err := sink.SaveKeptFrame(0, image.NewRGBA(image.Rect(0, 0, 4, 4)), "x"); !errors.Is(err, fs.Fail) {
		t.Errorf("expected disk full, got %v", err)
	}
	if len(fs.Written()) != 0 {
		t.Errorf("expected nothing written, got %v", fs.Written())
	}
}

func TestSink_Layout(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	for i := range 2 {
		if err := sink.SaveKeptFrame(i, image.NewRGBA(image.Rect(0, 0, 4, 4)), "x"); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.SaveCaptionsJSON([]byte("[]")); err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(testBaseDir, "captions.json"),
		filepath.Join(testBaseDir, "frames", "frame-0000.png"),
		filepath.Join(testBaseDir, "frames", "frame-0001.png"),
	}
	got := fs.Paths()
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path %d = %s, want %s", i, got[i], want[i])
		}
	}
	if ok, _ := fs.Exists(filepath.Join(testBaseDir, "frames")); !ok {
		t.Error("expected frames directory to exist")
	}
}
