// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/user/framescribe/pkg/ports"
)

const (
	// Height of the caption band under each saved frame.
	captionBand = 48
	padding     = 6

	// Frames wider than this are scaled down before annotating.
	maxWidth = 640
)

var (
	bandColor = color.RGBA{R: 24, G: 24, B: 24, A: 255}
	textColor = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	ruleColor = color.RGBA{R: 255, G: 170, B: 0, A: 255}
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveKeptFrame saves a kept frame with its caption drawn underneath.
func (s *Sink) SaveKeptFrame(index int, img image.Image, caption string) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}

	b := img.Bounds()
	if b.Dx() > maxWidth {
		h := b.Dy() * maxWidth / b.Dx()
		img = s.renderer.ResizeImage(img, maxWidth, max(h, 1))
		b = img.Bounds()
	}
	canvas := s.renderer.CreateCanvas(b.Dx(), b.Dy()+captionBand, bandColor)
	canvas.DrawImage(img, 0, 0)
	canvas.DrawRect(0, b.Dy(), b.Dx(), 2, ruleColor)
	if caption == "" {
		caption = "(no caption)"
	}
	canvas.DrawText(fmt.Sprintf("#%d %s", index, caption), padding, b.Dy()+2+padding, b.Dx()-2*padding, ports.TextStyle{
		FontSize: 13,
		Color:    textColor,
	})

	data, err := s.renderer.EncodeImage(canvas.ToImage(), ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// SaveCaptionsJSON saves the accepted captions.
func (s *Sink) SaveCaptionsJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "captions.json")
	return s.fs.WriteFile(path, data)
}

// SaveSummary saves the final summary text.
func (s *Sink) SaveSummary(text string) error {
	path := filepath.Join(s.baseDir, "summary.txt")
	return s.fs.WriteFile(path, []byte(text+"\n"))
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
