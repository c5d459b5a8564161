// Package ggrenderer draws annotated debug frames with fogleman/gg.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/user/framescribe/pkg/ports"
)

const (
	lineSpacing        = 1.4
	defaultJPEGQuality = 85
)

type faceKey struct {
	path string
	size float64
}

// Renderer implements ports.Renderer. Font faces are parsed once per
// path and size and shared by every canvas it creates.
type Renderer struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
	png   png.Encoder
}

// New creates a Renderer. Debug frames favour encode speed over size.
func New() *Renderer {
	return &Renderer{
		faces: make(map[faceKey]font.Face),
		png:   png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Canvas{dc: dc, renderer: r}
}

// EncodeImage encodes img as JPEG or PNG. A JPEG quality outside 1..100
// falls back to 85; PNG ignores quality.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case ports.FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = defaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := r.png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format %d", format)
	}
	return buf.Bytes(), nil
}

// ResizeImage scales img to exactly width x height.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// face returns the cached face for path at size, loading it on first use.
func (r *Renderer) face(path string, size float64) (font.Face, error) {
	key := faceKey{path, size}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(path, size)
	if err != nil {
		return nil, err
	}
	r.faces[key] = f
	return f, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas on a gg.Context.
type Canvas struct {
	dc       *gg.Context
	renderer *Renderer
}

func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

func (c *Canvas) DrawRect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

// DrawText wraps text to maxWidth with its top-left corner at x, y. Without
// a usable FontPath the built-in bitmap face is used.
func (c *Canvas) DrawText(text string, x, y, maxWidth int, style ports.TextStyle) {
	if style.FontPath != "" {
		if f, err := c.renderer.face(style.FontPath, style.FontSize); err == nil {
			c.dc.SetFontFace(f)
		}
	}
	c.dc.SetColor(style.Color)
	c.dc.DrawStringWrapped(text, float64(x), float64(y), 0, 0, float64(maxWidth), lineSpacing, gg.AlignLeft)
}

func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
