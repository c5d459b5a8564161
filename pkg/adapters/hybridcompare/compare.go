// Package hybridcompare scores how alike two frames look.
//
// Both frames are downscaled to a common grid and converted to YUV. Luma is
// compared structurally (mean SSIM over 8x8 windows) and chroma by RMS
// distance normalised to the largest possible chroma offset. The score is
// the lower of the two, so a frame must match in both structure and colour
// to count as similar. Grayscale content has no chroma distance and is
// judged on structure alone.
package hybridcompare

import (
	"errors"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/user/framescribe/pkg/ports"
)

const (
	// DefaultMaxSide is the longest side of the comparison grid.
	DefaultMaxSide = 128

	window = 8
	stride = 4

	// SSIM stabilisers for a dynamic range of 1.
	c1 = 0.01 * 0.01
	c2 = 0.03 * 0.03

	// maxChroma is the largest chroma magnitude, with U and V in [-0.5, 0.5].
	maxChroma = 0.5 * math.Sqrt2
)

var errNilImage = errors.New("hybridcompare: nil image")

// Comparer implements ports.ImageComparer.
type Comparer struct {
	maxSide int
	scaler  draw.Scaler
}

// New creates a Comparer with the default grid size.
func New() *Comparer {
	return NewWithSize(DefaultMaxSide)
}

// NewWithSize creates a Comparer whose grid's longest side is maxSide.
func NewWithSize(maxSide int) *Comparer {
	if maxSide < window {
		maxSide = window
	}
	return &Comparer{maxSide: maxSide, scaler: draw.ApproxBiLinear}
}

// Compare returns a similarity score in [0, 1]; 1 means identical.
func (c *Comparer) Compare(a, b *image.RGBA) (float64, error) {
	if a == nil || b == nil {
		return 0, errNilImage
	}
	if a.Bounds().Empty() || b.Bounds().Empty() {
		return 0, errors.New("hybridcompare: empty image")
	}

	grid := c.grid(a.Bounds())
	pa := toYUV(c.resample(a, grid))
	pb := toYUV(c.resample(b, grid))

	luma := clamp01(meanSSIM(pa.y, pb.y, grid.Dx(), grid.Dy()))
	chroma := clamp01(1 - chromaRMS(pa, pb)/maxChroma)

	return min(luma, chroma), nil
}

// grid fits r into a maxSide box, keeping aspect ratio.
func (c *Comparer) grid(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	if w <= c.maxSide && h <= c.maxSide {
		return image.Rect(0, 0, w, h)
	}
	scale := float64(c.maxSide) / float64(max(w, h))
	return image.Rect(0, 0, max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale)))
}

func (c *Comparer) resample(src *image.RGBA, grid image.Rectangle) *image.RGBA {
	if src.Bounds().Size() == grid.Size() && src.Bounds().Min == (image.Point{}) {
		return src
	}
	dst := image.NewRGBA(grid)
	c.scaler.Scale(dst, grid, src, src.Bounds(), draw.Src, nil)
	return dst
}

type planes struct {
	y, u, v []float64
}

// toYUV converts to BT.601 YUV with Y in [0,1] and U, V in [-0.5, 0.5].
func toYUV(img *image.RGBA) planes {
	n := img.Bounds().Dx() * img.Bounds().Dy()
	p := planes{y: make([]float64, n), u: make([]float64, n), v: make([]float64, n)}

	i := 0
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		row := img.Pix[img.PixOffset(img.Rect.Min.X, y):]
		for x := 0; x < img.Rect.Dx(); x++ {
			r := float64(row[4*x]) / 255
			g := float64(row[4*x+1]) / 255
			b := float64(row[4*x+2]) / 255
			p.y[i] = 0.299*r + 0.587*g + 0.114*b
			p.u[i] = -0.168736*r - 0.331264*g + 0.5*b
			p.v[i] = 0.5*r - 0.418688*g - 0.081312*b
			i++
		}
	}
	return p
}

func chromaRMS(a, b planes) float64 {
	if len(a.u) == 0 {
		return 0
	}
	sum := 0.0
	for i := range a.u {
		du := a.u[i] - b.u[i]
		dv := a.v[i] - b.v[i]
		sum += (du*du + dv*dv) / 2
	}
	return math.Sqrt(sum / float64(len(a.u)))
}

// meanSSIM averages SSIM over sliding windows. Images smaller than a window
// are treated as a single window.
func meanSSIM(a, b []float64, w, h int) float64 {
	if w < window || h < window {
		return ssim(a, b, w, 0, 0, w, h)
	}

	total, count := 0.0, 0
	for y := 0; y+window <= h; y += stride {
		for x := 0; x+window <= w; x += stride {
			total += ssim(a, b, w, x, y, window, window)
			count++
		}
	}
	return total / float64(count)
}

func ssim(a, b []float64, w, x0, y0, ww, wh int) float64 {
	n := float64(ww * wh)

	var sumA, sumB float64
	for y := y0; y < y0+wh; y++ {
		for x := x0; x < x0+ww; x++ {
			sumA += a[y*w+x]
			sumB += b[y*w+x]
		}
	}
	muA, muB := sumA/n, sumB/n

	var varA, varB, cov float64
	for y := y0; y < y0+wh; y++ {
		for x := x0; x < x0+ww; x++ {
			da := a[y*w+x] - muA
			db := b[y*w+x] - muB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n
	varB /= n
	cov /= n

	return ((2*muA*muB + c1) * (2*cov + c2)) /
		((muA*muA + muB*muB + c1) * (varA + varB + c2))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

var _ ports.ImageComparer = (*Comparer)(nil)
