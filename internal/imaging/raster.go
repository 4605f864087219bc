package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
)

// Bit depths understood by Raster.
const (
	Depth8  = 8
	Depth16 = 16
)

// Raster is a single-band grid of intensity samples.
//
// The sample at (x, y) is Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)].
type Raster struct {
	// Pix holds the samples in row-major order.
	Pix []float64

	// Stride is the distance in Pix between vertically adjacent samples.
	Stride int

	// Rect is the raster's bounds.
	Rect image.Rectangle

	// Depth is the bit depth of the samples: Depth8 or Depth16.
	Depth int
}

// NewRaster allocates a zeroed raster of the given size and depth.
func NewRaster(width, height, depth int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Pix:    make([]float64, width*height),
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
		Depth:  depth,
	}
}

// Bounds returns the raster's bounds.
func (r *Raster) Bounds() image.Rectangle { return r.Rect }

// Width returns the number of columns.
func (r *Raster) Width() int { return r.Rect.Dx() }

// Height returns the number of rows.
func (r *Raster) Height() int { return r.Rect.Dy() }

// Empty reports whether the raster holds no samples.
func (r *Raster) Empty() bool { return r.Rect.Empty() }

// PixOffset returns the index of the sample at (x, y) in Pix.
func (r *Raster) PixOffset(x, y int) int {
	return (y-r.Rect.Min.Y)*r.Stride + (x - r.Rect.Min.X)
}

// At returns the sample at (x, y), or 0 outside the bounds.
func (r *Raster) At(x, y int) float64 {
	if !(image.Point{X: x, Y: y}.In(r.Rect)) {
		return 0
	}
	return r.Pix[r.PixOffset(x, y)]
}

// Set stores v at (x, y). Points outside the bounds are ignored.
func (r *Raster) Set(x, y int, v float64) {
	if !(image.Point{X: x, Y: y}.In(r.Rect)) {
		return
	}
	r.Pix[r.PixOffset(x, y)] = v
}

// row returns the samples of row y, limited to the raster's columns.
func (r *Raster) row(y int) []float64 {
	i := r.PixOffset(r.Rect.Min.X, y)
	return r.Pix[i : i+r.Rect.Dx()]
}

// FromImage converts img into a raster rebased to (0,0).
//
// Gray and Gray16 images keep their raw sample values. Everything else is
// reduced to 8-bit luminance first.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()

	switch src := img.(type) {
	case *image.Gray16:
		r := NewRaster(b.Dx(), b.Dy(), Depth16)
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				r.Pix[y*r.Stride+x] = float64(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
		return r
	case *image.Gray:
		return fromGray(src)
	default:
		return fromRGBA(effect.Grayscale(img))
	}
}

// fromRGBA reads the luminance written by effect.Grayscale, which stores it
// in all three colour channels.
func fromRGBA(src *image.RGBA) *Raster {
	b := src.Bounds()
	r := NewRaster(b.Dx(), b.Dy(), Depth8)
	for y := 0; y < b.Dy(); y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			r.Pix[y*r.Stride+x] = float64(src.Pix[off+4*x])
		}
	}
	return r
}

func fromGray(src *image.Gray) *Raster {
	b := src.Bounds()
	r := NewRaster(b.Dx(), b.Dy(), Depth8)
	for y := 0; y < b.Dy(); y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			r.Pix[y*r.Stride+x] = float64(src.Pix[off+x])
		}
	}
	return r
}

// ToImage converts the raster into an image of its bit depth, rebased to (0,0).
// Samples are rounded and clamped to the depth's range.
func (r *Raster) ToImage() image.Image {
	w, h := r.Width(), r.Height()
	if r.Depth == Depth16 {
		img := image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := uint16(clamp(r.Pix[r.PixOffset(r.Rect.Min.X+x, r.Rect.Min.Y+y)], math.MaxUint16))
				i := img.PixOffset(x, y)
				img.Pix[i] = uint8(v >> 8)
				img.Pix[i+1] = uint8(v)
			}
		}
		return img
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[img.PixOffset(x, y)] = uint8(clamp(r.Pix[r.PixOffset(r.Rect.Min.X+x, r.Rect.Min.Y+y)], math.MaxUint8))
		}
	}
	return img
}

func clamp(v, max float64) float64 {
	v = math.Round(v)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// String describes the raster's bounds and depth.
func (r *Raster) String() string {
	return fmt.Sprintf("raster %v (%d-bit)", r.Rect, r.Depth)
}
