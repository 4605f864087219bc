package imaging

import (
	"errors"
	"fmt"
	"image"
)

// ErrEmptyRegion is returned when a region has no samples.
var ErrEmptyRegion = errors.New("empty region")

// checkRegion validates that rect is non-empty and lies inside r.
func (r *Raster) checkRegion(rect image.Rectangle) error {
	if rect.Empty() {
		return fmt.Errorf("invalid region %v: %w", rect, ErrEmptyRegion)
	}
	if !rect.In(r.Rect) {
		return fmt.Errorf("region %v outside raster bounds %v", rect, r.Rect)
	}
	return nil
}

// Window returns a view of the region rect. The view shares samples with r
// and keeps r's coordinates.
func (r *Raster) Window(rect image.Rectangle) (*Raster, error) {
	if err := r.checkRegion(rect); err != nil {
		return nil, err
	}

	i := r.PixOffset(rect.Min.X, rect.Min.Y)
	// Trim the tail so the view cannot reach rows past rect.
	j := r.PixOffset(rect.Max.X-1, rect.Max.Y-1) + 1
	return &Raster{
		Pix:    r.Pix[i:j:j],
		Stride: r.Stride,
		Rect:   rect,
		Depth:  r.Depth,
	}, nil
}

// Crop copies the region rect into a new raster rebased to (0,0).
func (r *Raster) Crop(rect image.Rectangle) (*Raster, error) {
	if err := r.checkRegion(rect); err != nil {
		return nil, err
	}

	out := NewRaster(rect.Dx(), rect.Dy(), r.Depth)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := r.PixOffset(rect.Min.X, y)
		copy(out.Pix[(y-rect.Min.Y)*out.Stride:], r.Pix[i:i+rect.Dx()])
	}
	return out, nil
}
