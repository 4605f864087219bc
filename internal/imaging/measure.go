package imaging

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnMeans returns the mean intensity of every column of r, left to right.
func (r *Raster) ColumnMeans() []float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	means := make([]float64, w)
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = r.Pix[y*r.Stride+x]
		}
		means[x] = stat.Mean(col, nil)
	}
	return means
}

// RowMeans returns the mean intensity of every row of r, top to bottom.
func (r *Raster) RowMeans() []float64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return nil
	}

	means := make([]float64, h)
	for y := 0; y < h; y++ {
		means[y] = stat.Mean(r.row(r.Rect.Min.Y+y), nil)
	}
	return means
}

// RegionMean returns the mean intensity of rect, or NaN when rect is empty
// or outside r. NaN compares false against any threshold.
func (r *Raster) RegionMean(rect image.Rectangle) float64 {
	win, err := r.Window(rect)
	if err != nil {
		return math.NaN()
	}

	var sum float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		sum += floats.Sum(win.row(y))
	}
	return sum / float64(rect.Dx()*rect.Dy())
}

// MinColumnMean returns the smallest column mean within rect, or NaN when
// rect is empty or outside r.
func (r *Raster) MinColumnMean(rect image.Rectangle) float64 {
	win, err := r.Window(rect)
	if err != nil {
		return math.NaN()
	}
	return floats.Min(win.ColumnMeans())
}

// MinRowMean returns the smallest row mean within rect, or NaN when rect is
// empty or outside r.
func (r *Raster) MinRowMean(rect image.Rectangle) float64 {
	win, err := r.Window(rect)
	if err != nil {
		return math.NaN()
	}
	return floats.Min(win.RowMeans())
}
