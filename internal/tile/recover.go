package tile

import (
	"image"

	"github.com/ironsheep/tile-clean/internal/imaging"
)

// gridBoundary returns the end of the last tile cut on an axis spanning
// [lo, hi) with the given target and stride, and the underflow past it.
func gridBoundary(lo, hi, target, stride int) (boundary, underflow int) {
	extent := hi - lo
	if stride <= 0 || target <= 0 || extent < target {
		return hi, 0
	}
	boundary = lo + (extent-target)/stride*stride + target
	return boundary, hi - boundary
}

// span is one axis of a box as seen by recovery.
type span struct {
	start, end int // the box on this axis
	lo, hi     int // the source on this axis
	underflow  int // samples past the last tile on the cut grid

	// admit reports whether line i is bright enough to recover.
	admit func(i int) bool

	// admitRange reports whether every line in [from, to) is bright enough.
	admitRange func(from, to int) bool
}

// extend decides how many lines to add before the start and after the end
// to recover a deficit of d lines. It returns (0, 0) when the axis cannot be
// recovered exactly.
func (s span) extend(d int) (before, after int) {
	if d <= 0 {
		return 0, 0
	}

	startPinned := s.start <= s.lo
	endPinned := s.end >= s.hi

	switch {
	case endPinned && !startPinned:
		if s.start-d >= s.lo && s.admitRange(s.start-d, s.start) {
			return d, 0
		}
	case startPinned && !endPinned:
		if s.end+d <= s.hi && s.admitRange(s.end, s.end+d) {
			return 0, d
		}
	case !startPinned && !endPinned:
		return s.split(d)
	default:
		if s.underflow >= d && s.end+d <= s.hi && s.admitRange(s.end, s.end+d) {
			return 0, d
		}
	}
	return 0, 0
}

// split scans both sides of an interior span, floor(d/2) lines before and
// the rest after, moving any shortfall on one side to the other.
func (s span) split(d int) (before, after int) {
	wantBefore := d / 2
	wantAfter := d - wantBefore

	before = s.scanBefore(wantBefore)
	if before < wantBefore {
		wantAfter += wantBefore - before
	}

	after = s.scanAfter(wantAfter)
	if after < wantAfter && before == wantBefore {
		before = s.scanBefore(d - after)
	}

	if before+after != d {
		return 0, 0
	}
	return before, after
}

// scanBefore admits lines start-1, start-2, ... until budget lines are
// admitted, a line is rejected or the source ends.
func (s span) scanBefore(budget int) int {
	n := 0
	for n < budget && s.start-n-1 >= s.lo && s.admit(s.start-n-1) {
		n++
	}
	return n
}

// scanAfter admits lines end, end+1, ... the same way.
func (s span) scanAfter(budget int) int {
	n := 0
	for n < budget && s.end+n < s.hi && s.admit(s.end+n) {
		n++
	}
	return n
}

// recoverColumns extends b horizontally to the target width where the source
// allows it. Column means are taken over b's rows.
func recoverColumns(src *imaging.Raster, b Box, p Params) Box {
	d := p.Target.Cols - b.Width()
	if d <= 0 {
		return b
	}

	bounds := src.Bounds()
	_, underflow := gridBoundary(bounds.Min.X, bounds.Max.X, p.Target.Cols, p.Stride)
	s := span{
		start:     b.ColStart,
		end:       b.ColEnd,
		lo:        bounds.Min.X,
		hi:        bounds.Max.X,
		underflow: underflow,
		admit: func(col int) bool {
			return src.RegionMean(image.Rect(col, b.RowStart, col+1, b.RowEnd)) > p.RecoverThreshold
		},
		admitRange: func(from, to int) bool {
			return src.MinColumnMean(image.Rect(from, b.RowStart, to, b.RowEnd)) > p.RecoverThreshold
		},
	}

	before, after := s.extend(d)
	b.ColStart -= before
	b.ColEnd += after
	return b
}

// recoverRows extends b vertically to the target height where the source
// allows it. Row means are taken over b's columns.
func recoverRows(src *imaging.Raster, b Box, p Params) Box {
	d := p.Target.Rows - b.Height()
	if d <= 0 {
		return b
	}

	bounds := src.Bounds()
	_, underflow := gridBoundary(bounds.Min.Y, bounds.Max.Y, p.Target.Rows, p.Stride)
	s := span{
		start:     b.RowStart,
		end:       b.RowEnd,
		lo:        bounds.Min.Y,
		hi:        bounds.Max.Y,
		underflow: underflow,
		admit: func(row int) bool {
			return src.RegionMean(image.Rect(b.ColStart, row, b.ColEnd, row+1)) > p.RecoverThreshold
		},
		admitRange: func(from, to int) bool {
			return src.MinRowMean(image.Rect(b.ColStart, from, b.ColEnd, to)) > p.RecoverThreshold
		},
	}

	before, after := s.extend(d)
	b.RowStart -= before
	b.RowEnd += after
	return b
}
