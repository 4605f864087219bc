package tile

import (
	"fmt"
	"image"
)

// Box is a tile's region in source coordinates. Ends are exclusive.
type Box struct {
	RowStart int `json:"row_start"`
	RowEnd   int `json:"row_end"`
	ColStart int `json:"col_start"`
	ColEnd   int `json:"col_end"`
}

// NewBox returns the box of a height x width tile whose top-left sample sits
// at (row, col) in the source.
func NewBox(row, col, height, width int) Box {
	return Box{RowStart: row, RowEnd: row + height, ColStart: col, ColEnd: col + width}
}

// BoxFromRect converts an image rectangle (X = column, Y = row) into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{RowStart: r.Min.Y, RowEnd: r.Max.Y, ColStart: r.Min.X, ColEnd: r.Max.X}
}

// Height returns the number of rows in the box.
func (b Box) Height() int { return b.RowEnd - b.RowStart }

// Width returns the number of columns in the box.
func (b Box) Width() int { return b.ColEnd - b.ColStart }

// Size returns the box's shape.
func (b Box) Size() Size { return Size{Rows: b.Height(), Cols: b.Width()} }

// Empty reports whether the box contains no samples.
func (b Box) Empty() bool { return b.RowEnd <= b.RowStart || b.ColEnd <= b.ColStart }

// Rect returns the box as an image rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.ColStart, b.RowStart, b.ColEnd, b.RowEnd)
}

// Within reports whether the box is non-empty and lies inside bounds.
func (b Box) Within(bounds image.Rectangle) bool {
	return !b.Empty() && b.Rect().In(bounds)
}

func (b Box) String() string {
	return fmt.Sprintf("rows [%d,%d) cols [%d,%d)", b.RowStart, b.RowEnd, b.ColStart, b.ColEnd)
}

// Size is a shape in rows and columns.
type Size struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Rows, s.Cols) }
