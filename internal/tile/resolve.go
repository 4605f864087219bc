package tile

import (
	"errors"
	"fmt"

	"github.com/ironsheep/tile-clean/internal/imaging"
)

var (
	// ErrEmptySource is returned when the source raster has no samples.
	ErrEmptySource = errors.New("empty source raster")

	// ErrBoxOutOfBounds is returned when the initial box does not lie inside the source.
	ErrBoxOutOfBounds = errors.New("tile box outside source raster")
)

// Params controls the resolver. DefaultParams returns the standard values.
type Params struct {
	// Target is the only acceptable final tile shape.
	Target Size

	// TrimThreshold: margin lines with mean <= TrimThreshold are trimmed.
	TrimThreshold float64

	// RecoverThreshold: scanned lines with mean > RecoverThreshold are admitted.
	RecoverThreshold float64

	// Stride is the step of the grid the tiles were cut on; 0 disables it.
	Stride int
}

// DefaultParams returns a 32x32 target, trim at <= 5, admit at > 3 and a
// half-tile cut stride.
func DefaultParams() Params {
	return Params{
		Target:           Size{Rows: 32, Cols: 32},
		TrimThreshold:    5,
		RecoverThreshold: 3,
		Stride:           16,
	}
}

// Outcome is the result category of a resolution.
type Outcome int

const (
	// Unchanged: the tile already had the target size and no dark margins.
	Unchanged Outcome = iota
	// Trimmed: margins were trimmed or excess truncated and the target size was reached.
	Trimmed
	// Recovered: lines were recovered from the source to reach the target size.
	Recovered
	// Failed: the target size could not be reached.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Trimmed:
		return "trimmed"
	case Recovered:
		return "recovered"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, c := range []Outcome{Unchanged, Trimmed, Recovered, Failed} {
		if c.String() == string(text) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Edges counts lines per box edge.
type Edges struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Total returns the sum over all edges.
func (e Edges) Total() int { return e.Left + e.Right + e.Top + e.Bottom }

// Result is the outcome of one resolution.
type Result struct {
	Outcome Outcome `json:"outcome"`

	// Box is the final box. It has the target size unless Outcome is Failed.
	Box Box `json:"box"`

	// Initial is the box Resolve started from.
	Initial Box `json:"initial"`

	// Modified reports whether Box differs from Initial, i.e. whether the
	// tile must be written under a new name.
	Modified bool `json:"modified"`

	// Trimmed counts dark margin lines removed per edge.
	Trimmed Edges `json:"trimmed"`

	// Truncated counts excess lines dropped from the end of oversized axes.
	Truncated Size `json:"truncated"`

	// Admitted counts lines recovered from the source per edge.
	Admitted Edges `json:"admitted"`
}

// Resolve trims and recovers the tile at initial within src.
//
// Parameters:
//   - src: The source raster the tile was cut from. It is only read.
//   - initial: The tile's box in source coordinates, taken from its filename
//     offset and its own height and width.
//   - p: Target size, thresholds and cut-grid stride.
//
// Returns:
//   - Result: The outcome, the final box and per-edge counts of trimmed,
//     truncated and admitted lines. On Failed the box is whatever partial box
//     resulted and is not target-sized; it is empty when every line was dark.
//   - error: Non-nil only when the inputs violate Resolve's preconditions.
//
// The phases run in a fixed order (trim left, right, top, bottom, truncate,
// recover columns, recover rows) and each one measures the source afresh.
// See the package documentation for the recovery rules.
//
// # Errors
//
//   - Returns ErrEmptySource if src is nil or has no samples
//   - Returns ErrBoxOutOfBounds (wrapped) if initial is not inside src
//
// Geometry that cannot reach the target size is not an error; it yields the
// Failed outcome.
func Resolve(src *imaging.Raster, initial Box, p Params) (Result, error) {
	if src == nil || src.Empty() {
		return Result{}, ErrEmptySource
	}
	if !initial.Within(src.Bounds()) {
		return Result{}, fmt.Errorf("box %v, source %v: %w", initial, src.Bounds(), ErrBoxOutOfBounds)
	}

	res := Result{Initial: initial}

	b := trimLeft(src, initial, p.TrimThreshold)
	b = trimRight(src, b, p.TrimThreshold)
	b = trimTop(src, b, p.TrimThreshold)
	b = trimBottom(src, b, p.TrimThreshold)
	res.Trimmed = Edges{
		Left:   b.ColStart - initial.ColStart,
		Right:  initial.ColEnd - b.ColEnd,
		Top:    b.RowStart - initial.RowStart,
		Bottom: initial.RowEnd - b.RowEnd,
	}

	if b.Empty() {
		res.Box = b
		res.Outcome = Failed
		res.Modified = true
		return res, nil
	}

	truncated := truncate(b, p.Target)
	res.Truncated = Size{Rows: b.Height() - truncated.Height(), Cols: b.Width() - truncated.Width()}
	b = truncated

	pre := b
	b = recoverColumns(src, b, p)
	b = recoverRows(src, b, p)
	res.Admitted = Edges{
		Left:   pre.ColStart - b.ColStart,
		Right:  b.ColEnd - pre.ColEnd,
		Top:    pre.RowStart - b.RowStart,
		Bottom: b.RowEnd - pre.RowEnd,
	}

	res.Box = b
	res.Modified = b != initial
	switch {
	case b.Size() != p.Target:
		res.Outcome = Failed
	case res.Admitted.Total() > 0:
		res.Outcome = Recovered
	case res.Modified:
		res.Outcome = Trimmed
	default:
		res.Outcome = Unchanged
	}
	return res, nil
}

// columnMeans returns the column means of src within b, left to right.
func columnMeans(src *imaging.Raster, b Box) []float64 {
	if b.Empty() {
		return nil
	}
	win, err := src.Window(b.Rect())
	if err != nil {
		return nil
	}
	return win.ColumnMeans()
}

// rowMeans returns the row means of src within b, top to bottom.
func rowMeans(src *imaging.Raster, b Box) []float64 {
	if b.Empty() {
		return nil
	}
	win, err := src.Window(b.Rect())
	if err != nil {
		return nil
	}
	return win.RowMeans()
}

// darkPrefix counts the leading means <= threshold.
func darkPrefix(means []float64, threshold float64) int {
	n := 0
	for n < len(means) && means[n] <= threshold {
		n++
	}
	return n
}

// darkSuffix counts the trailing means <= threshold.
func darkSuffix(means []float64, threshold float64) int {
	n := 0
	for n < len(means) && means[len(means)-1-n] <= threshold {
		n++
	}
	return n
}

func trimLeft(src *imaging.Raster, b Box, threshold float64) Box {
	b.ColStart += darkPrefix(columnMeans(src, b), threshold)
	return b
}

func trimRight(src *imaging.Raster, b Box, threshold float64) Box {
	b.ColEnd -= darkSuffix(columnMeans(src, b), threshold)
	return b
}

func trimTop(src *imaging.Raster, b Box, threshold float64) Box {
	b.RowStart += darkPrefix(rowMeans(src, b), threshold)
	return b
}

func trimBottom(src *imaging.Raster, b Box, threshold float64) Box {
	b.RowEnd -= darkSuffix(rowMeans(src, b), threshold)
	return b
}

// truncate drops the excess from the end of any axis longer than target.
// The start coordinates are kept.
func truncate(b Box, target Size) Box {
	if b.Width() > target.Cols {
		b.ColEnd = b.ColStart + target.Cols
	}
	if b.Height() > target.Rows {
		b.RowEnd = b.RowStart + target.Rows
	}
	return b
}
