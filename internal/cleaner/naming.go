package cleaner

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedName is returned when a tile filename does not follow
// <origin>_x<col>_y<row><ext>.
var ErrMalformedName = errors.New("malformed tile filename")

// ErrSourceUnreadable wraps the error of a source raster that could not be
// opened or decoded.
var ErrSourceUnreadable = errors.New("source raster unreadable")

// SourceUnreadablePrefix marks failed tiles whose source raster could not be read.
const SourceUnreadablePrefix = "find"

// TileName is the parsed form of <origin>_x<col>_y<row><ext>.
type TileName struct {
	Origin string
	Col    int
	Row    int
	Ext    string
}

// ParseTileName parses the base name of path. The last "_x" and the "_y"
// after it delimit the offsets, so origins may contain underscores.
func ParseTileName(path string) (TileName, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	xi := strings.LastIndex(stem, "_x")
	if xi <= 0 {
		return TileName{}, fmt.Errorf("%q: missing _x<col>: %w", base, ErrMalformedName)
	}
	yi := strings.LastIndex(stem[xi:], "_y")
	if yi < 0 {
		return TileName{}, fmt.Errorf("%q: missing _y<row>: %w", base, ErrMalformedName)
	}
	yi += xi

	col, err := parseOffset(stem[xi+2 : yi])
	if err != nil {
		return TileName{}, fmt.Errorf("%q: column offset: %w", base, err)
	}
	row, err := parseOffset(stem[yi+2:])
	if err != nil {
		return TileName{}, fmt.Errorf("%q: row offset: %w", base, err)
	}

	return TileName{Origin: stem[:xi], Col: col, Row: row, Ext: ext}, nil
}

func parseOffset(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("invalid offset %q: %w", s, ErrMalformedName)
	}
	return n, nil
}

// String formats the name as <origin>_x<col>_y<row><ext>.
func (n TileName) String() string {
	return fmt.Sprintf("%s_x%d_y%d%s", n.Origin, n.Col, n.Row, n.Ext)
}

// WithOffset returns the name of the same origin at another offset.
func (n TileName) WithOffset(col, row int) TileName {
	n.Col = col
	n.Row = row
	return n
}

// SourceName returns the file name of the tile's source raster.
func (n TileName) SourceName() string {
	return n.Origin + n.Ext
}
