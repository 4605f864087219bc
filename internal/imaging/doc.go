// Package imaging provides the single-band raster buffer used by the tile cleaner.
//
// This package implements the raster side of tile cleaning: decoding raster
// files into intensity samples, caching source rasters, taking zero-copy
// windows and copied crops, and computing per-row and per-column means.
// It never decides anything about tile geometry; that belongs to package tile.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: column (0 = leftmost column)
//   - Y: row (0 = topmost row)
//   - For regions, (Min.X, Min.Y) is inclusive and (Max.X, Max.Y) is exclusive
//
// Windows keep the coordinates of the raster they were taken from, the same
// way image.Gray.SubImage does. A window of a source raster at a tile's box
// is therefore still addressed in source coordinates. Crops are copies and
// are rebased to (0,0).
//
// # Sample Representation
//
// Samples are stored as float64 intensities. *image.Gray and *image.Gray16
// inputs keep their raw sample values (0-255 and 0-65535), so thresholds are
// expressed in the units of the file. Any other color model is reduced to
// 8-bit luminance on load. The bit depth is remembered and restored on save.
//
// # Thread Safety
//
// RasterCache is safe for concurrent use. A Raster is safe for concurrent
// reads; windows share storage with their parent, so writes through one are
// visible through the other.
//
// # Error Handling
//
// Functions return errors for:
//   - Regions that are empty or fall outside the raster bounds
//   - File I/O errors during loading and saving
//   - Decode and encode errors from the underlying codecs
package imaging
