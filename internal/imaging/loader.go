package imaging

import (
	"fmt"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// RasterCache provides thread-safe caching of loaded rasters to avoid redundant disk reads.
//
// Source rasters are shared by every tile that was cut from them, so the
// cleaner loads each source once and evicts it after its last tile.
//
// RasterCache is safe for concurrent use by multiple goroutines. Two goroutines
// missing on the same path at once may both decode it; the last one stored wins
// and both callers receive an equivalent raster.
//
// # Example Usage
//
//	cache := imaging.NewRasterCache()
//	src, err := cache.Load("/data/Resampled/M1234.tif")
//	if err != nil {
//	    return err
//	}
//	// Use src...
//	cache.Evict("/data/Resampled/M1234.tif")
type RasterCache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewRasterCache creates and initializes a new empty raster cache.
func NewRasterCache() *RasterCache {
	return &RasterCache{
		rasters: make(map[string]*Raster),
	}
}

// Load retrieves a raster from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: File path to the raster. Any format LoadRaster accepts.
//
// Returns:
//   - *Raster: The single-band raster, shared by every caller of the same
//     path. Callers must not modify it.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The raster is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) will result in separate cache entries.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file cannot be decoded or holds no samples
//
// Decode failures are not cached, so a later Load of the same path tries the
// disk again.
func (c *RasterCache) Load(path string) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := LoadRaster(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Len returns the number of cached rasters.
func (c *RasterCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// Clear removes all rasters from the cache.
func (c *RasterCache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *RasterCache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// LoadRaster reads a raster file and converts it to a single-band raster.
//
// Parameters:
//   - path: File path to the raster. Supported formats are whatever
//     disintegration/imaging can open (TIFF, PNG, JPEG, GIF, BMP).
//
// Returns:
//   - *Raster: The raster rebased to (0,0). 8-bit and 16-bit gray files keep
//     their raw samples and depth; colour files are reduced to 8-bit luminance.
//   - error: Non-nil if the raster cannot be loaded.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be decoded
//   - Returns ErrEmptyRegion (wrapped) if the decoded image has no samples
func LoadRaster(path string) (*Raster, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}

	r := FromImage(img)
	if r.Empty() {
		return nil, fmt.Errorf("failed to load raster %s: %w", path, ErrEmptyRegion)
	}
	return r, nil
}

// SaveRaster writes r to path. The format is chosen from the file extension.
// Existing files are overwritten.
func SaveRaster(path string, r *Raster) error {
	if r.Empty() {
		return fmt.Errorf("failed to save raster %s: %w", path, ErrEmptyRegion)
	}
	if err := imaging.Save(r.ToImage(), path); err != nil {
		return fmt.Errorf("failed to save raster %s: %w", path, err)
	}
	return nil
}
