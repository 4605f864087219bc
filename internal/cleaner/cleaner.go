// Package cleaner runs the tile resolver over a directory of tiles. It
// parses tile filenames, loads the source rasters, and writes each result
// back under the tile naming convention or into the failure directory.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/tile-clean/internal/config"
	"github.com/ironsheep/tile-clean/internal/imaging"
	"github.com/ironsheep/tile-clean/internal/logging"
	"github.com/ironsheep/tile-clean/internal/tile"
)

// Cleaner resolves the tiles of one tile directory against their sources.
type Cleaner struct {
	cfg     *config.Config
	params  tile.Params
	sources *imaging.RasterCache
}

// New creates a Cleaner for cfg.
func New(cfg *config.Config) *Cleaner {
	return &Cleaner{
		cfg:     cfg,
		params:  cfg.Params(),
		sources: imaging.NewRasterCache(),
	}
}

// Run processes every tile in the tile directory. Per-tile failures are
// recorded in the report and never stop the batch. The returned error joins
// the malformed filename errors, or is the context error when the run was
// cancelled; tiles not yet started are then reported as skipped.
func (c *Cleaner) Run(ctx context.Context) (*Report, error) {
	tileDir := c.cfg.TilePath()
	paths, err := listTiles(tileDir, c.cfg.Paths.Extension)
	if err != nil {
		return nil, err
	}
	logging.Printf("processing %d tiles in %s", len(paths), tileDir)

	entries := make([]Entry, len(paths))
	names := make([]TileName, len(paths))
	pending := make(map[string]int)
	var malformed []error

	for i, p := range paths {
		name, err := ParseTileName(p)
		if err != nil {
			logging.Printf("malformed tile name: %v", err)
			malformed = append(malformed, err)
			entries[i] = Entry{Tile: filepath.Base(p), Status: StatusMalformed, Error: err.Error()}
			continue
		}
		names[i] = name
		pending[c.sourcePath(name)]++
	}

	var mu sync.Mutex
	release := func(src string) {
		mu.Lock()
		defer mu.Unlock()
		pending[src]--
		if pending[src] == 0 {
			c.sources.Evict(src)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Processing.Workers)

	for i, p := range paths {
		if entries[i].Status != "" {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			defer release(c.sourcePath(names[i]))
			if err := gctx.Err(); err != nil {
				entries[i] = Entry{Tile: filepath.Base(p), Status: StatusSkipped}
				return err
			}
			entries[i] = c.process(p, names[i])
			return nil
		})
	}
	waitErr := g.Wait()
	c.sources.Clear()

	report := newReport(tileDir, entries)
	logging.Printf("done: %d unchanged, %d trimmed, %d recovered, %d failed, %d source unreadable, %d malformed, %d errors",
		report.Counts.Unchanged, report.Counts.Trimmed, report.Counts.Recovered, report.Counts.Failed,
		report.Counts.SourceUnreadable, report.Counts.Malformed, report.Counts.Errors)

	if waitErr != nil {
		return report, waitErr
	}
	return report, errors.Join(malformed...)
}

// ProcessTile resolves a single tile file. It returns ErrMalformedName when
// the tile's origin and offset cannot be parsed from its name; every other
// failure is reported in the entry.
func (c *Cleaner) ProcessTile(path string) (Entry, error) {
	name, err := ParseTileName(path)
	if err != nil {
		return Entry{Tile: filepath.Base(path), Status: StatusMalformed, Error: err.Error()}, err
	}
	return c.process(path, name), nil
}

func (c *Cleaner) process(path string, name TileName) Entry {
	e := Entry{Tile: filepath.Base(path)}

	t, err := imaging.LoadRaster(path)
	if err != nil {
		logging.Printf("unreadable tile %s: %v", e.Tile, err)
		e.Status = StatusError
		e.Error = err.Error()
		return e
	}

	src, err := c.sources.Load(c.sourcePath(name))
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
		logging.Printf("%s: %v", e.Tile, err)
		e.Status = StatusSourceUnreadable
		e.Error = err.Error()
		return c.writeFailure(e, SourceUnreadablePrefix+name.String(), t)
	}

	initial := tile.NewBox(name.Row, name.Col, t.Height(), t.Width())
	res, err := tile.Resolve(src, initial, c.params)
	if err != nil {
		logging.Printf("cannot resolve %s: %v", e.Tile, err)
		e.Status = StatusFailed
		e.Error = err.Error()
		return c.writeFailure(e, name.String(), t)
	}
	e.Result = &res
	e.Status = statusOf(res.Outcome)
	logging.Debugf("%s: %s %s -> %s trimmed=%+v admitted=%+v",
		e.Tile, res.Outcome, res.Initial, res.Box, res.Trimmed, res.Admitted)

	if res.Outcome == tile.Failed {
		if res.Box.Empty() {
			return c.writeFailure(e, name.String(), t)
		}
		crop, err := src.Crop(res.Box.Rect())
		if err != nil {
			return c.writeFailure(e, name.String(), t)
		}
		return c.writeFailure(e, name.WithOffset(res.Box.ColStart, res.Box.RowStart).String(), crop)
	}

	crop, err := src.Crop(res.Box.Rect())
	if err != nil {
		e.Status = StatusError
		e.Error = err.Error()
		return e
	}
	out := filepath.Join(filepath.Dir(path), name.WithOffset(res.Box.ColStart, res.Box.RowStart).String())
	if err := imaging.SaveRaster(out, crop); err != nil {
		logging.Printf("failed to write %s: %v", out, err)
		e.Status = StatusError
		e.Error = err.Error()
		return e
	}
	e.Output = out

	if out != path && c.cfg.Processing.RemoveReplaced {
		if err := os.Remove(path); err != nil {
			logging.Printf("failed to remove replaced tile %s: %v", path, err)
		}
	}
	return e
}

// writeFailure writes r into the failure directory under base and records
// the output on e. A write error turns the entry into an error entry.
func (c *Cleaner) writeFailure(e Entry, base string, r *imaging.Raster) Entry {
	dir := c.cfg.FailPath()
	if err := EnsureDir(dir); err != nil {
		e.Status = StatusError
		e.Error = err.Error()
		return e
	}
	out := filepath.Join(dir, base)
	if err := imaging.SaveRaster(out, r); err != nil {
		logging.Printf("failed to write %s: %v", out, err)
		e.Status = StatusError
		if e.Error != "" {
			err = fmt.Errorf("%s: %w", e.Error, err)
		}
		e.Error = err.Error()
		return e
	}
	e.Output = out
	return e
}

func (c *Cleaner) sourcePath(name TileName) string {
	return filepath.Join(c.cfg.SourcePath(), name.SourceName())
}
