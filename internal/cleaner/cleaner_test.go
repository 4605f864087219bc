package cleaner

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/ironsheep/tile-clean/internal/config"
	"github.com/ironsheep/tile-clean/internal/imaging"
	"github.com/ironsheep/tile-clean/internal/tile"
)

const (
	bright = 120
	dark   = 0
)

// fixture lays out a data root with Resampled/ and Tiles/ directories.
type fixture struct {
	t   *testing.T
	cfg *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Paths.DataRoot = t.TempDir()
	cfg.Processing.Workers = 2
	require.NoError(t, os.MkdirAll(cfg.SourcePath(), 0o755))
	require.NoError(t, os.MkdirAll(cfg.TilePath(), 0o755))
	return &fixture{t: t, cfg: cfg}
}

// source writes a 96x96 bright source whose columns [darkFrom, darkTo) are dark.
func (f *fixture) source(origin string, darkFrom, darkTo int) *image.Gray {
	f.t.Helper()
	img := image.NewGray(image.Rect(0, 0, 96, 96))
	for y := 0; y < 96; y++ {
		for x := 0; x < 96; x++ {
			v := uint8(bright + x%7)
			if x >= darkFrom && x < darkTo {
				v = dark
			}
			img.Pix[img.PixOffset(x, y)] = v
		}
	}
	writeTIFF(f.t, filepath.Join(f.cfg.SourcePath(), origin+".tif"), img)
	return img
}

// tile cuts r out of src and writes it to the tile directory under name.
func (f *fixture) tile(name string, src *image.Gray, r image.Rectangle) string {
	f.t.Helper()
	sub := src.SubImage(r).(*image.Gray)
	img := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+r.Dx()], sub.Pix[y*sub.Stride:y*sub.Stride+r.Dx()])
	}
	path := filepath.Join(f.cfg.TilePath(), name)
	writeTIFF(f.t, path, img)
	return path
}

func writeTIFF(t *testing.T, path string, img image.Image) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, tiff.Encode(out, img, nil))
}

func entryFor(t *testing.T, r *Report, name string) Entry {
	t.Helper()
	for _, e := range r.Entries {
		if e.Tile == name {
			return e
		}
	}
	t.Fatalf("no entry for %s", name)
	return Entry{}
}

func TestProcessTile_ExactFit(t *testing.T) {
	f := newFixture(t)
	src := f.source("M1", 96, 96)
	path := f.tile("M1_x16_y32.tif", src, image.Rect(16, 32, 48, 64))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusUnchanged, e.Status)
	assert.Equal(t, path, e.Output)
	require.NotNil(t, e.Result)
	assert.False(t, e.Result.Modified)

	out, err := imaging.LoadRaster(path)
	require.NoError(t, err)
	assert.Equal(t, 32, out.Width())
	assert.Equal(t, 32, out.Height())
	assert.Equal(t, float64(bright+16%7), out.At(0, 0))
}

func TestProcessTile_Recovered(t *testing.T) {
	f := newFixture(t)
	src := f.source("M1", 96, 96)
	path := f.tile("M1_x40_y16.tif", src, image.Rect(40, 16, 70, 48))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusRecovered, e.Status)
	want := filepath.Join(f.cfg.TilePath(), "M1_x39_y16.tif")
	assert.Equal(t, want, e.Output)
	assert.Equal(t, tile.Edges{Left: 1, Right: 1}, e.Result.Admitted)

	out, err := imaging.LoadRaster(want)
	require.NoError(t, err)
	assert.Equal(t, 32, out.Width())
	assert.Equal(t, float64(bright+39%7), out.At(0, 0))

	assert.FileExists(t, path, "input kept unless removeReplaced is set")
}

func TestProcessTile_RemoveReplaced(t *testing.T) {
	f := newFixture(t)
	f.cfg.Processing.RemoveReplaced = true
	src := f.source("M1", 96, 96)
	path := f.tile("M1_x40_y16.tif", src, image.Rect(40, 16, 70, 48))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusRecovered, e.Status)
	assert.FileExists(t, e.Output)
	assert.NoFileExists(t, path)
}

func TestProcessTile_Trimmed(t *testing.T) {
	f := newFixture(t)
	src := f.source("M2", 20, 41)
	path := f.tile("M2_x39_y0.tif", src, image.Rect(39, 0, 73, 32))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusTrimmed, e.Status)
	assert.Equal(t, filepath.Join(f.cfg.TilePath(), "M2_x41_y0.tif"), e.Output)
	assert.Equal(t, 2, e.Result.Trimmed.Left)
}

func TestProcessTile_Failed(t *testing.T) {
	f := newFixture(t)
	src := f.source("M2", 20, 41)
	path := f.tile("M2_x0_y0.tif", src, image.Rect(0, 0, 20, 32))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, e.Status)
	want := filepath.Join(f.cfg.FailPath(), "M2_x0_y0.tif")
	assert.Equal(t, want, e.Output)

	out, err := imaging.LoadRaster(want)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Width(), "partial crop is kept")
	assert.FileExists(t, path)
}

func TestProcessTile_SourceUnreadable(t *testing.T) {
	f := newFixture(t)
	src := f.source("M1", 96, 96)
	path := f.tile("M9_x0_y0.tif", src, image.Rect(0, 0, 32, 32))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusSourceUnreadable, e.Status)
	assert.Nil(t, e.Result, "resolver is not invoked")
	assert.Contains(t, e.Error, ErrSourceUnreadable.Error())
	assert.Equal(t, filepath.Join(f.cfg.FailPath(), "findM9_x0_y0.tif"), e.Output)
	assert.FileExists(t, e.Output)
}

func TestProcessTile_OutsideSource(t *testing.T) {
	f := newFixture(t)
	src := f.source("M1", 96, 96)
	path := f.tile("M1_x80_y0.tif", src, image.Rect(64, 0, 96, 32))

	e, err := New(f.cfg).ProcessTile(path)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, e.Status)
	assert.Contains(t, e.Error, tile.ErrBoxOutOfBounds.Error())
	assert.Equal(t, filepath.Join(f.cfg.FailPath(), "M1_x80_y0.tif"), e.Output)
}

func TestProcessTile_Malformed(t *testing.T) {
	f := newFixture(t)
	src := f.source("M1", 96, 96)
	path := f.tile("M1.tif", src, image.Rect(0, 0, 32, 32))

	e, err := New(f.cfg).ProcessTile(path)
	assert.ErrorIs(t, err, ErrMalformedName)
	assert.Equal(t, StatusMalformed, e.Status)
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	m1 := f.source("M1", 96, 96)
	m2 := f.source("M2", 20, 41)

	f.tile("M1_x16_y32.tif", m1, image.Rect(16, 32, 48, 64))
	f.tile("M1_x40_y16.tif", m1, image.Rect(40, 16, 70, 48))
	f.tile("M2_x39_y0.tif", m2, image.Rect(39, 0, 73, 32))
	f.tile("M2_x0_y0.tif", m2, image.Rect(0, 0, 20, 32))
	f.tile("M9_x0_y0.tif", m1, image.Rect(0, 0, 32, 32))
	f.tile("stray.tif", m1, image.Rect(0, 0, 32, 32))
	require.NoError(t, os.WriteFile(filepath.Join(f.cfg.TilePath(), "M1_x0_y0.tif"), []byte("not a tiff"), 0o644))

	c := New(f.cfg)
	report, err := c.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedName)
	require.NotNil(t, report)

	assert.Equal(t, 7, report.Total)
	assert.Equal(t, Counts{
		Unchanged:        1,
		Trimmed:          1,
		Recovered:        1,
		Failed:           1,
		SourceUnreadable: 1,
		Malformed:        1,
		Errors:           1,
	}, report.Counts)

	assert.Equal(t, StatusError, entryFor(t, report, "M1_x0_y0.tif").Status)
	assert.Equal(t, StatusMalformed, entryFor(t, report, "stray.tif").Status)
	assert.Equal(t, 0, c.sources.Len(), "sources released after the run")
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	m1 := f.source("M1", 96, 96)
	f.tile("M1_x16_y32.tif", m1, image.Rect(16, 32, 48, 64))
	f.tile("M1_x40_y16.tif", m1, image.Rect(40, 16, 70, 48))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(f.cfg).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Counts.Skipped)
	assert.Equal(t, StatusSkipped, entryFor(t, report, "M1_x40_y16.tif").Status)
	assert.NoFileExists(t, filepath.Join(f.cfg.TilePath(), "M1_x39_y16.tif"), "skipped tiles are not processed")
}

func TestRun_MissingTileDir(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.DataRoot = t.TempDir()

	_, err := New(cfg).Run(context.Background())
	assert.Error(t, err)
}
