package processor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/geodna"
	"github.com/woozymasta/geodna/internal/geo"

	"github.com/rs/zerolog/log"
)

type job struct {
	BaseDir string
	Coord   TileCoordinate
}

type result struct {
	Err     error
	Coord   TileCoordinate
	Written bool
}

// RenderStats summarises a RenderTiles run.
type RenderStats struct {
	Written int
	Skipped int
	Failed  int
}

// TilePath returns baseDir/z/x/y.webp.
func TilePath(baseDir string, c TileCoordinate) string {
	return filepath.Join(
		baseDir,
		fmt.Sprintf("%d", c.Z),
		fmt.Sprintf("%d", c.X),
		fmt.Sprintf("%d", c.Y)+".webp",
	)
}

// TilesWithin lists the tiles of zoom z intersecting the box of code.
// An empty code selects the whole zoom level.
func TilesWithin(code string, z int) ([]TileCoordinate, error) {
	if err := geo.ValidateTile(z, 0, 0); err != nil {
		return nil, err
	}

	n := 1 << uint(z)
	x0, y0, x1, y1 := 0, 0, n-1, n-1

	if code != "" {
		box, err := geodna.BoundingBox(code)
		if err != nil {
			return nil, err
		}
		x0, y0, x1, y1 = geo.TileRange(box, z)
	}

	tiles := make([]TileCoordinate, 0, (x1-x0+1)*(y1-y0+1))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			tiles = append(tiles, TileCoordinate{Z: z, X: x, Y: y})
		}
	}
	return tiles, nil
}

// RenderTiles pre-renders overlay tiles for zoom levels minZoom..maxZoom
// into baseDir, limited to the box of within when it is not empty.
func RenderTiles(
	baseDir string,
	minZoom, maxZoom int,
	within string,
	concurrency int,
	opts OverlayOptions,
	force bool,
) (RenderStats, error) {
	var stats RenderStats

	if minZoom > maxZoom {
		return stats, fmt.Errorf("min zoom %d above max zoom %d", minZoom, maxZoom)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	for z := minZoom; z <= maxZoom; z++ {
		tiles, err := TilesWithin(within, z)
		if err != nil {
			return stats, err
		}

		log.Debug().
			Int("zoom", z).
			Int("count", len(tiles)).
			Int("precision", OverlayPrecision(z, opts.LevelOffset, opts.MaxPrecision)).
			Msg("Processing zoom level")

		for _, res := range processBatch(concurrency, tiles, baseDir, opts, force) {
			switch {
			case res.Err != nil:
				stats.Failed++
				log.Error().Err(res.Err).Stringer("tile", res.Coord).Msg("Failed to render tile")
			case res.Written:
				stats.Written++
			default:
				stats.Skipped++
			}
		}
	}

	return stats, nil
}

func processBatch(
	concurrency int,
	tiles []TileCoordinate,
	baseDir string,
	opts OverlayOptions,
	force bool,
) []result {

	jobs := make(chan job, len(tiles))
	results := make(chan result, len(tiles))

	go func() {
		for _, t := range tiles {
			jobs <- job{Coord: t, BaseDir: baseDir}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				written, err := renderToFile(j, opts, force)
				results <- result{Coord: j.Coord, Written: written, Err: err}
			}
		}()
	}
	wg.Wait()
	close(results)

	out := make([]result, 0, len(tiles))
	for res := range results {
		out = append(out, res)
	}

	return out
}

func renderToFile(j job, opts OverlayOptions, force bool) (bool, error) {
	outPath := TilePath(j.BaseDir, j.Coord)

	// Check existence if not forcing overwrite
	if !force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return false, nil
		}
	}

	var buf bytes.Buffer
	if err := EncodeOverlay(&buf, j.Coord, opts); err != nil {
		return false, err
	}

	if err := WriteFileAtomic(outPath, buf.Bytes()); err != nil {
		return false, err
	}

	log.Trace().Stringer("tile", j.Coord).Str("path", outPath).Msg("Tile rendered")
	return true, nil
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tile-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
