package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/woozymasta/geodna"
	"github.com/woozymasta/geodna/internal/geo"
	"github.com/woozymasta/geodna/internal/processor"

	"github.com/rs/zerolog/log"
)

// GeoJSONCommand exports code outlines, or encoded points read from a file.
type GeoJSONCommand struct {
	Points    string `short:"i" long:"points" description:"JSON or YAML file with a list of {name, type, lat, lon} points"`
	Output    string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Precision int    `short:"p" long:"precision" description:"Code length for encoded points (default from configuration)"`

	Args struct {
		Codes []string `positional-arg-name:"code"`
	} `positional-args:"yes"`
}

// Execute implements flags.Commander.
func (c *GeoJSONCommand) Execute(_ []string) error {
	if c.Points == "" && len(c.Args.Codes) == 0 {
		return errors.New("either --points or at least one code is required")
	}

	var (
		fc  geo.GeoJSONFeatureCollection
		err error
	)

	if c.Points != "" {
		fc, err = c.fromPoints()
	} else {
		fc, err = geo.CellCollection(c.Args.Codes)
	}
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := processor.SaveGeoJSON(c.Output, fc); err != nil {
			return err
		}
		log.Info().Str("path", c.Output).Int("features", len(fc.Features)).Msg("GeoJSON saved")
		return nil
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

func (c *GeoJSONCommand) fromPoints() (geo.GeoJSONFeatureCollection, error) {
	cfg, err := loadConfig()
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}

	precision := cfg.Precision
	if c.Precision != 0 {
		precision = c.Precision
	}
	if precision > cfg.PrecisionLimit {
		return geo.GeoJSONFeatureCollection{}, fmt.Errorf("%w: %d above the limit of %d", geodna.ErrInvalidPrecision, precision, cfg.PrecisionLimit)
	}

	f, err := os.Open(c.Points)
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}
	defer func() { _ = f.Close() }()

	points, err := processor.LoadPoints(f, processor.FormatFromPath(c.Points))
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}

	log.Debug().Str("path", c.Points).Int("points", len(points)).Msg("Points loaded")

	return processor.PointsToGeoJSON(points, precision, cfg.Strict)
}

// TilesCommand pre-renders grid overlay tiles into the cache directory.
type TilesCommand struct {
	Output      string `short:"o" long:"out" description:"Tile directory (default tiles.cache_dir)"`
	MinZoom     int    `long:"min-zoom" default:"0" description:"First zoom level"`
	MaxZoom     int    `long:"max-zoom" description:"Last zoom level (default tiles.zoom)"`
	Within      string `short:"w" long:"within" description:"Only render tiles intersecting this code"`
	Concurrency int    `short:"j" long:"concurrency" env:"CONCURRENCY" default:"8" description:"Concurrency"`
	Force       bool   `short:"F" long:"force" description:"Force overwrite of existing tiles"`
}

type tilesOutput struct {
	Dir     string `json:"dir" yaml:"dir"`
	Written int    `json:"written" yaml:"written"`
	Skipped int    `json:"skipped" yaml:"skipped"`
	Failed  int    `json:"failed" yaml:"failed"`
}

// Execute implements flags.Commander.
func (c *TilesCommand) Execute(_ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := cfg.Tiles.CacheDir
	if c.Output != "" {
		dir = c.Output
	}
	maxZoom := cfg.Tiles.ZoomLimit
	if c.MaxZoom > 0 {
		maxZoom = c.MaxZoom
	}

	overlay, err := processor.OverlayOptionsFromConfig(cfg.Tiles)
	if err != nil {
		return err
	}

	log.Info().
		Str("dir", dir).
		Int("min_zoom", c.MinZoom).
		Int("max_zoom", maxZoom).
		Str("within", c.Within).
		Int("concurrency", c.Concurrency).
		Msg("Rendering tiles")

	start := time.Now()
	stats, err := processor.RenderTiles(dir, c.MinZoom, maxZoom, c.Within, c.Concurrency, overlay, c.Force)
	if err != nil {
		return err
	}

	log.Info().
		Int("written", stats.Written).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("duration", time.Since(start)).
		Msg("Tiles rendered")

	out := tilesOutput{Dir: dir, Written: stats.Written, Skipped: stats.Skipped, Failed: stats.Failed}
	err = render(out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: %d written, %d skipped, %d failed\n", dir, stats.Written, stats.Skipped, stats.Failed)
		return err
	})
	if err != nil {
		return err
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%d tiles failed to render", stats.Failed)
	}
	return nil
}
