// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/geodna"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Normalize.
const (
	DefaultTileSize     = 256
	DefaultZoomLimit    = 12
	DefaultLevelOffset  = 1
	DefaultMaxPrecision = 32
	DefaultQuality      = 85
	DefaultCacheDir     = "tiles"
	DefaultGridColor    = "#ff6600cc"
	DefaultLabelColor   = "#202020ff"

	// DefaultPrecisionLimit caps requested code lengths; float64 intervals
	// stop narrowing long before it.
	DefaultPrecisionLimit = 64
	MaxPrecisionLimit     = 1024

	// MaxLevelOffset bounds the grid density to 2^(offset+1) cells per tile axis.
	MaxLevelOffset = 6

	// MaxTilePrecision keeps grid cell indexes inside an int and steps exact.
	MaxTilePrecision = 48
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution    string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Tiles          Tiles  `yaml:"tiles" json:"tiles"`
	Precision      int    `yaml:"precision,omitempty" json:"precision"`
	PrecisionLimit int    `yaml:"precision_limit,omitempty" json:"precision_limit"`
	Strict         bool   `yaml:"strict,omitempty" json:"strict"`
}

// Tiles configures the grid overlay renderer.
type Tiles struct {
	CacheDir     string  `yaml:"cache_dir,omitempty" json:"-"`
	GridColor    string  `yaml:"grid_color,omitempty" json:"grid_color"`
	LabelColor   string  `yaml:"label_color,omitempty" json:"label_color"`
	Size         int     `yaml:"size,omitempty" json:"size"`
	ZoomLimit    int     `yaml:"zoom,omitempty" json:"zoom"`
	LevelOffset  int     `yaml:"level_offset,omitempty" json:"level_offset"`
	MaxPrecision int     `yaml:"max_precision,omitempty" json:"max_precision"`
	Quality      float32 `yaml:"quality,omitempty" json:"-"`
	NoLabels     bool    `yaml:"no_labels,omitempty" json:"no_labels,omitempty"`
	NoCache      bool    `yaml:"no_cache,omitempty" json:"-"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Precision == 0 {
		c.Precision = geodna.DefaultPrecision
	}
	if c.PrecisionLimit == 0 {
		c.PrecisionLimit = DefaultPrecisionLimit
	}

	t := &c.Tiles
	if t.Size <= 0 {
		t.Size = DefaultTileSize
	}
	if t.ZoomLimit <= 0 {
		t.ZoomLimit = DefaultZoomLimit
	}
	// an omitted level_offset reads as 0, so the smallest usable offset is 1
	if t.LevelOffset == 0 {
		t.LevelOffset = DefaultLevelOffset
	}
	if t.MaxPrecision <= 0 {
		t.MaxPrecision = DefaultMaxPrecision
	}
	if t.Quality <= 0 {
		t.Quality = DefaultQuality
	}
	if t.CacheDir == "" {
		t.CacheDir = DefaultCacheDir
	}
	if t.GridColor == "" {
		t.GridColor = DefaultGridColor
	}
	if t.LabelColor == "" {
		t.LabelColor = DefaultLabelColor
	}
}

// Validate checks that configuration values are sane.
func (c *Config) Validate() error {
	var errs []string

	if c.PrecisionLimit < 1 || c.PrecisionLimit > MaxPrecisionLimit {
		errs = append(errs, fmt.Sprintf("precision_limit must be 1-%d, got %d", MaxPrecisionLimit, c.PrecisionLimit))
	}
	if c.Precision < 1 || c.Precision > c.PrecisionLimit {
		errs = append(errs, fmt.Sprintf("precision must be 1-%d, got %d", c.PrecisionLimit, c.Precision))
	}
	if c.Tiles.Size < 16 || c.Tiles.Size > 1024 {
		errs = append(errs, fmt.Sprintf("tiles.size must be 16-1024, got %d", c.Tiles.Size))
	}
	if c.Tiles.ZoomLimit > 24 {
		errs = append(errs, fmt.Sprintf("tiles.zoom must be <= 24, got %d", c.Tiles.ZoomLimit))
	}
	if c.Tiles.LevelOffset < 1 || c.Tiles.LevelOffset > MaxLevelOffset {
		errs = append(errs, fmt.Sprintf("tiles.level_offset must be 1-%d, got %d", MaxLevelOffset, c.Tiles.LevelOffset))
	}
	if c.Tiles.MaxPrecision < 1 || c.Tiles.MaxPrecision > MaxTilePrecision {
		errs = append(errs, fmt.Sprintf("tiles.max_precision must be 1-%d, got %d", MaxTilePrecision, c.Tiles.MaxPrecision))
	}
	if c.Tiles.Quality > 100 {
		errs = append(errs, fmt.Sprintf("tiles.quality must be 1-100, got %v", c.Tiles.Quality))
	}
	if _, err := ParseColor(c.Tiles.GridColor); err != nil {
		errs = append(errs, "tiles.grid_color: "+err.Error())
	}
	if _, err := ParseColor(c.Tiles.LabelColor); err != nil {
		errs = append(errs, "tiles.label_color: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
