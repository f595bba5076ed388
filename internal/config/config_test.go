package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
attribution: test grid
precision: 12
strict: true
tiles:
  size: 512
  zoom: 8
  grid_color: "#00ff00"
  no_labels: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Attribution != "test grid" || cfg.Precision != 12 || !cfg.Strict {
		t.Fatalf("unexpected root values %+v", cfg)
	}
	if cfg.Tiles.Size != 512 || cfg.Tiles.ZoomLimit != 8 || !cfg.Tiles.NoLabels {
		t.Fatalf("unexpected tile values %+v", cfg.Tiles)
	}
	if cfg.Tiles.LevelOffset != DefaultLevelOffset || cfg.Tiles.CacheDir != DefaultCacheDir {
		t.Fatalf("defaults not applied: %+v", cfg.Tiles)
	}
}

func TestLoadValidation(t *testing.T) {
	path := writeConfig(t, `
precision: -1
tiles:
  size: 4
  grid_color: "orange"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"precision", "tiles.size", "tiles.grid_color"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadValidationLimits(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"precision above default limit", "precision: 65\n", "precision must be 1-64"},
		{"precision above configured limit", "precision: 30\nprecision_limit: 24\n", "precision must be 1-24"},
		{"precision limit too large", "precision_limit: 5000\n", "precision_limit"},
		{"level offset too large", "tiles:\n  level_offset: 12\n", "tiles.level_offset"},
		{"negative level offset", "tiles:\n  level_offset: -1\n", "tiles.level_offset"},
		{"tile precision too large", "tiles:\n  max_precision: 60\n", "tiles.max_precision"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}

	cfg, err := Load(writeConfig(t, "precision: 30\nprecision_limit: 40\ntiles:\n  level_offset: 6\n  max_precision: 48\n"))
	if err != nil {
		t.Fatalf("unexpected error at the limits: %v", err)
	}
	if cfg.PrecisionLimit != 40 || cfg.Tiles.LevelOffset != MaxLevelOffset {
		t.Fatalf("unexpected values %+v", cfg)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("found = true for a missing file")
	}
	if cfg.Precision != 22 || cfg.PrecisionLimit != DefaultPrecisionLimit || cfg.Tiles.Size != DefaultTileSize {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected color.RGBA
		wantErr  bool
	}{
		{"rgb", "#ff6600", color.RGBA{R: 0xff, G: 0x66, B: 0x00, A: 0xff}, false},
		{"rgba", "#10203040", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, false},
		{"no hash", "000000", color.RGBA{A: 0xff}, false},
		{"short", "#fff", color.RGBA{}, true},
		{"not hex", "#gggggg", color.RGBA{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseColor(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseColor(%q) error = %v; wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.expected {
				t.Fatalf("ParseColor(%q) = %v; want %v", tc.input, got, tc.expected)
			}
		})
	}
}
