package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/geodna"
	"github.com/woozymasta/geodna/internal/geo"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Point is a named coordinate read from an input file.
type Point struct {
	Name string  `json:"name" yaml:"name"`
	Type string  `json:"type,omitempty" yaml:"type,omitempty"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// LoadPoints parses a JSON or YAML list of points.
func LoadPoints(r io.Reader, format string) ([]Point, error) {
	var points []Point

	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&points); err != nil {
			return nil, fmt.Errorf("decode json points: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&points); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml points: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported points format %q", format)
	}

	return points, nil
}

// FormatFromPath guesses the points format from the file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// PointsToGeoJSON encodes every point and returns them as Point features
// carrying their code. Out of range points are skipped when strict is set.
func PointsToGeoJSON(points []Point, precision int, strict bool) (geo.GeoJSONFeatureCollection, error) {
	fc := geo.NewFeatureCollection(len(points))

	for _, p := range points {
		code, err := geodna.EncodeWith(p.Lat, p.Lon, geodna.EncodeOptions{Precision: precision, Strict: strict})
		if err != nil {
			if errors.Is(err, geodna.ErrInvalidCoordinate) {
				log.Warn().Err(err).Str("name", p.Name).Msg("Skipping point")
				continue
			}
			return geo.GeoJSONFeatureCollection{}, err
		}

		props := map[string]interface{}{
			"name": p.Name,
			"code": code,
		}
		if p.Type != "" {
			props["type"] = strings.ToLower(p.Type)
		}

		fc.Features = append(fc.Features, geo.NewPointFeature(p.Lon, p.Lat, props))
	}

	return fc, nil
}

// SaveGeoJSON marshals the feature collection and writes it to disk.
func SaveGeoJSON(path string, fc geo.GeoJSONFeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return json.NewEncoder(f).Encode(fc)
}
