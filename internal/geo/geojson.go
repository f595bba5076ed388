// Package geo handles geographic data structures and coordinate conversions.
package geo

import "github.com/woozymasta/geodna"

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature.
// Coordinates is []float64 for a Point and [][][]float64 for a Polygon, always [Lon, Lat].
type GeoJSONGeometry struct {
	Type        string      `json:"type" yaml:"type"`
	Coordinates interface{} `json:"coordinates" yaml:"coordinates"`
}

// NewFeatureCollection returns an empty collection with room for n features.
func NewFeatureCollection(n int) GeoJSONFeatureCollection {
	return GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, n),
	}
}

// NewPointFeature builds a Point feature.
func NewPointFeature(lon, lat float64, props map[string]interface{}) GeoJSONFeature {
	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: []float64{lon, lat},
		},
		Properties: props,
	}
}

// NewBoxFeature builds a Polygon feature outlining box, counter-clockwise.
func NewBoxFeature(box geodna.Box, props map[string]interface{}) GeoJSONFeature {
	ring := [][]float64{
		{box.Lon.Min, box.Lat.Min},
		{box.Lon.Max, box.Lat.Min},
		{box.Lon.Max, box.Lat.Max},
		{box.Lon.Min, box.Lat.Max},
		{box.Lon.Min, box.Lat.Min},
	}

	return GeoJSONFeature{
		Type: "Feature",
		Geometry: GeoJSONGeometry{
			Type:        "Polygon",
			Coordinates: [][][]float64{ring},
		},
		Properties: props,
	}
}
