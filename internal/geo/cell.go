package geo

import (
	"math"

	"github.com/woozymasta/geodna"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/mmcloughlin/geohash"
)

// EarthRadiusKm is the mean Earth radius used for areas.
const EarthRadiusKm = 6371.0088

const maxGeohashChars = 12

// Neighbour pairs a compass direction with the adjacent code.
type Neighbour struct {
	Direction string `json:"direction" yaml:"direction"`
	Code      string `json:"code" yaml:"code"`
}

// Cell describes the rectangle named by a code.
type Cell struct {
	Code       string      `json:"code" yaml:"code"`
	Geohash    string      `json:"geohash" yaml:"geohash"`
	Neighbours []Neighbour `json:"neighbours" yaml:"neighbours"`
	Box        geodna.Box  `json:"box" yaml:"box"`
	Lat        float64     `json:"lat" yaml:"lat"`
	Lon        float64     `json:"lon" yaml:"lon"`
	ErrorDeg   float64     `json:"error_deg" yaml:"error_deg"`
	SizeMeters float64     `json:"size_m" yaml:"size_m"`
	AreaKm2    float64     `json:"area_km2" yaml:"area_km2"`
	Precision  int         `json:"precision" yaml:"precision"`
}

// Describe decodes code and gathers everything known about its cell.
func Describe(code string) (Cell, error) {
	box, err := geodna.BoundingBox(code)
	if err != nil {
		return Cell{}, err
	}

	codes, err := geodna.Neighbours(code)
	if err != nil {
		return Cell{}, err
	}

	lat, lon := box.Center()
	return Cell{
		Code:       code,
		Precision:  len(code),
		Lat:        lat,
		Lon:        lon,
		Box:        box,
		ErrorDeg:   geodna.Error(code),
		SizeMeters: geodna.Size(code),
		AreaKm2:    BoxArea(box),
		Geohash:    geohash.EncodeWithPrecision(lat, lon, GeohashChars(len(code))),
		Neighbours: PairNeighbours(codes),
	}, nil
}

// PairNeighbours labels the output of geodna.Neighbours with directions.
func PairNeighbours(codes []string) []Neighbour {
	out := make([]Neighbour, 0, len(codes))
	for i, c := range codes {
		if i >= len(geodna.Directions) {
			break
		}
		out = append(out, Neighbour{Direction: geodna.Directions[i].String(), Code: c})
	}
	return out
}

// Feature returns the cell outline as a GeoJSON polygon.
func (c Cell) Feature() GeoJSONFeature {
	return NewBoxFeature(c.Box, map[string]interface{}{
		"code":      c.Code,
		"precision": c.Precision,
		"lat":       c.Lat,
		"lon":       c.Lon,
		"area_km2":  c.AreaKm2,
		"geohash":   c.Geohash,
	})
}

// CellCollection describes every code and returns their outlines.
func CellCollection(codes []string) (GeoJSONFeatureCollection, error) {
	fc := NewFeatureCollection(len(codes))
	for _, code := range codes {
		cell, err := Describe(code)
		if err != nil {
			return GeoJSONFeatureCollection{}, err
		}
		fc.Features = append(fc.Features, cell.Feature())
	}
	return fc, nil
}

// BoxArea returns the spherical area of box in square kilometres.
func BoxArea(box geodna.Box) float64 {
	const rad = math.Pi / 180

	rect := s2.Rect{
		Lat: r1.Interval{Lo: box.Lat.Min * rad, Hi: box.Lat.Max * rad},
		Lng: s1.IntervalFromEndpoints(box.Lon.Min*rad, box.Lon.Max*rad),
	}

	return rect.Area() * EarthRadiusKm * EarthRadiusKm
}

// GeohashChars returns the geohash length carrying about as many bits as
// a Geo::DNA code of the given length.
func GeohashChars(precision int) uint {
	bits := 2*precision - 1
	chars := (bits + 4) / 5
	if chars < 1 {
		return 1
	}
	if chars > maxGeohashChars {
		return maxGeohashChars
	}
	return uint(chars)
}
