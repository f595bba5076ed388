package geo

import (
	"fmt"
	"math"

	"github.com/woozymasta/geodna"
)

// MaxLat is the latitude limit of the Web Mercator projection.
const MaxLat = 85.05112878

// MaxZoom bounds tile coordinates accepted by the tile helpers.
const MaxZoom = 24

// tileEdgeEpsilon treats positions this close to a tile boundary as on it.
const tileEdgeEpsilon = 1e-9

// TileToLonLat converts fractional slippy-map tile coordinates at zoom z
// to WGS84 longitude and latitude.
//
// It maps x (0 to 2^z) to the longitude range [-180, 180]
// and applies an inverse Mercator projection for latitude.
func TileToLonLat(x, y float64, z int) (lon, lat float64) {
	n := float64(uint64(1) << uint(z))

	// x: [0..n] -> lon: [-180..180]
	lon = x/n*360.0 - 180.0

	// y: [0..n] -> mercatorY: [PI..-PI]
	mercatorY := math.Pi * (1 - 2*y/n)

	// Inverse Mercator projection
	latRad := math.Atan(math.Sinh(mercatorY))
	lat = latRad * (180.0 / math.Pi)

	return lon, clampLat(lat)
}

// LonLatToTile returns the tile at zoom z containing the coordinate.
func LonLatToTile(lon, lat float64, z int) (x, y int) {
	n := int(uint64(1) << uint(z))
	fx, fy := tilePosition(lon, lat, n)

	return clampIndex(int(math.Floor(fx)), n), clampIndex(int(math.Floor(fy)), n)
}

// TileRange returns the inclusive tile index range at zoom z overlapping box.
// A box edge lying on a tile boundary does not pull in the tile beyond it.
func TileRange(box geodna.Box, z int) (x0, y0, x1, y1 int) {
	n := int(uint64(1) << uint(z))

	fx0, fy0 := tilePosition(box.Lon.Min, box.Lat.Max, n)
	fx1, fy1 := tilePosition(box.Lon.Max, box.Lat.Min, n)

	x0 = clampIndex(int(math.Floor(fx0+tileEdgeEpsilon)), n)
	y0 = clampIndex(int(math.Floor(fy0+tileEdgeEpsilon)), n)
	x1 = clampIndex(int(math.Ceil(fx1-tileEdgeEpsilon))-1, n)
	y1 = clampIndex(int(math.Ceil(fy1-tileEdgeEpsilon))-1, n)

	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return x0, y0, x1, y1
}

// tilePosition returns fractional tile coordinates in an n x n grid.
func tilePosition(lon, lat float64, n int) (fx, fy float64) {
	fx = (lon + 180.0) / 360.0 * float64(n)
	fy = (1 - MercatorY(lat)/math.Pi) / 2 * float64(n)
	return fx, fy
}

// MercatorY returns the Mercator ordinate in radians of lat, clamped to MaxLat.
func MercatorY(lat float64) float64 {
	rad := clampLat(lat) * math.Pi / 180.0
	return math.Log(math.Tan(math.Pi/4 + rad/2))
}

// TileBounds returns the WGS84 rectangle covered by tile z/x/y.
func TileBounds(z, x, y int) (geodna.Box, error) {
	if err := ValidateTile(z, x, y); err != nil {
		return geodna.Box{}, err
	}

	west, north := TileToLonLat(float64(x), float64(y), z)
	east, south := TileToLonLat(float64(x+1), float64(y+1), z)

	return geodna.Box{
		Lat: geodna.Interval{Min: south, Max: north},
		Lon: geodna.Interval{Min: west, Max: east},
	}, nil
}

// ValidateTile checks the zoom level and tile indexes.
func ValidateTile(z, x, y int) error {
	if z < 0 || z > MaxZoom {
		return fmt.Errorf("zoom %d outside [0, %d]", z, MaxZoom)
	}
	n := 1 << uint(z)
	if x < 0 || x >= n || y < 0 || y >= n {
		return fmt.Errorf("tile %d/%d/%d outside the %dx%d grid", z, x, y, n, n)
	}
	return nil
}

func clampLat(lat float64) float64 {
	if lat > MaxLat {
		return MaxLat
	} else if lat < -MaxLat {
		return -MaxLat
	}
	return lat
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
