package geodna

import (
	"fmt"
	"math"
)

// Direction names one of the eight cells around a code.
type Direction int

// Compass directions, clockwise from north.
const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Directions lists every Direction in the order Neighbours returns them.
var Directions = [...]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// offsets holds {dlon, dlat} in cell units.
var offsets = [...][2]float64{
	North:     {0, 1},
	NorthEast: {1, 1},
	East:      {1, 0},
	SouthEast: {1, -1},
	South:     {0, -1},
	SouthWest: {-1, -1},
	West:      {-1, 0},
	NorthWest: {-1, 1},
}

func (d Direction) String() string {
	if d < North || d > NorthWest {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Neighbours returns the eight codes of the same length surrounding code,
// ordered as Directions.
//
// Each neighbour is the centre of code shifted by one box width and/or height,
// wrapped onto [-90,90) and [-180,180), and encoded again. Near the poles and
// for one-symbol codes some entries may be equal.
func Neighbours(code string) ([]string, error) {
	box, err := BoundingBox(code)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(Directions))
	for i, d := range Directions {
		out[i] = neighbour(box, d, len(code))
	}

	return out, nil
}

// Neighbour returns the single code adjacent to code in direction d.
func Neighbour(code string, d Direction) (string, error) {
	if d < North || d > NorthWest {
		return "", fmt.Errorf("unknown direction %d", int(d))
	}

	box, err := BoundingBox(code)
	if err != nil {
		return "", err
	}

	return neighbour(box, d, len(code)), nil
}

func neighbour(box Box, d Direction, precision int) string {
	lat, lon := box.Center()
	off := offsets[d]

	lon = wrap(lon+box.Lon.Width()*off[0], 360, 180)
	lat = wrap(lat+box.Lat.Width()*off[1], 180, 90)

	return encode(lat, lon, precision)
}

// wrap maps v onto [-half, span-half).
func wrap(v, span, half float64) float64 {
	m := math.Mod(v+half, span)
	if m < 0 {
		m += span
	}
	return m - half
}
