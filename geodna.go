// Package geodna encodes geographic coordinates into Geo::DNA codes.
//
// A code starts with a hemisphere marker ('w' for longitudes below zero,
// 'e' otherwise) followed by symbols from the alphabet "gatc". Every symbol
// halves both the latitude and the longitude interval of the previous prefix,
// so codes sharing a prefix lie in the same rectangle.
package geodna

import (
	"fmt"
	"math"
)

const (
	// DefaultPrecision is the code length (marker included) used when none is given.
	DefaultPrecision = 22

	// MarkerWest prefixes codes with longitude < 0.
	MarkerWest = 'w'
	// MarkerEast prefixes codes with longitude >= 0.
	MarkerEast = 'e'

	alphabet = "gatc"

	lonBit = 2
	latBit = 1
)

// decodeMap is the inverse of alphabet.
var decodeMap = map[byte]int{
	'g': 0,
	'a': 1,
	't': 2,
	'c': 3,
}

// EncodeOptions configures EncodeWith.
type EncodeOptions struct {
	// Precision is the total code length, hemisphere marker included.
	Precision int
	// Radians marks latitude and longitude as radians instead of degrees.
	Radians bool
	// Strict rejects coordinates outside [-90,90] x [-180,180] with ErrInvalidCoordinate.
	Strict bool
}

// DecodeOptions configures DecodeWith.
type DecodeOptions struct {
	// Radians returns the coordinate in radians instead of degrees.
	Radians bool
}

// DefaultEncodeOptions returns degree input at DefaultPrecision without range checks.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Precision: DefaultPrecision}
}

// Encode returns the code of length precision for a coordinate in degrees.
func Encode(lat, lon float64, precision int) (string, error) {
	return EncodeWith(lat, lon, EncodeOptions{Precision: precision})
}

// EncodeWith returns the code for a coordinate using opts.
// Out of range coordinates still produce a well-formed code unless opts.Strict is set.
func EncodeWith(lat, lon float64, opts EncodeOptions) (string, error) {
	if opts.Precision < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidPrecision, opts.Precision)
	}

	if opts.Radians {
		lat, lon = toDegrees(lat), toDegrees(lon)
	}

	if opts.Strict {
		if err := validateCoordinate(lat, lon); err != nil {
			return "", err
		}
	}

	return encode(lat, lon, opts.Precision), nil
}

// encode is the total core of the codec; precision must be >= 1.
func encode(lat, lon float64, precision int) string {
	code := make([]byte, 0, precision)

	marker, loni := hemisphere(lon)
	code = append(code, marker)
	lati := latRange

	for len(code) < precision {
		var ch int

		upper := lon > loni.Mid()
		if upper {
			ch |= lonBit
		}
		loni = loni.Halve(upper)

		upper = lat > lati.Mid()
		if upper {
			ch |= latBit
		}
		lati = lati.Halve(upper)

		code = append(code, alphabet[ch])
	}

	return string(code)
}

// Decode returns the centre of the code's bounding box in degrees.
func Decode(code string) (lat, lon float64, err error) {
	return DecodeWith(code, DecodeOptions{})
}

// DecodeWith returns the centre of the code's bounding box.
func DecodeWith(code string, opts DecodeOptions) (lat, lon float64, err error) {
	box, err := BoundingBox(code)
	if err != nil {
		return 0, 0, err
	}

	lat, lon = box.Center()
	if opts.Radians {
		return toRadians(lat), toRadians(lon), nil
	}

	return lat, lon, nil
}

// BoundingBox returns the latitude and longitude intervals, in degrees,
// of the rectangle named by code.
func BoundingBox(code string) (Box, error) {
	if code == "" {
		return Box{}, &CodeError{Code: code, Pos: 0, Reason: "empty code"}
	}

	var loni Interval
	switch code[0] {
	case MarkerWest:
		loni = westRange
	case MarkerEast:
		loni = eastRange
	default:
		return Box{}, &CodeError{
			Code:   code,
			Pos:    0,
			Reason: fmt.Sprintf("invalid hemisphere marker %q", code[0]),
		}
	}

	lati := latRange
	for i := 1; i < len(code); i++ {
		cd, ok := decodeMap[code[i]]
		if !ok {
			return Box{}, &CodeError{
				Code:   code,
				Pos:    i,
				Reason: fmt.Sprintf("invalid symbol %q", code[i]),
			}
		}

		loni = loni.Halve(cd&lonBit != 0)
		lati = lati.Halve(cd&latBit != 0)
	}

	return Box{Lat: lati, Lon: loni}, nil
}

// Valid reports whether code is a well-formed Geo::DNA code.
func Valid(code string) bool {
	_, err := BoundingBox(code)
	return err == nil
}

// hemisphere picks the marker and the starting longitude interval.
func hemisphere(lon float64) (byte, Interval) {
	if lon < 0 {
		return MarkerWest, westRange
	}
	return MarkerEast, eastRange
}

func validateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return nil
}

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
