package geodna

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestEncodeFixtures(t *testing.T) {
	cases := []struct {
		name      string
		lat, lon  float64
		precision int
		expected  string
	}{
		{"wellington", -41.288889, 174.777222, 22, "etctttagatagtgacagtcta"},
		{"nelson", -41.283333, 173.283333, 16, "etcttgctagcttagt"},
		{"galapagos default precision", 7.0625, -95.677068, DefaultPrecision, "watttatcttttgctacgaagt"},
		{"marker only", 51.5, -0.12, 1, "w"},
		{"zero longitude is east", 0, 0, 3, "ega"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.lat, tc.lon, tc.precision)
			if err != nil {
				t.Fatalf("Encode(%v, %v, %d) unexpected error: %v", tc.lat, tc.lon, tc.precision, err)
			}
			if got != tc.expected {
				t.Fatalf("Encode(%v, %v, %d) = %q; want %q", tc.lat, tc.lon, tc.precision, got, tc.expected)
			}
		})
	}
}

func TestEncodeRadians(t *testing.T) {
	lat, lon := 7.0625, -95.677068

	want, err := Encode(lat, lon, DefaultPrecision)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := EncodeWith(toRadians(lat), toRadians(lon), EncodeOptions{Precision: DefaultPrecision, Radians: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("radians encode = %q; want %q", got, want)
	}
}

func TestEncodeErrors(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		opts     EncodeOptions
		expected error
	}{
		{"zero precision", 1, 1, EncodeOptions{Precision: 0}, ErrInvalidPrecision},
		{"negative precision", 1, 1, EncodeOptions{Precision: -3}, ErrInvalidPrecision},
		{"strict latitude", 91, 1, EncodeOptions{Precision: 10, Strict: true}, ErrInvalidCoordinate},
		{"strict longitude", 1, -181, EncodeOptions{Precision: 10, Strict: true}, ErrInvalidCoordinate},
		{"strict NaN", math.NaN(), 1, EncodeOptions{Precision: 10, Strict: true}, ErrInvalidCoordinate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeWith(tc.lat, tc.lon, tc.opts)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("EncodeWith error = %v; want %v", err, tc.expected)
			}
		})
	}
}

func TestEncodeOutOfRangeIsWellFormed(t *testing.T) {
	code, err := Encode(95, 200, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(code) != 8 || !Valid(code) {
		t.Fatalf("Encode(95, 200, 8) = %q; want a valid code of length 8", code)
	}
}

func TestDecodeFixture(t *testing.T) {
	lat, lon, err := Decode("etctttagatagtgacagtcta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lat-(-41.288889)) > 0.005 || math.Abs(lon-174.777222) > 0.005 {
		t.Fatalf("Decode = (%v, %v); want about (-41.288889, 174.777222)", lat, lon)
	}
}

func TestDecodeUsesIntervalMidpoint(t *testing.T) {
	code := "watttatcttttgctacgaagt"

	box, err := BoundingBox(code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lat, lon, err := Decode(code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lat != (box.Lat.Min+box.Lat.Max)/2 {
		t.Errorf("lat = %v; want %v", lat, (box.Lat.Min+box.Lat.Max)/2)
	}
	if lon != (box.Lon.Min+box.Lon.Max)/2 {
		t.Errorf("lon = %v; want %v", lon, (box.Lon.Min+box.Lon.Max)/2)
	}
}

func TestDecodeRadians(t *testing.T) {
	code := "watttatcttttgctacgaagt"

	lat, lon, err := Decode(code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rlat, rlon, err := DecodeWith(code, DecodeOptions{Radians: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(rlat-toRadians(lat)) > 1e-12 || math.Abs(rlon-toRadians(lon)) > 1e-12 {
		t.Fatalf("DecodeWith radians = (%v, %v); want (%v, %v)", rlat, rlon, toRadians(lat), toRadians(lon))
	}
	if math.Abs(rlat-toRadians(7.0625)) > ErrorRadians(code) {
		t.Fatalf("radian latitude %v outside error %v", rlat, ErrorRadians(code))
	}
}

func TestBoundingBox(t *testing.T) {
	cases := []struct {
		name     string
		code     string
		expected Box
	}{
		{"east hemisphere", "e", Box{Lat: Interval{-90, 90}, Lon: Interval{0, 180}}},
		{"west hemisphere", "w", Box{Lat: Interval{-90, 90}, Lon: Interval{-180, 0}}},
		{"g is lower lower", "eg", Box{Lat: Interval{-90, 0}, Lon: Interval{0, 90}}},
		{"a is lower lon upper lat", "ea", Box{Lat: Interval{0, 90}, Lon: Interval{0, 90}}},
		{"t is upper lon lower lat", "wt", Box{Lat: Interval{-90, 0}, Lon: Interval{-90, 0}}},
		{"c is upper upper", "wcc", Box{Lat: Interval{45, 90}, Lon: Interval{-45, 0}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BoundingBox(tc.code)
			if err != nil {
				t.Fatalf("BoundingBox(%q) unexpected error: %v", tc.code, err)
			}
			if got != tc.expected {
				t.Fatalf("BoundingBox(%q) = %+v; want %+v", tc.code, got, tc.expected)
			}
		})
	}
}

func TestBoundingBoxMalformed(t *testing.T) {
	cases := []struct {
		name string
		code string
		pos  int
	}{
		{"empty", "", 0},
		{"bad marker", "xgat", 0},
		{"uppercase marker", "Egat", 0},
		{"bad symbol", "eqg", 1},
		{"late bad symbol", "wgatcX", 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BoundingBox(tc.code)
			if !errors.Is(err, ErrMalformedCode) {
				t.Fatalf("BoundingBox(%q) error = %v; want ErrMalformedCode", tc.code, err)
			}

			var ce *CodeError
			if !errors.As(err, &ce) {
				t.Fatalf("BoundingBox(%q) error %T is not *CodeError", tc.code, err)
			}
			if ce.Pos != tc.pos {
				t.Fatalf("CodeError.Pos = %d; want %d", ce.Pos, tc.pos)
			}

			if _, _, err := Decode(tc.code); !errors.Is(err, ErrMalformedCode) {
				t.Fatalf("Decode(%q) error = %v; want ErrMalformedCode", tc.code, err)
			}
			if Valid(tc.code) {
				t.Fatalf("Valid(%q) = true", tc.code)
			}
		})
	}
}

func TestBoundingBoxHalvesPerSymbol(t *testing.T) {
	code := "etctttagatagtgacagtcta"

	for k := 0; k < len(code); k++ {
		box, err := BoundingBox(code[:k+1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := 180 / math.Pow(2, float64(k))
		if box.Lat.Width() != want || box.Lon.Width() != want {
			t.Fatalf("prefix %q widths = (%v, %v); want %v", code[:k+1], box.Lat.Width(), box.Lon.Width(), want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	points := [][2]float64{
		{-41.288889, 174.777222},
		{7.0625, -95.677068},
		{51.5007, -0.1246},
		{-33.8568, 151.2153},
		{89.9, -179.9},
		{-89.9, 0.0},
	}

	for _, p := range points {
		for _, precision := range []int{2, 5, 10, 16, 22, 30} {
			code, err := Encode(p[0], p[1], precision)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			lat, lon, err := Decode(code)
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", code, err)
			}

			e := Error(code)
			if math.Abs(lat-p[0]) > e || math.Abs(lon-p[1]) > e {
				t.Fatalf("Decode(Encode(%v, %v, %d)) = (%v, %v); error above %v", p[0], p[1], precision, lat, lon, e)
			}

			box, _ := BoundingBox(code)
			if !box.Contains(lat, lon) || !box.Contains(p[0], p[1]) {
				t.Fatalf("box %+v of %q does not contain decoded or source point", box, code)
			}
		}
	}
}

func TestAlphabetClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		lat := rng.Float64()*180 - 90
		lon := rng.Float64()*360 - 180
		precision := 1 + rng.Intn(40)

		code, err := Encode(lat, lon, precision)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != precision {
			t.Fatalf("len(%q) = %d; want %d", code, len(code), precision)
		}
		if code[0] != MarkerEast && code[0] != MarkerWest {
			t.Fatalf("code %q has marker %q", code, code[0])
		}
		if strings.Trim(code[1:], alphabet) != "" {
			t.Fatalf("code %q has symbols outside %q", code, alphabet)
		}
	}
}

func TestPrefixLocality(t *testing.T) {
	prefix, err := Encode(12.34, 56.78, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	box, err := BoundingBox(prefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lat, lon := box.Center()
	others := [][2]float64{
		{lat, lon},
		{box.Lat.Min + box.Lat.Width()/4, box.Lon.Max - box.Lon.Width()/4},
		{box.Lat.Max - box.Lat.Width()/8, box.Lon.Min + box.Lon.Width()/8},
	}

	for _, p := range others {
		code, err := Encode(p[0], p[1], DefaultPrecision)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(code, prefix) {
			t.Fatalf("Encode(%v, %v) = %q; want prefix %q", p[0], p[1], code, prefix)
		}
	}
}

func TestIntervalHalve(t *testing.T) {
	i := Interval{Min: -180, Max: 0}

	if got := i.Halve(true); got != (Interval{-90, 0}) {
		t.Fatalf("Halve(true) = %+v", got)
	}
	if got := i.Halve(false); got != (Interval{-180, -90}) {
		t.Fatalf("Halve(false) = %+v", got)
	}
	if i != (Interval{-180, 0}) {
		t.Fatalf("Halve mutated the receiver: %+v", i)
	}
}
