package geodna

import (
	"math"
	"strconv"
	"strings"
)

// Error returns the maximum distance in degrees between a decoded code and
// any coordinate that encodes to it. It depends only on the code length.
func Error(code string) float64 {
	return 90 * math.Pow(2, -float64(len(code)-1))
}

// ErrorRadians is Error in radians.
func ErrorRadians(code string) float64 {
	return toRadians(Error(code))
}

// Size returns the approximate length in meters of one side of the code's box.
func Size(code string) float64 {
	return 20000000 * math.Pow(2, -float64(len(code)-1))
}

// Format returns the decoded latitude and longitude with only the decimals
// the code's precision supports.
func Format(code string) (lat, lon string, err error) {
	la, lo, err := Decode(code)
	if err != nil {
		return "", "", err
	}

	digits := max(1, int(math.Round(-math.Log10(Error(code))))) - 1

	return trimDecimals(strconv.FormatFloat(la, 'f', digits, 64)),
		trimDecimals(strconv.FormatFloat(lo, 'f', digits, 64)), nil
}

func trimDecimals(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}
