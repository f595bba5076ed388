package geodna

var (
	latRange  = Interval{Min: -90, Max: 90}
	westRange = Interval{Min: -180, Max: 0}
	eastRange = Interval{Min: 0, Max: 180}
)

// Interval is a closed range of degrees.
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Mid returns the midpoint of the interval.
func (i Interval) Mid() float64 { return (i.Min + i.Max) / 2 }

// Width returns Max - Min.
func (i Interval) Width() float64 { return i.Max - i.Min }

// Lower returns the lower half.
func (i Interval) Lower() Interval { return Interval{Min: i.Min, Max: i.Mid()} }

// Upper returns the upper half.
func (i Interval) Upper() Interval { return Interval{Min: i.Mid(), Max: i.Max} }

// Halve returns the upper half when upper is set, the lower half otherwise.
func (i Interval) Halve(upper bool) Interval {
	if upper {
		return i.Upper()
	}
	return i.Lower()
}

// Contains reports whether v lies inside the closed interval.
func (i Interval) Contains(v float64) bool { return v >= i.Min && v <= i.Max }

// Box is the rectangle identified by a code.
type Box struct {
	Lat Interval `json:"lat" yaml:"lat"`
	Lon Interval `json:"lon" yaml:"lon"`
}

// Center returns the midpoint of both intervals.
func (b Box) Center() (lat, lon float64) { return b.Lat.Mid(), b.Lon.Mid() }

// Contains reports whether the coordinate lies inside the box.
func (b Box) Contains(lat, lon float64) bool {
	return b.Lat.Contains(lat) && b.Lon.Contains(lon)
}
