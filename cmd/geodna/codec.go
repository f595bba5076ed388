package main

import (
	"fmt"
	"io"

	"github.com/woozymasta/geodna"
	"github.com/woozymasta/geodna/internal/geo"
)

type codesArgs struct {
	Codes []string `positional-arg-name:"code" required:"1"`
}

// EncodeCommand encodes a single coordinate.
type EncodeCommand struct {
	Lat       float64 `long:"lat" required:"true" description:"Latitude"`
	Lon       float64 `long:"lon" required:"true" description:"Longitude"`
	Precision int     `short:"p" long:"precision" description:"Code length including the hemisphere marker (default from configuration)"`
	Radians   bool    `short:"r" long:"radians" description:"Coordinates are given in radians"`
	Strict    bool    `short:"s" long:"strict" description:"Reject coordinates outside the valid range"`
}

type encodeOutput struct {
	Code string  `json:"code" yaml:"code"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// Execute implements flags.Commander.
func (c *EncodeCommand) Execute(_ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eo := geodna.EncodeOptions{
		Precision: cfg.Precision,
		Radians:   c.Radians,
		Strict:    cfg.Strict || c.Strict,
	}
	if c.Precision != 0 {
		eo.Precision = c.Precision
	}
	if eo.Precision > cfg.PrecisionLimit {
		return fmt.Errorf("%w: %d above the limit of %d", geodna.ErrInvalidPrecision, eo.Precision, cfg.PrecisionLimit)
	}

	code, err := geodna.EncodeWith(c.Lat, c.Lon, eo)
	if err != nil {
		return err
	}

	return render(encodeOutput{Code: code, Lat: c.Lat, Lon: c.Lon}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, code)
		return err
	})
}

// DecodeCommand prints the centre of each code.
type DecodeCommand struct {
	Radians bool `short:"r" long:"radians" description:"Print coordinates in radians"`
	Exact   bool `short:"e" long:"exact" description:"Do not round text output to the code precision"`

	Args codesArgs `positional-args:"yes"`
}

type decodeOutput struct {
	Code string  `json:"code" yaml:"code"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// Execute implements flags.Commander.
func (c *DecodeCommand) Execute(_ []string) error {
	out := make([]decodeOutput, 0, len(c.Args.Codes))
	for _, code := range c.Args.Codes {
		lat, lon, err := geodna.DecodeWith(code, geodna.DecodeOptions{Radians: c.Radians})
		if err != nil {
			return err
		}
		out = append(out, decodeOutput{Code: code, Lat: lat, Lon: lon})
	}

	return render(out, func(w io.Writer) error {
		for _, d := range out {
			lat, lon := fmt.Sprint(d.Lat), fmt.Sprint(d.Lon)
			if !c.Exact && !c.Radians {
				// codes were validated by DecodeWith above
				lat, lon, _ = geodna.Format(d.Code)
			}
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", d.Code, lat, lon); err != nil {
				return err
			}
		}
		return nil
	})
}

// BBoxCommand prints the bounding box of each code.
type BBoxCommand struct {
	Args codesArgs `positional-args:"yes"`
}

type bboxOutput struct {
	Code       string `json:"code" yaml:"code"`
	geodna.Box `yaml:",inline"`
}

// Execute implements flags.Commander.
func (c *BBoxCommand) Execute(_ []string) error {
	out := make([]bboxOutput, 0, len(c.Args.Codes))
	for _, code := range c.Args.Codes {
		box, err := geodna.BoundingBox(code)
		if err != nil {
			return err
		}
		out = append(out, bboxOutput{Code: code, Box: box})
	}

	return render(out, func(w io.Writer) error {
		for _, b := range out {
			_, err := fmt.Fprintf(w, "%s\tlat [%v, %v]\tlon [%v, %v]\n",
				b.Code, b.Lat.Min, b.Lat.Max, b.Lon.Min, b.Lon.Max)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// NeighboursCommand prints the eight codes around each code.
type NeighboursCommand struct {
	Args codesArgs `positional-args:"yes"`
}

type neighboursOutput struct {
	Code       string          `json:"code" yaml:"code"`
	Neighbours []geo.Neighbour `json:"neighbours" yaml:"neighbours"`
}

// Execute implements flags.Commander.
func (c *NeighboursCommand) Execute(_ []string) error {
	out := make([]neighboursOutput, 0, len(c.Args.Codes))
	for _, code := range c.Args.Codes {
		codes, err := geodna.Neighbours(code)
		if err != nil {
			return err
		}
		out = append(out, neighboursOutput{Code: code, Neighbours: geo.PairNeighbours(codes)})
	}

	return render(out, func(w io.Writer) error {
		for _, n := range out {
			if _, err := fmt.Fprintln(w, n.Code); err != nil {
				return err
			}
			for _, nb := range n.Neighbours {
				if _, err := fmt.Fprintf(w, "  %-2s %s\n", nb.Direction, nb.Code); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// InfoCommand describes each code.
type InfoCommand struct {
	Args codesArgs `positional-args:"yes"`
}

// Execute implements flags.Commander.
func (c *InfoCommand) Execute(_ []string) error {
	cells := make([]geo.Cell, 0, len(c.Args.Codes))
	for _, code := range c.Args.Codes {
		cell, err := geo.Describe(code)
		if err != nil {
			return err
		}
		cells = append(cells, cell)
	}

	return render(cells, func(w io.Writer) error {
		for _, cell := range cells {
			lat, lon, err := geodna.Format(cell.Code)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w,
				"code:      %s\nprecision: %d\ncentre:    %s, %s\nlat:       [%v, %v]\nlon:       [%v, %v]\nerror:     %g deg\nsize:      %.1f m\narea:      %.6g km2\ngeohash:   %s\n\n",
				cell.Code, cell.Precision, lat, lon,
				cell.Box.Lat.Min, cell.Box.Lat.Max, cell.Box.Lon.Min, cell.Box.Lon.Max,
				cell.ErrorDeg, cell.SizeMeters, cell.AreaKm2, cell.Geohash)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
