// Package processor renders Geo::DNA grid overlays and converts point data.
package processor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/geodna"
	"github.com/woozymasta/geodna/internal/config"
	"github.com/woozymasta/geodna/internal/geo"

	"github.com/chai2010/webp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	labelPadding = 3

	maxGridPrecision = config.MaxTilePrecision
)

// TileCoordinate represents a specific tile.
type TileCoordinate struct {
	Z, X, Y int
}

func (t TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// GridCell is one code rectangle drawn on a tile.
type GridCell struct {
	Code string
	Box  geodna.Box
}

// OverlayOptions controls how a grid tile is drawn.
type OverlayOptions struct {
	GridColor    color.RGBA
	LabelColor   color.RGBA
	Size         int
	LevelOffset  int
	MaxPrecision int
	Quality      float32
	Labels       bool
}

// OverlayOptionsFromConfig converts the tiles section of the configuration.
func OverlayOptionsFromConfig(t config.Tiles) (OverlayOptions, error) {
	grid, err := config.ParseColor(t.GridColor)
	if err != nil {
		return OverlayOptions{}, err
	}
	label, err := config.ParseColor(t.LabelColor)
	if err != nil {
		return OverlayOptions{}, err
	}

	return OverlayOptions{
		GridColor:    grid,
		LabelColor:   label,
		Size:         t.Size,
		LevelOffset:  t.LevelOffset,
		MaxPrecision: t.MaxPrecision,
		Quality:      t.Quality,
		Labels:       !t.NoLabels,
	}, nil
}

// OverlayPrecision returns the code length drawn at zoom z.
// A code of length z+offset+1 gives 2^(offset+1) columns per tile.
func OverlayPrecision(z, offset, maxPrecision int) int {
	p := z + offset + 1
	if p < 1 {
		p = 1
	}
	if maxPrecision > 0 && p > maxPrecision {
		p = maxPrecision
	}
	return p
}

// GridCells lists every cell of the given code length intersecting the tile.
func GridCells(t TileCoordinate, precision int) ([]GridCell, error) {
	if precision < 1 || precision > maxGridPrecision {
		return nil, fmt.Errorf("%w: %d", geodna.ErrInvalidPrecision, precision)
	}

	bounds, err := geo.TileBounds(t.Z, t.X, t.Y)
	if err != nil {
		return nil, err
	}

	// cells per axis below the hemisphere split
	k := precision - 1
	step := 180 / math.Pow(2, float64(k))
	cols := 2 << uint(k)
	rows := 1 << uint(k)

	i0, i1 := cellRange(bounds.Lon, -180, step, cols)
	j0, j1 := cellRange(bounds.Lat, -90, step, rows)

	cells := make([]GridCell, 0, (i1-i0+1)*(j1-j0+1))
	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			box := geodna.Box{
				Lat: geodna.Interval{Min: -90 + float64(j)*step, Max: -90 + float64(j+1)*step},
				Lon: geodna.Interval{Min: -180 + float64(i)*step, Max: -180 + float64(i+1)*step},
			}
			lat, lon := box.Center()

			code, err := geodna.Encode(lat, lon, precision)
			if err != nil {
				return nil, err
			}
			cells = append(cells, GridCell{Code: code, Box: box})
		}
	}

	return cells, nil
}

// cellRange returns the first and last cell index overlapping iv.
func cellRange(iv geodna.Interval, origin, step float64, count int) (int, int) {
	first := int(math.Floor((iv.Min - origin) / step))
	last := int(math.Ceil((iv.Max-origin)/step)) - 1

	if first < 0 {
		first = 0
	}
	if last >= count {
		last = count - 1
	}
	if last < first {
		last = first
	}
	return first, last
}

// RenderOverlay draws the cell outlines and labels of one tile on a transparent image.
func RenderOverlay(t TileCoordinate, opts OverlayOptions) (*image.RGBA, error) {
	size := opts.Size
	if size <= 0 {
		size = config.DefaultTileSize
	}

	bounds, err := geo.TileBounds(t.Z, t.X, t.Y)
	if err != nil {
		return nil, err
	}

	cells, err := GridCells(t, OverlayPrecision(t.Z, opts.LevelOffset, opts.MaxPrecision))
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	proj := newProjector(bounds, size)
	for _, c := range cells {
		r := proj.rect(c.Box)
		strokeRect(img, r, opts.GridColor)
		if opts.Labels {
			drawLabel(img, r, c.Code, opts.LabelColor)
		}
	}

	return img, nil
}

// EncodeOverlay renders the tile and writes it as webp.
func EncodeOverlay(w io.Writer, t TileCoordinate, opts OverlayOptions) error {
	img, err := RenderOverlay(t, opts)
	if err != nil {
		return err
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = config.DefaultQuality
	}

	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: quality, Exact: true})
}

// projector maps WGS84 degrees to pixels of a Web Mercator tile.
type projector struct {
	west, lonSpan float64
	north, ySpan  float64
	size          float64
}

func newProjector(bounds geodna.Box, size int) projector {
	north := geo.MercatorY(bounds.Lat.Max)
	return projector{
		west:    bounds.Lon.Min,
		lonSpan: bounds.Lon.Width(),
		north:   north,
		ySpan:   north - geo.MercatorY(bounds.Lat.Min),
		size:    float64(size),
	}
}

func (p projector) x(lon float64) int {
	return int(math.Round((lon - p.west) / p.lonSpan * p.size))
}

func (p projector) y(lat float64) int {
	return int(math.Round((p.north - geo.MercatorY(lat)) / p.ySpan * p.size))
}

func (p projector) rect(b geodna.Box) image.Rectangle {
	return image.Rect(p.x(b.Lon.Min), p.y(b.Lat.Max), p.x(b.Lon.Max), p.y(b.Lat.Min))
}

// strokeRect draws the outline of r clipped to img.
func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	clip := img.Bounds()
	src := image.NewUniform(c)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(clip)
		if e.Empty() {
			continue
		}
		draw.Draw(img, e, src, image.Point{}, draw.Over)
	}
}

// drawLabel writes the longest suffix of code that fits inside r.
func drawLabel(img *image.RGBA, r image.Rectangle, code string, c color.RGBA) {
	face := basicfont.Face7x13
	visible := r.Intersect(img.Bounds())
	if visible.Dy() < face.Height+2*labelPadding {
		return
	}

	fit := (visible.Dx() - 2*labelPadding) / face.Advance
	if fit <= 0 {
		return
	}
	if len(code) > fit {
		code = code[len(code)-fit:]
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(visible.Min.X+labelPadding, visible.Min.Y+labelPadding+face.Ascent),
	}
	d.DrawString(code)
}
