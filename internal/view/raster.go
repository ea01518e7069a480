package view

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"fitsview/internal/errors"
	"fitsview/internal/fits"
)

// normalize maps the grid into [0, 1]. Non-finite values collapse to zero
// before the range is measured, so NaN and infinite samples never poison the
// scale, and a frame of identical values renders flat black.
func normalize(g *fits.Grid) *fits.Grid {
	out := &fits.Grid{Rows: g.Rows, Cols: g.Cols, Data: make([]float64, len(g.Data))}
	min, max := math.Inf(1), math.Inf(-1)
	for i, v := range g.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out.Data[i] = v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min + 1e-9
	for i, v := range out.Data {
		out.Data[i] = (v - min) / span
	}
	return out
}

// rotate90 turns the grid counter-clockwise k quarter turns.
func rotate90(g *fits.Grid, k int) *fits.Grid {
	k = ((k % 4) + 4) % 4
	for ; k > 0; k-- {
		out := &fits.Grid{Rows: g.Cols, Cols: g.Rows, Data: make([]float64, len(g.Data))}
		for i := 0; i < out.Rows; i++ {
			for j := 0; j < out.Cols; j++ {
				out.Data[i*out.Cols+j] = g.At(j, g.Cols-1-i)
			}
		}
		g = out
	}
	return g
}

// heat interpolates black, red, yellow, white.
var heatStops = []colorful.Color{
	{R: 0, G: 0, B: 0},
	{R: 1, G: 0, B: 0},
	{R: 1, G: 1, B: 0},
	{R: 1, G: 1, B: 1},
}

func heatColor(v float64) color.NRGBA {
	segs := len(heatStops) - 1
	pos := v * float64(segs)
	i := int(pos)
	if i >= segs {
		i = segs - 1
	}
	c := heatStops[i].BlendRgb(heatStops[i+1], pos-float64(i))
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func mapColor(v float64, colormap string) color.NRGBA {
	switch colormap {
	case "gray_r":
		g := uint8((1 - v) * 255)
		return color.NRGBA{R: g, G: g, B: g, A: 255}
	case "heat":
		return heatColor(v)
	default:
		g := uint8(v * 255)
		return color.NRGBA{R: g, G: g, B: g, A: 255}
	}
}

// frame caches the geometry of the last rendered image so pointer positions
// can be unprojected back to data pixels.
type frame struct {
	rows, cols int // rotated grid dimensions
	w, h       int // output raster dimensions
	k          int // quarter turns applied
}

// Render rasterizes the current image: normalize, rotate, colorize, then
// scale with nearest-neighbor sampling to the base display size times the
// zoom factor. Row zero of the data lands at the bottom of the raster.
func (b *Browser) Render() (image.Image, error) {
	hdu := b.Current()
	if hdu == nil {
		return nil, errors.New("no image to render")
	}
	grid, err := hdu.Grid()
	if err != nil {
		return nil, err
	}

	k := b.rotation / 90
	g := rotate90(normalize(grid), k)

	longest := g.Cols
	if g.Rows > longest {
		longest = g.Rows
	}
	scale := b.zoom * float64(b.baseSize) / float64(longest)
	w := int(float64(g.Cols) * scale)
	h := int(float64(g.Rows) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b.last = frame{rows: g.Rows, cols: g.Cols, w: w, h: h, k: k}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sr := g.Rows - 1 - y*g.Rows/h
		for x := 0; x < w; x++ {
			sc := x * g.Cols / w
			img.SetNRGBA(x, y, mapColor(g.At(sr, sc), b.colormap))
		}
	}
	return img, nil
}

// Unproject maps a pointer position on the last rendered raster back to the
// data pixel underneath it, undoing the scale, the vertical flip, and the
// rotation. It reports false before the first render or outside the raster.
func (b *Browser) Unproject(x, y int) (int, int, bool) {
	f := b.last
	if f.w == 0 || f.h == 0 {
		return 0, 0, false
	}
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return 0, 0, false
	}

	// raster to rotated grid coordinates
	col := x * f.cols / f.w
	row := f.rows - 1 - y*f.rows/f.h

	// undo the counter-clockwise quarter turns
	rows, cols := f.rows, f.cols
	for k := f.k; k > 0; k-- {
		row, col = col, rows-1-row
		rows, cols = cols, rows
	}
	return col, row, true
}
