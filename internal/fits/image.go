package fits

import (
	"encoding/binary"
	"math"

	"fitsview/internal/errors"
)

// Grid is a 2D float64 view of an image HDU. Values marked undefined by a
// BLANK card are NaN. For arrays with more than two axes only the first
// plane is exposed.
type Grid struct {
	Rows, Cols int
	Data       []float64 // row-major; Data[r*Cols+c], row 0 first in file order
}

// At returns the value at row r, column c.
func (g *Grid) At(r, c int) float64 {
	return g.Data[r*g.Cols+c]
}

// Grid decodes the HDU's data segment as a 2D array. One-dimensional data
// becomes a single row.
func (h *HDU) Grid() (*Grid, error) {
	if !h.IsImage() {
		return nil, errors.NewFormatError("not an image extension", h.path, h.Index, errors.InvalidHeader, nil)
	}

	axes := h.Header.Axes()
	cols := axes[0]
	rows := 1
	if len(axes) > 1 {
		rows = axes[1]
	}
	n := rows * cols

	bitpix := h.Header.Bitpix()
	bzero := h.Header.FloatOr("BZERO", 0)
	bscale := h.Header.FloatOr("BSCALE", 1)
	blank, hasBlank := h.Header.Int("BLANK")

	width := bitpix
	if width < 0 {
		width = -width
	}
	width /= 8
	if n*width > len(h.raw) {
		return nil, errors.NewFormatError("truncated data segment", h.path, h.Index, errors.TruncatedData, nil)
	}

	g := &Grid{Rows: rows, Cols: cols, Data: make([]float64, n)}
	raw := h.raw

	switch bitpix {
	case 8:
		for i := 0; i < n; i++ {
			g.Data[i] = scaled(float64(raw[i]), int64(raw[i]), bzero, bscale, blank, hasBlank)
		}
	case 16:
		for i := 0; i < n; i++ {
			v := int16(binary.BigEndian.Uint16(raw[i*2:]))
			g.Data[i] = scaled(float64(v), int64(v), bzero, bscale, blank, hasBlank)
		}
	case 32:
		for i := 0; i < n; i++ {
			v := int32(binary.BigEndian.Uint32(raw[i*4:]))
			g.Data[i] = scaled(float64(v), int64(v), bzero, bscale, blank, hasBlank)
		}
	case 64:
		for i := 0; i < n; i++ {
			v := int64(binary.BigEndian.Uint64(raw[i*8:]))
			g.Data[i] = scaled(float64(v), v, bzero, bscale, blank, hasBlank)
		}
	case -32:
		for i := 0; i < n; i++ {
			v := math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:]))
			g.Data[i] = bzero + bscale*float64(v)
		}
	case -64:
		for i := 0; i < n; i++ {
			v := math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
			g.Data[i] = bzero + bscale*v
		}
	default:
		return nil, errors.NewFormatError("unsupported BITPIX", h.path, h.Index, errors.UnsupportedBitpix, nil)
	}

	return g, nil
}

// scaled applies the BZERO/BSCALE transform to an integer sample, mapping
// BLANK values to NaN.
func scaled(v float64, raw int64, bzero, bscale float64, blank int64, hasBlank bool) float64 {
	if hasBlank && raw == blank {
		return math.NaN()
	}
	return bzero + bscale*v
}
