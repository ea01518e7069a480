package view

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitsview/internal/fits"
	"fitsview/internal/fits/fitstest"
)

// open builds a file whose primary HDU is a 2x2 float image with values
// 0..3 stored bottom row first, plus any extra header cards.
func openImageFile(t *testing.T, extra ...fitstest.Card) *fits.File {
	t.Helper()
	b := fitstest.New().
		Header(fitstest.PrimaryHeader(-32, []int{2, 2}, extra...)...).
		Data(fitstest.Float32BE(0, 1, 2, 3))
	f, err := fits.Open(b.WriteTemp(t), fits.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestNormalize(t *testing.T) {
	g := &fits.Grid{Rows: 1, Cols: 4, Data: []float64{10, 20, math.NaN(), 30}}
	n := normalize(g)

	// NaN collapses to zero before the range is measured, so the minimum
	// here is 0, not 10.
	assert.InDelta(t, 10.0/30.0, n.Data[0], 1e-6)
	assert.InDelta(t, 20.0/30.0, n.Data[1], 1e-6)
	assert.InDelta(t, 0.0, n.Data[2], 1e-6)
	assert.InDelta(t, 1.0, n.Data[3], 1e-6)
}

func TestNormalizeInfiniteSamples(t *testing.T) {
	// Infinities collapse to zero like NaN does; a single Inf sample must
	// not become the range and flatten every finite pixel.
	g := &fits.Grid{Rows: 1, Cols: 4, Data: []float64{10, 20, math.Inf(1), 30}}
	n := normalize(g)

	assert.InDelta(t, 10.0/30.0, n.Data[0], 1e-6)
	assert.InDelta(t, 20.0/30.0, n.Data[1], 1e-6)
	assert.InDelta(t, 0.0, n.Data[2], 1e-6)
	assert.InDelta(t, 1.0, n.Data[3], 1e-6)

	g = &fits.Grid{Rows: 1, Cols: 3, Data: []float64{math.Inf(-1), 5, 10}}
	n = normalize(g)
	assert.InDelta(t, 0.0, n.Data[0], 1e-6)
	assert.InDelta(t, 1.0, n.Data[2], 1e-6)
	for _, v := range n.Data {
		assert.False(t, math.IsNaN(v))
	}
}

func TestNormalizeFlatFrame(t *testing.T) {
	g := &fits.Grid{Rows: 1, Cols: 3, Data: []float64{5, 5, 5}}
	n := normalize(g)
	for _, v := range n.Data {
		assert.InDelta(t, 0.0, v, 1e-6)
	}
}

func TestRotate90(t *testing.T) {
	// 2x3 grid:
	//   1 2 3
	//   4 5 6
	g := &fits.Grid{Rows: 2, Cols: 3, Data: []float64{1, 2, 3, 4, 5, 6}}

	r := rotate90(g, 1)
	require.Equal(t, 3, r.Rows)
	require.Equal(t, 2, r.Cols)
	// counter-clockwise: the last column becomes the first row
	assert.Equal(t, []float64{3, 6, 2, 5, 1, 4}, r.Data)

	r2 := rotate90(g, 2)
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1}, r2.Data)

	r4 := rotate90(g, 4)
	assert.Equal(t, g.Data, r4.Data)

	rNeg := rotate90(g, -1)
	assert.Equal(t, rotate90(g, 3).Data, rNeg.Data)
}

func TestZoomAndRotationState(t *testing.T) {
	b := NewBrowser(openImageFile(t), "gray", 600, 1.2, 0.1)

	b.ZoomIn()
	assert.InDelta(t, 1.2, b.Zoom(), 1e-9)
	b.ZoomOut()
	b.ZoomOut()
	assert.InDelta(t, 1/1.2, b.Zoom(), 1e-9)

	// Zooming out never goes below the floor.
	for i := 0; i < 50; i++ {
		b.ZoomOut()
	}
	assert.InDelta(t, 0.1, b.Zoom(), 1e-9)

	b.RotateLeft()
	assert.Equal(t, 90, b.Rotation())
	b.RotateLeft()
	b.RotateLeft()
	b.RotateLeft()
	assert.Equal(t, 0, b.Rotation())
	b.RotateRight()
	assert.Equal(t, 270, b.Rotation())
}

func TestZoomSettingsFromConfig(t *testing.T) {
	b := NewBrowser(openImageFile(t), "gray", 600, 1.5, 0.5)

	b.ZoomIn()
	assert.InDelta(t, 1.5, b.Zoom(), 1e-9)

	for i := 0; i < 20; i++ {
		b.ZoomOut()
	}
	assert.InDelta(t, 0.5, b.Zoom(), 1e-9)

	// Steps at or below 1 and non-positive floors fall back to defaults.
	b = NewBrowser(openImageFile(t), "gray", 600, 1.0, 0)
	b.ZoomIn()
	assert.InDelta(t, 1.2, b.Zoom(), 1e-9)
	for i := 0; i < 50; i++ {
		b.ZoomOut()
	}
	assert.InDelta(t, 0.1, b.Zoom(), 1e-9)
}

func TestCyclicNavigation(t *testing.T) {
	b := fitstest.New().
		Header(fitstest.PrimaryHeader(-32, []int{2, 2})...).
		Data(fitstest.Float32BE(0, 1, 2, 3)).
		Header(fitstest.ImageHeader(-32, []int{2, 2})...).
		Data(fitstest.Float32BE(4, 5, 6, 7))
	f, err := fits.Open(b.WriteTemp(t), fits.Options{})
	require.NoError(t, err)
	defer f.Close()

	v := NewBrowser(f, "gray", 600, 1.2, 0.1)
	require.Equal(t, 2, v.Count())

	assert.Equal(t, 0, v.Index())
	v.Next()
	assert.Equal(t, 1, v.Index())
	v.Next()
	assert.Equal(t, 0, v.Index())
	v.Prev()
	assert.Equal(t, 1, v.Index())

	v.Select(4)
	assert.Equal(t, 0, v.Index())
	v.Select(-1)
	assert.Equal(t, 1, v.Index())
}

func TestRenderGeometry(t *testing.T) {
	b := NewBrowser(openImageFile(t), "gray", 4, 1.2, 0.1)

	img, err := b.Render()
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 4, bounds.Dx())
	assert.Equal(t, 4, bounds.Dy())

	// Row zero holds the smallest values and must land at the bottom.
	bottom := color.NRGBAModel.Convert(img.At(0, 3)).(color.NRGBA)
	top := color.NRGBAModel.Convert(img.At(3, 0)).(color.NRGBA)
	assert.Equal(t, uint8(0), bottom.R)
	assert.GreaterOrEqual(t, top.R, uint8(254))

	b.ZoomIn()
	img, err = b.Render()
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx()) // int(4*1.2) with nearest scaling
}

func TestColormapEndpoints(t *testing.T) {
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mapColor(0, "gray"))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mapColor(1, "gray"))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mapColor(0, "gray_r"))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mapColor(1, "gray_r"))

	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, mapColor(0, "heat"))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, mapColor(1, "heat"))
	mid := mapColor(1.0/3.0, "heat")
	assert.Equal(t, uint8(255), mid.R)
	assert.Less(t, mid.G, uint8(64))
}

func TestCoordTextFallback(t *testing.T) {
	b := NewBrowser(openImageFile(t), "gray", 600, 1.2, 0.1)
	assert.False(t, b.HasSky())
	assert.Equal(t, "x: 3  y: 7", b.CoordText(3, 7))
}

func TestCoordTextWithSky(t *testing.T) {
	f := openImageFile(t,
		fitstest.Card{Name: "CTYPE1", Value: "RA---TAN"},
		fitstest.Card{Name: "CTYPE2", Value: "DEC--TAN"},
		fitstest.Card{Name: "CRPIX1", Value: 1.0},
		fitstest.Card{Name: "CRPIX2", Value: 1.0},
		fitstest.Card{Name: "CRVAL1", Value: 150.0},
		fitstest.Card{Name: "CRVAL2", Value: 2.0},
		fitstest.Card{Name: "CD1_1", Value: 0.001},
		fitstest.Card{Name: "CD2_2", Value: 0.001},
	)
	b := NewBrowser(f, "gray", 600, 1.2, 0.1)
	require.True(t, b.HasSky())
	assert.Equal(t, "RA---TAN: 150.000000  DEC--TAN: 2.000000", b.CoordText(0, 0))
}

func TestUnprojectRoundTrip(t *testing.T) {
	b := NewBrowser(openImageFile(t), "gray", 2, 1.2, 0.1)
	_, err := b.Render()
	require.NoError(t, err)

	// 2x2 raster at zoom 1: bottom-left display pixel is data (0, 0).
	px, py, ok := b.Unproject(0, 1)
	require.True(t, ok)
	assert.Equal(t, 0, px)
	assert.Equal(t, 0, py)

	px, py, ok = b.Unproject(1, 0)
	require.True(t, ok)
	assert.Equal(t, 1, px)
	assert.Equal(t, 1, py)

	_, _, ok = b.Unproject(5, 0)
	assert.False(t, ok)

	// After one left turn the mapping follows the rotation.
	b.RotateLeft()
	_, err = b.Render()
	require.NoError(t, err)
	px, py, ok = b.Unproject(0, 1)
	require.True(t, ok)
	assert.Equal(t, 1, px)
	assert.Equal(t, 0, py)
}

func TestNoImages(t *testing.T) {
	b := fitstest.New().
		Header(fitstest.PrimaryHeader(8, nil)...).
		Header(fitstest.BinTableHeader([]string{"A"}, []string{"1I"}, 2, 1)...).
		Data(fitstest.Int16BE(1))
	f, err := fits.Open(b.WriteTemp(t), fits.Options{})
	require.NoError(t, err)
	defer f.Close()

	v := NewBrowser(f, "gray", 600, 1.2, 0.1)
	assert.False(t, v.HasImages())
	assert.Nil(t, v.Current())
	_, err = v.Render()
	assert.Error(t, err)
	assert.Equal(t, "No image data found in this file.", v.InfoText())

	v.Next()
	v.Prev()
	assert.Equal(t, 0, v.Index())
}

func TestInfoTextFiltering(t *testing.T) {
	f := openImageFile(t,
		fitstest.Card{Name: "OBJECT", Value: "M31"},
		fitstest.Card{Name: "EXPTIME", Value: 30.0},
		fitstest.Card{Name: "COMMENT", Comment: "first comment"},
		fitstest.Card{Name: "COMMENT", Comment: "second comment"},
		fitstest.Card{Name: "HISTORY", Comment: "calibrated"},
	)
	b := NewBrowser(f, "gray", 600, 1.2, 0.1)
	b.RotateLeft()

	info := b.InfoText()
	assert.Contains(t, info, "HDU #0 (PrimaryHDU)")
	assert.Contains(t, info, "Shape: 2 x 2")
	assert.Contains(t, info, "Zoom: 1.00x")
	assert.Contains(t, info, "Rotation: 90")
	assert.Contains(t, info, "OBJECT = M31")
	assert.Contains(t, info, "EXPTIME = 30")
	assert.Contains(t, info, "COMMENT first comment")
	assert.Contains(t, info, "COMMENT second comment")
	assert.Contains(t, info, "HISTORY calibrated")

	// Structural keywords stay out of the panel.
	assert.NotContains(t, info, "SIMPLE")
	assert.NotContains(t, info, "BITPIX")
	assert.NotContains(t, info, "NAXIS")
}

func TestInfoTextCommentaryCap(t *testing.T) {
	cards := []fitstest.Card{}
	for i := 0; i < 8; i++ {
		cards = append(cards, fitstest.Card{Name: "COMMENT", Comment: "entry"})
	}
	b := NewBrowser(openImageFile(t, cards...), "gray", 600, 1.2, 0.1)

	info := b.InfoText()
	count := 0
	for _, line := range splitLines(info) {
		if len(line) >= 7 && line[:7] == "COMMENT" {
			count++
		}
	}
	assert.Equal(t, 5, count)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
