package wcs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitsview/internal/errors"
	"fitsview/internal/fits"
)

func linearHeader() *fits.Header {
	return fits.NewHeader(
		fits.Card{Name: "CTYPE1", Value: "RA---CAR"},
		fits.Card{Name: "CTYPE2", Value: "DEC--CAR"},
		fits.Card{Name: "CRPIX1", Value: float64(10)},
		fits.Card{Name: "CRPIX2", Value: float64(20)},
		fits.Card{Name: "CRVAL1", Value: float64(150)},
		fits.Card{Name: "CRVAL2", Value: float64(-30)},
		fits.Card{Name: "CDELT1", Value: -0.5},
		fits.Card{Name: "CDELT2", Value: 0.5},
	)
}

func TestLinearTransform(t *testing.T) {
	tr, err := FromHeader(linearHeader())
	require.NoError(t, err)

	// The reference pixel maps exactly to the reference values. CRPIX is
	// 1-based while callers pass 0-based pixel positions.
	lon, lat := tr.PixelToSky(9, 19)
	assert.InDelta(t, 150.0, lon, 1e-12)
	assert.InDelta(t, -30.0, lat, 1e-12)

	// One pixel along each axis moves by CDELT.
	lon, lat = tr.PixelToSky(10, 19)
	assert.InDelta(t, 149.5, lon, 1e-12)
	assert.InDelta(t, -30.0, lat, 1e-12)

	lon, lat = tr.PixelToSky(9, 21)
	assert.InDelta(t, 150.0, lon, 1e-12)
	assert.InDelta(t, -29.0, lat, 1e-12)
}

func TestCDMatrixPreferred(t *testing.T) {
	hdr := fits.NewHeader(
		fits.Card{Name: "CTYPE1", Value: "RA---TAN"},
		fits.Card{Name: "CTYPE2", Value: "DEC--TAN"},
		fits.Card{Name: "CRPIX1", Value: float64(1)},
		fits.Card{Name: "CRPIX2", Value: float64(1)},
		fits.Card{Name: "CRVAL1", Value: float64(0)},
		fits.Card{Name: "CRVAL2", Value: float64(0)},
		fits.Card{Name: "CD1_1", Value: 0.001},
		fits.Card{Name: "CD2_2", Value: 0.001},
		// CDELT present but must be ignored when CD cards exist
		fits.Card{Name: "CDELT1", Value: float64(99)},
		fits.Card{Name: "CDELT2", Value: float64(99)},
	)
	tr, err := FromHeader(hdr)
	require.NoError(t, err)

	lon, lat := tr.PixelToSky(0, 0)
	assert.InDelta(t, 0.0, lon, 1e-9)
	assert.InDelta(t, 0.0, lat, 1e-9)

	// Near the reference point the TAN deprojection is close to linear.
	lon, lat = tr.PixelToSky(1, 0)
	assert.InDelta(t, 0.001, lon, 1e-6)
	assert.InDelta(t, 0.0, lat, 1e-6)
}

func TestTanDeprojection(t *testing.T) {
	hdr := fits.NewHeader(
		fits.Card{Name: "CTYPE1", Value: "RA---TAN"},
		fits.Card{Name: "CTYPE2", Value: "DEC--TAN"},
		fits.Card{Name: "CRPIX1", Value: float64(100)},
		fits.Card{Name: "CRPIX2", Value: float64(100)},
		fits.Card{Name: "CRVAL1", Value: float64(0.2)},
		fits.Card{Name: "CRVAL2", Value: float64(45)},
		fits.Card{Name: "CD1_1", Value: 0.01},
		fits.Card{Name: "CD2_2", Value: 0.01},
	)
	tr, err := FromHeader(hdr)
	require.NoError(t, err)

	lon, lat := tr.PixelToSky(99, 99)
	assert.InDelta(t, 0.2, lon, 1e-9)
	assert.InDelta(t, 45.0, lat, 1e-9)

	// Moving north by 10 pixels raises declination by roughly a tenth of
	// a degree at this scale.
	_, lat = tr.PixelToSky(99, 109)
	assert.InDelta(t, 45.1, lat, 1e-3)
	assert.Greater(t, lat, 45.0)

	// Longitude stays in [0, 360) when the offset crosses zero.
	lon, _ = tr.PixelToSky(50, 99)
	assert.GreaterOrEqual(t, lon, 0.0)
	assert.Less(t, lon, 360.0)
	assert.Greater(t, lon, 359.0)
}

func TestCrota2Rotation(t *testing.T) {
	hdr := fits.NewHeader(
		fits.Card{Name: "CTYPE1", Value: "RA---CAR"},
		fits.Card{Name: "CTYPE2", Value: "DEC--CAR"},
		fits.Card{Name: "CRPIX1", Value: float64(1)},
		fits.Card{Name: "CRPIX2", Value: float64(1)},
		fits.Card{Name: "CRVAL1", Value: float64(100)},
		fits.Card{Name: "CRVAL2", Value: float64(10)},
		fits.Card{Name: "CDELT1", Value: float64(1)},
		fits.Card{Name: "CDELT2", Value: float64(1)},
		fits.Card{Name: "CROTA2", Value: float64(90)},
	)
	tr, err := FromHeader(hdr)
	require.NoError(t, err)

	// A 90 degree rotation sends the first pixel axis to the second
	// world axis.
	lon, lat := tr.PixelToSky(1, 0)
	assert.InDelta(t, 100.0, lon, 1e-9)
	assert.InDelta(t, 11.0, lat, 1e-9)
}

func TestPCMatrix(t *testing.T) {
	hdr := fits.NewHeader(
		fits.Card{Name: "CTYPE1", Value: "RA---CAR"},
		fits.Card{Name: "CTYPE2", Value: "DEC--CAR"},
		fits.Card{Name: "CRPIX1", Value: float64(1)},
		fits.Card{Name: "CRPIX2", Value: float64(1)},
		fits.Card{Name: "CRVAL1", Value: float64(0)},
		fits.Card{Name: "CRVAL2", Value: float64(0)},
		fits.Card{Name: "CDELT1", Value: float64(2)},
		fits.Card{Name: "CDELT2", Value: float64(3)},
		fits.Card{Name: "PC1_1", Value: float64(0)},
		fits.Card{Name: "PC1_2", Value: float64(1)},
		fits.Card{Name: "PC2_1", Value: float64(1)},
		fits.Card{Name: "PC2_2", Value: float64(0)},
	)
	tr, err := FromHeader(hdr)
	require.NoError(t, err)

	lon, lat := tr.PixelToSky(1, 0)
	assert.InDelta(t, 0.0, lon, 1e-12)
	assert.InDelta(t, 3.0, lat, 1e-12)

	lon, lat = tr.PixelToSky(0, 1)
	assert.InDelta(t, 2.0, lon, 1e-12)
	assert.InDelta(t, 0.0, lat, 1e-12)
}

func TestMissingKeywords(t *testing.T) {
	cases := []struct {
		name string
		hdr  *fits.Header
	}{
		{"empty", fits.NewHeader()},
		{"no ctype", fits.NewHeader(
			fits.Card{Name: "CRVAL1", Value: float64(0)},
			fits.Card{Name: "CRVAL2", Value: float64(0)},
		)},
		{"no crval", fits.NewHeader(
			fits.Card{Name: "CTYPE1", Value: "RA---TAN"},
			fits.Card{Name: "CTYPE2", Value: "DEC--TAN"},
		)},
		{"no matrix", fits.NewHeader(
			fits.Card{Name: "CTYPE1", Value: "RA---TAN"},
			fits.Card{Name: "CTYPE2", Value: "DEC--TAN"},
			fits.Card{Name: "CRVAL1", Value: float64(0)},
			fits.Card{Name: "CRVAL2", Value: float64(0)},
		)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromHeader(tc.hdr)
			require.Error(t, err)
			assert.True(t, errors.IsWCSUnavailable(err))
		})
	}
}

func TestSingularMatrix(t *testing.T) {
	hdr := fits.NewHeader(
		fits.Card{Name: "CTYPE1", Value: "RA---TAN"},
		fits.Card{Name: "CTYPE2", Value: "DEC--TAN"},
		fits.Card{Name: "CRVAL1", Value: float64(0)},
		fits.Card{Name: "CRVAL2", Value: float64(0)},
		fits.Card{Name: "CD1_1", Value: float64(1)},
		fits.Card{Name: "CD1_2", Value: float64(1)},
		fits.Card{Name: "CD2_1", Value: float64(1)},
		fits.Card{Name: "CD2_2", Value: float64(1)},
	)
	_, err := FromHeader(hdr)
	require.Error(t, err)
	assert.True(t, errors.IsWCSUnavailable(err))
}

func TestAxisNames(t *testing.T) {
	tr, err := FromHeader(linearHeader())
	require.NoError(t, err)
	c1, c2 := tr.AxisNames()
	assert.Equal(t, "RA---CAR", c1)
	assert.Equal(t, "DEC--CAR", c2)
}

func TestLongitudeWrapOnlyForTan(t *testing.T) {
	// Linear systems report the raw offset even when it goes negative.
	hdr := linearHeader()
	tr, err := FromHeader(hdr)
	require.NoError(t, err)
	lon, _ := tr.PixelToSky(909, 19)
	assert.InDelta(t, -300.0, lon, 1e-9)
	assert.False(t, math.IsNaN(lon))
}
