// Package wcs derives pixel-to-sky coordinate transforms from FITS headers.
// It covers linear world coordinate systems described by a CD matrix, a
// PC matrix with CDELT scales, or the legacy CDELT/CROTA2 form, with an
// optional gnomonic (TAN) deprojection. Anything it cannot represent is a
// recoverable error; callers fall back to raw pixel coordinates.
package wcs

import (
	"math"
	"strings"

	"fitsview/internal/errors"
	"fitsview/internal/fits"
)

// Transform maps 0-based pixel positions to world coordinates in degrees.
type Transform struct {
	ctype1, ctype2 string
	crpix1, crpix2 float64 // 1-based reference pixel
	crval1, crval2 float64 // world coordinates at the reference pixel
	cd             [2][2]float64
	tan            bool
}

// FromHeader builds a transform from header keywords. Both CTYPEn and CRVALn
// pairs must be present; the matrix comes from CDi_j, PCi_j with CDELTn, or
// CDELTn with CROTA2, in that order of preference.
func FromHeader(hdr *fits.Header) (*Transform, error) {
	ctype1, ok1 := hdr.Str("CTYPE1")
	ctype2, ok2 := hdr.Str("CTYPE2")
	if !ok1 || !ok2 {
		return nil, errors.NewWCSError("missing CTYPE1/CTYPE2", errors.MissingWCS, nil)
	}
	crval1, ok1 := hdr.Float("CRVAL1")
	crval2, ok2 := hdr.Float("CRVAL2")
	if !ok1 || !ok2 {
		return nil, errors.NewWCSError("missing CRVAL1/CRVAL2", errors.MissingWCS, nil)
	}

	t := &Transform{
		ctype1: ctype1,
		ctype2: ctype2,
		crpix1: hdr.FloatOr("CRPIX1", 0),
		crpix2: hdr.FloatOr("CRPIX2", 0),
		crval1: crval1,
		crval2: crval2,
		tan:    strings.HasSuffix(ctype1, "-TAN") || strings.HasSuffix(ctype2, "-TAN"),
	}

	cd, err := matrixFromHeader(hdr)
	if err != nil {
		return nil, err
	}
	t.cd = cd

	if det := cd[0][0]*cd[1][1] - cd[0][1]*cd[1][0]; det == 0 {
		return nil, errors.NewWCSError("singular transform matrix", errors.InvalidWCS, nil)
	}

	return t, nil
}

// matrixFromHeader assembles the degrees-per-pixel linear matrix.
func matrixFromHeader(hdr *fits.Header) ([2][2]float64, error) {
	var cd [2][2]float64

	if hdr.Has("CD1_1") || hdr.Has("CD1_2") || hdr.Has("CD2_1") || hdr.Has("CD2_2") {
		cd[0][0] = hdr.FloatOr("CD1_1", 0)
		cd[0][1] = hdr.FloatOr("CD1_2", 0)
		cd[1][0] = hdr.FloatOr("CD2_1", 0)
		cd[1][1] = hdr.FloatOr("CD2_2", 0)
		return cd, nil
	}

	cdelt1, ok1 := hdr.Float("CDELT1")
	cdelt2, ok2 := hdr.Float("CDELT2")
	if !ok1 || !ok2 {
		return cd, errors.NewWCSError("missing CD matrix and CDELT1/CDELT2", errors.MissingWCS, nil)
	}

	if hdr.Has("PC1_1") || hdr.Has("PC1_2") || hdr.Has("PC2_1") || hdr.Has("PC2_2") {
		cd[0][0] = cdelt1 * hdr.FloatOr("PC1_1", 1)
		cd[0][1] = cdelt1 * hdr.FloatOr("PC1_2", 0)
		cd[1][0] = cdelt2 * hdr.FloatOr("PC2_1", 0)
		cd[1][1] = cdelt2 * hdr.FloatOr("PC2_2", 1)
		return cd, nil
	}

	rota := hdr.FloatOr("CROTA2", 0) * math.Pi / 180
	sin, cos := math.Sin(rota), math.Cos(rota)
	cd[0][0] = cdelt1 * cos
	cd[0][1] = -cdelt2 * sin
	cd[1][0] = cdelt1 * sin
	cd[1][1] = cdelt2 * cos
	return cd, nil
}

// AxisNames returns the CTYPE labels for tooltip display.
func (t *Transform) AxisNames() (string, string) {
	return t.ctype1, t.ctype2
}

// PixelToSky converts a 0-based pixel position to world coordinates in
// degrees. For TAN systems the longitude is normalized into [0, 360).
func (t *Transform) PixelToSky(px, py float64) (float64, float64) {
	// Intermediate world coordinates relative to the reference pixel
	u := px + 1 - t.crpix1
	v := py + 1 - t.crpix2
	x := t.cd[0][0]*u + t.cd[0][1]*v
	y := t.cd[1][0]*u + t.cd[1][1]*v

	if !t.tan {
		return t.crval1 + x, t.crval2 + y
	}

	// Inverse gnomonic projection about the reference point
	X := x * math.Pi / 180
	Y := y * math.Pi / 180
	d0 := t.crval2 * math.Pi / 180
	denom := math.Cos(d0) - Y*math.Sin(d0)

	dAlpha := math.Atan2(X, denom)
	alpha := t.crval1 + dAlpha*180/math.Pi
	delta := math.Atan(math.Cos(dAlpha)*(math.Sin(d0)+Y*math.Cos(d0))/denom) * 180 / math.Pi

	alpha = math.Mod(alpha, 360)
	if alpha < 0 {
		alpha += 360
	}
	return alpha, delta
}

// FirstTransform scans the file's HDUs in order and returns the first
// parseable transform. The winner is cached by callers for the lifetime of
// the view.
func FirstTransform(f *fits.File) (*Transform, int, error) {
	var firstErr error
	for _, hdu := range f.HDUs() {
		t, err := FromHeader(hdu.Header)
		if err == nil {
			return t, hdu.Index, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.NewWCSError("no extensions in file", errors.MissingWCS, nil)
	}
	return nil, -1, firstErr
}
