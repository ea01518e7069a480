// Package view holds the image browser core: which image HDU is shown, at
// what zoom and rotation, and how its pixels become screen colors and sky
// coordinates. The Fyne front end is a thin shell over this package.
package view

import (
	"fmt"
	"strings"

	"fitsview/internal/fits"
	"fitsview/internal/log"
	"fitsview/internal/wcs"
)

const (
	defaultZoomStep = 1.2
	defaultMinZoom  = 0.1
)

// Browser cycles through the image HDUs of an open file.
type Browser struct {
	file     *fits.File
	images   []*fits.HDU
	idx      int
	zoom     float64
	zoomStep float64
	minZoom  float64
	rotation int // counter-clockwise degrees, one of 0, 90, 180, 270
	colormap string
	baseSize int
	last     frame

	// first parseable sky transform in the file, resolved once at open
	sky    *wcs.Transform
	skyHDU int
}

// NewBrowser enumerates the file's image HDUs and resolves the sky
// transform. A file without images still yields a browser; HasImages
// reports the difference. Unusable zoom settings fall back to the defaults
// so a bad config file cannot freeze the zoom controls.
func NewBrowser(f *fits.File, colormap string, baseSize int, zoomStep, minZoom float64) *Browser {
	b := &Browser{
		file:     f,
		images:   f.Images(),
		zoom:     1.0,
		zoomStep: zoomStep,
		minZoom:  minZoom,
		colormap: colormap,
		baseSize: baseSize,
		skyHDU:   -1,
	}
	if b.baseSize <= 0 {
		b.baseSize = 600
	}
	if b.zoomStep <= 1 {
		b.zoomStep = defaultZoomStep
	}
	if b.minZoom <= 0 {
		b.minZoom = defaultMinZoom
	}

	t, hdu, err := wcs.FirstTransform(f)
	if err != nil {
		log.Debugf("no sky transform: %v", err)
	} else {
		b.sky = t
		b.skyHDU = hdu
	}
	return b
}

// HasImages reports whether the file contains any image HDU with data.
func (b *Browser) HasImages() bool {
	return len(b.images) > 0
}

// Count returns the number of viewable images.
func (b *Browser) Count() int {
	return len(b.images)
}

// Index is the position of the current image within the viewable list.
func (b *Browser) Index() int {
	return b.idx
}

// Current returns the image HDU on display, or nil when the file has none.
func (b *Browser) Current() *fits.HDU {
	if len(b.images) == 0 {
		return nil
	}
	return b.images[b.idx]
}

func (b *Browser) Zoom() float64 { return b.zoom }
func (b *Browser) Rotation() int { return b.rotation }

// Select jumps to image i, wrapping modulo the list length so negative and
// oversized indices land on a real image.
func (b *Browser) Select(i int) {
	if len(b.images) == 0 {
		return
	}
	n := len(b.images)
	b.idx = ((i % n) + n) % n
}

// Next advances to the following image, wrapping at the end.
func (b *Browser) Next() {
	if len(b.images) == 0 {
		return
	}
	b.idx = (b.idx + 1) % len(b.images)
}

// Prev steps back to the previous image, wrapping at the start.
func (b *Browser) Prev() {
	if len(b.images) == 0 {
		return
	}
	b.idx = (b.idx - 1 + len(b.images)) % len(b.images)
}

// ZoomIn scales the view up by one step.
func (b *Browser) ZoomIn() {
	b.zoom *= b.zoomStep
}

// ZoomOut scales the view down by one step, never below the floor.
func (b *Browser) ZoomOut() {
	b.zoom /= b.zoomStep
	if b.zoom < b.minZoom {
		b.zoom = b.minZoom
	}
}

// RotateLeft turns the view 90 degrees counter-clockwise.
func (b *Browser) RotateLeft() {
	b.rotation = (b.rotation + 90) % 360
}

// RotateRight turns the view 90 degrees clockwise.
func (b *Browser) RotateRight() {
	b.rotation = (b.rotation + 270) % 360
}

// CoordText formats the sky position under a data pixel, falling back to the
// raw pixel indices when the file carries no usable transform.
func (b *Browser) CoordText(px, py int) string {
	if b.sky == nil {
		return fmt.Sprintf("x: %d  y: %d", px, py)
	}
	lon, lat := b.sky.PixelToSky(float64(px), float64(py))
	c1, c2 := b.sky.AxisNames()
	return fmt.Sprintf("%s: %.6f  %s: %.6f", c1, lon, c2, lat)
}

// HasSky reports whether a sky transform was found in the file.
func (b *Browser) HasSky() bool {
	return b.sky != nil
}

// headerExcluded lists structural keywords kept out of the info panel.
func headerExcluded(name string) bool {
	switch name {
	case "COMMENT", "HISTORY", "SIMPLE", "BITPIX", "EXTEND", "XTENSION":
		return true
	}
	return strings.HasPrefix(name, "NAXIS")
}

// InfoText builds the header panel for the current image: view state,
// science keywords, and up to five commentary entries of each kind.
func (b *Browser) InfoText() string {
	hdu := b.Current()
	if hdu == nil {
		return "No image data found in this file."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "HDU #%d (%s)\n", hdu.Index, hdu.Kind.Name())
	fmt.Fprintf(&sb, "Shape: %s\n", shapeText(hdu.Shape()))
	fmt.Fprintf(&sb, "Zoom: %.2fx\n", b.zoom)
	fmt.Fprintf(&sb, "Rotation: %d\n\n", b.rotation)

	for _, c := range hdu.Header.Cards() {
		if headerExcluded(c.Name) {
			continue
		}
		fmt.Fprintf(&sb, "%s = %v\n", c.Name, c.Value)
	}

	writeCommentary(&sb, "COMMENT", hdu.Header.Comments())
	writeCommentary(&sb, "HISTORY", hdu.Header.History())
	return sb.String()
}

func writeCommentary(sb *strings.Builder, label string, entries []string) {
	if len(entries) == 0 {
		return
	}
	if len(entries) > 5 {
		entries = entries[:5]
	}
	sb.WriteByte('\n')
	for _, e := range entries {
		fmt.Fprintf(sb, "%s %s\n", label, e)
	}
}

func shapeText(shape []int) string {
	if len(shape) == 0 {
		return "empty"
	}
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, " x ")
}
