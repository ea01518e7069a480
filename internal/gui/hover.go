package gui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// hoverCanvas displays the rendered image and reports pointer movement and
// wheel scrolls back to the image window.
type hoverCanvas struct {
	widget.BaseWidget
	raster  *canvas.Image
	onHover func(x, y int)
	onWheel func(up bool)
}

var _ desktop.Hoverable = (*hoverCanvas)(nil)
var _ fyne.Scrollable = (*hoverCanvas)(nil)

func newHoverCanvas(onHover func(x, y int), onWheel func(up bool)) *hoverCanvas {
	c := &hoverCanvas{
		raster:  canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1))),
		onHover: onHover,
		onWheel: onWheel,
	}
	c.raster.FillMode = canvas.ImageFillOriginal
	c.raster.ScaleMode = canvas.ImageScalePixels
	c.ExtendBaseWidget(c)
	return c
}

// SetImage swaps the displayed raster and resizes the widget to match.
func (c *hoverCanvas) SetImage(img image.Image) {
	c.raster.Image = img
	b := img.Bounds()
	c.raster.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	c.raster.Refresh()
	c.Refresh()
}

func (c *hoverCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *hoverCanvas) MouseIn(*desktop.MouseEvent) {}

func (c *hoverCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if c.onHover != nil {
		c.onHover(int(ev.Position.X), int(ev.Position.Y))
	}
}

func (c *hoverCanvas) MouseOut() {}

func (c *hoverCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if c.onWheel != nil {
		c.onWheel(ev.Scrolled.DY > 0)
	}
}
