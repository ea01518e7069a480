package gui

import (
	"fmt"

	"fitsview/internal/log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// imageWindow is the image viewer: a raster canvas with zoom/rotate/cycle
// controls, a header info panel, and a sky coordinate readout under the
// pointer.
type imageWindow struct {
	app    *App
	win    fyne.Window
	canvas *hoverCanvas
	info   *widget.Label
	coord  *widget.Label

	debounce *Debouncer
}

func newImageWindow(a *App) *imageWindow {
	w := &imageWindow{
		app:      a,
		win:      a.fyneApp.NewWindow("FITS Image Viewer"),
		info:     widget.NewLabel(""),
		coord:    widget.NewLabel(""),
		debounce: NewDebouncer(coordDebounce),
	}
	w.info.TextStyle.Monospace = true
	w.canvas = newHoverCanvas(w.onHover, w.onScroll)

	controls := container.NewHBox(
		widget.NewButton("Previous", func() { a.images.Prev(); w.refresh() }),
		widget.NewButton("Next", func() { a.images.Next(); w.refresh() }),
		widget.NewSeparator(),
		widget.NewButton("Zoom In", func() { a.images.ZoomIn(); w.refresh() }),
		widget.NewButton("Zoom Out", func() { a.images.ZoomOut(); w.refresh() }),
		widget.NewButton("Rotate Left", func() { a.images.RotateLeft(); w.refresh() }),
		widget.NewButton("Rotate Right", func() { a.images.RotateRight(); w.refresh() }),
	)

	content := container.NewBorder(
		controls,
		w.coord,
		nil,
		container.NewVScroll(w.info),
		container.NewScroll(w.canvas),
	)
	w.win.SetContent(content)
	w.win.Resize(fyne.NewSize(1100, 700))
	w.win.SetOnClosed(func() {
		w.debounce.Stop()
		a.imageWin = nil
	})

	w.refresh()
	return w
}

// refresh re-renders the current image and the info panel.
func (w *imageWindow) refresh() {
	img, err := w.app.images.Render()
	if err != nil {
		log.Error("render image", err)
		dialog.ShowError(err, w.win)
		return
	}
	w.canvas.SetImage(img)
	w.info.SetText(w.app.images.InfoText())
	w.win.SetTitle(fmt.Sprintf("FITS Image Viewer (%d/%d)",
		w.app.images.Index()+1, w.app.images.Count()))
}

// onHover updates the coordinate readout, debounced so dragging the pointer
// across the canvas doesn't recompute on every event.
func (w *imageWindow) onHover(x, y int) {
	w.debounce.Trigger(func() {
		px, py, ok := w.app.images.Unproject(x, y)
		text := ""
		if ok {
			text = w.app.images.CoordText(px, py)
		}
		w.coord.SetText(text)
	})
}

// onScroll cycles through images with the mouse wheel.
func (w *imageWindow) onScroll(up bool) {
	if up {
		w.app.images.Prev()
	} else {
		w.app.images.Next()
	}
	w.refresh()
}
