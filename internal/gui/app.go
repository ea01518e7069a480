package gui

import (
	"fmt"
	"strconv"

	"fitsview/internal/config"
	"fitsview/internal/fits"
	"fitsview/internal/log"
	"fitsview/internal/table"
	"fitsview/internal/view"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application: the main table window plus an optional image
// viewer window over the same open file.
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config

	file    *fits.File
	browser *table.Browser
	images  *view.Browser

	grid        *canvas.Text // monospace table rendering, sized by font controls
	statusLabel *widget.Label
	fileChanged bool

	imageWin *imageWindow
	watcher  *fileWatcher
}

// NewApp opens the FITS file through the session and builds the application.
func NewApp(cfg *config.Config, session *fits.Session, path string) (*App, error) {
	fyneApp := app.NewWithID("io.github.fitsview")

	a := &App{
		fyneApp: fyneApp,
		cfg:     cfg,
	}
	session.Notify = func(title, message string) {
		// The degrade can happen during the initial open, before the
		// window exists.
		log.Warnf("%s: %s", title, message)
		if a.mainWindow != nil {
			dialog.ShowInformation(title, message, a.mainWindow)
		}
	}

	f, err := session.Open(path)
	if err != nil {
		return nil, err
	}
	a.file = f

	var src table.Source
	if tbl, ok := f.FirstTable(); ok {
		src = tbl
	}
	a.browser = table.NewBrowser(src,
		cfg.Table.PageSize, cfg.Table.ColumnWidth, cfg.Table.FontSize, cfg.Table.MaxColumns)
	a.images = view.NewBrowser(f, cfg.Image.Colormap, cfg.Image.BaseSize,
		cfg.Image.ZoomStep, cfg.Image.MinZoom)

	a.mainWindow = fyneApp.NewWindow("FITS Viewer - " + path)
	a.mainWindow.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))

	w, err := newFileWatcher(path, func() {
		a.fileChanged = true
		a.refreshStatus()
	})
	if err != nil {
		log.Warnf("Could not watch %s for changes: %v", path, err)
	} else {
		a.watcher = w
	}

	return a, nil
}

// Run shows the main window and enters the event loop.
func (a *App) Run() {
	a.setupMainWindow()
	a.mainWindow.Show()
	a.fyneApp.Run()
}

// setupMainWindow lays out the table grid with its controls.
func (a *App) setupMainWindow() {
	a.grid = canvas.NewText("", theme.ForegroundColor())
	a.grid.TextStyle.Monospace = true
	a.statusLabel = widget.NewLabel("")

	controls := container.NewHBox(
		a.buildPagerControls(),
		widget.NewSeparator(),
		a.buildDisplayControls(),
	)

	bottom := container.NewVBox(
		widget.NewSeparator(),
		controls,
		container.NewHBox(
			a.statusLabel,
			widget.NewButton("Show Image Viewer", a.showImageViewer),
			widget.NewButton("Exit", func() {
				a.Close()
				a.fyneApp.Quit()
			}),
		),
	)

	content := container.NewBorder(
		nil, bottom,
		a.buildColumnPicker(), nil,
		container.NewScroll(a.grid),
	)
	a.mainWindow.SetContent(content)
	a.refresh()
}

// buildPagerControls wires the page navigation row.
func (a *App) buildPagerControls() fyne.CanvasObject {
	pageEntry := widget.NewEntry()
	pageEntry.SetPlaceHolder("page")

	jump := func() {
		p, err := strconv.Atoi(pageEntry.Text)
		if err != nil {
			a.showError(fmt.Errorf("invalid page number %q", pageEntry.Text))
			return
		}
		if err := a.browser.SetPage(p - 1); err != nil {
			a.showError(err)
			return
		}
		a.refresh()
	}
	pageEntry.OnSubmitted = func(string) { jump() }

	return container.NewHBox(
		widget.NewButton("Previous", func() {
			a.browser.PrevPage()
			a.refresh()
		}),
		widget.NewButton("Next", func() {
			a.browser.NextPage()
			a.refresh()
		}),
		pageEntry,
		widget.NewButton("Go", jump),
	)
}

// buildDisplayControls wires rows-per-page, column width, and font size.
func (a *App) buildDisplayControls() fyne.CanvasObject {
	rowsEntry := widget.NewEntry()
	rowsEntry.SetText(strconv.Itoa(a.browser.PageSize()))
	rowsEntry.OnSubmitted = func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil {
			a.showError(fmt.Errorf("invalid row count %q", s))
			return
		}
		if err := a.browser.SetPageSize(n); err != nil {
			a.showError(err)
			return
		}
		a.refresh()
	}

	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(a.browser.ColumnWidth()))
	widthEntry.OnSubmitted = func(s string) {
		n, err := strconv.Atoi(s)
		if err != nil {
			a.showError(fmt.Errorf("invalid column width %q", s))
			return
		}
		if err := a.browser.SetColumnWidth(n); err != nil {
			a.showError(err)
			return
		}
		a.refresh()
	}

	return container.NewHBox(
		widget.NewLabel("Rows:"), rowsEntry,
		widget.NewLabel("Width:"), widthEntry,
		widget.NewButton("A-", func() {
			a.browser.SetFontSize(a.browser.FontSize() - 1)
			a.refresh()
		}),
		widget.NewButton("A+", func() {
			a.browser.SetFontSize(a.browser.FontSize() + 1)
			a.refresh()
		}),
	)
}

// buildColumnPicker is the check list of visible columns.
func (a *App) buildColumnPicker() fyne.CanvasObject {
	cols := a.browser.Columns()
	if len(cols) == 0 {
		return nil
	}
	group := widget.NewCheckGroup(cols, func(selected []string) {
		a.browser.SelectColumns(selected)
		a.refresh()
	})
	group.SetSelected(a.browser.Selected())
	return container.NewVScroll(container.NewVBox(
		widget.NewLabel("Columns"),
		group,
	))
}

// refresh re-renders the table page and the status line.
func (a *App) refresh() {
	applyGridText(a.grid, a.browser.Render(), a.browser.FontSize())
	a.refreshStatus()
}

// applyGridText updates the grid content and applies the font size, so the
// A-/A+ controls visibly resize the table text.
func applyGridText(grid *canvas.Text, text string, fontSize int) {
	grid.Text = text
	grid.TextSize = float32(fontSize)
	grid.Refresh()
}

func (a *App) refreshStatus() {
	if a.statusLabel == nil {
		return
	}
	s := a.browser.Status()
	if a.fileChanged {
		s += "  [file changed on disk]"
	}
	a.statusLabel.SetText(s)
}

// showImageViewer opens (or focuses) the image window.
func (a *App) showImageViewer() {
	if !a.images.HasImages() {
		dialog.ShowInformation("No images",
			"This file contains no image data.", a.mainWindow)
		return
	}
	if a.imageWin != nil {
		a.imageWin.win.Show()
		return
	}
	a.imageWin = newImageWindow(a)
	a.imageWin.win.Show()
}

func (a *App) showError(err error) {
	log.Error("table browser", err)
	dialog.ShowError(err, a.mainWindow)
}

// Close releases the watcher and the FITS file.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.file != nil {
		a.file.Close()
	}
}
