// Package gui is the fyne presentation surface.
package gui

import (
	"context"
	"image"

	"histoview/internal/gui/widgets"
	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/services"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const WindowTitle = "Camera / URL Image Processing"

// Handlers receives user intent from the view. Calls arrive on the fyne
// goroutine and must not block.
type Handlers interface {
	SourceChanged(kind models.SourceKind)
	RunChanged(running bool)
	ParamsChanged(p models.Params)
	InputChanged()
}

// View lays out the controls and the two display slots. It satisfies the
// display loop's Surface and ParamsProvider.
type View struct {
	window  fyne.Window
	uploads *services.UploadService
	log     logger.Logger

	sourcePanel    *widgets.SourcePanel
	parameterPanel *widgets.ParameterPanel
	imageDisplay   *widgets.ImageDisplay
	statusLabel    *widget.Label
	mainContainer  *fyne.Container
}

func NewView(window fyne.Window, source models.SourceKind, params models.Params, uploads *services.UploadService, log logger.Logger) *View {
	v := &View{
		window:  window,
		uploads: uploads,
		log:     log,
	}

	v.setupComponents(source, params)
	v.setupLayout()
	return v
}

func (v *View) setupComponents(source models.SourceKind, params models.Params) {
	v.sourcePanel = widgets.NewSourcePanel(source)
	v.parameterPanel = widgets.NewParameterPanel(params)
	v.imageDisplay = widgets.NewImageDisplay()
	v.statusLabel = widget.NewLabel("Ready")
	v.statusLabel.Wrapping = fyne.TextWrapWord

	v.sourcePanel.SetUploadHandler(v.showUploadDialog)
}

func (v *View) setupLayout() {
	sidebar := container.NewVBox(
		v.sourcePanel.GetContainer(),
		widget.NewSeparator(),
		v.parameterPanel.GetContainer(),
	)

	v.mainContainer = container.NewBorder(
		nil,
		v.statusLabel,
		container.NewVScroll(sidebar),
		nil,
		v.imageDisplay.GetContainer(),
	)
}

// Bind routes widget events to h.
func (v *View) Bind(h Handlers) {
	v.sourcePanel.SetSourceChangeHandler(h.SourceChanged)
	v.sourcePanel.SetRunChangeHandler(h.RunChanged)
	v.sourcePanel.SetInputChangeHandler(h.InputChanged)
	v.parameterPanel.SetChangeHandler(h.ParamsChanged)
}

func (v *View) showUploadDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if reader == nil {
			return
		}

		upload, err := v.uploads.LoadURI(context.Background(), reader)
		if err != nil {
			v.log.Error("View", err, nil)
			dialog.ShowError(err, v.window)
			return
		}
		v.sourcePanel.SetUpload(upload.Name, upload.Data)
	}, v.window)

	fd.SetFilter(storage.NewExtensionFileFilter(services.UploadExtensions))
	fd.Show()
}

// ShowFrame overwrites both display slots.
func (v *View) ShowFrame(processed, hist image.Image) {
	fyne.Do(func() {
		v.imageDisplay.SetImages(processed, hist)
	})
}

func (v *View) ShowWarning(message string) {
	fyne.Do(func() {
		v.statusLabel.SetText("Warning: " + message)
	})
}

func (v *View) ShowInfo(message string) {
	fyne.Do(func() {
		v.statusLabel.SetText(message)
	})
}

func (v *View) ShowError(err error) {
	fyne.Do(func() {
		v.statusLabel.SetText("Error: " + err.Error())
		dialog.ShowError(err, v.window)
	})
}

// SetStatus replaces the status line. Safe from any goroutine.
func (v *View) SetStatus(status string) {
	fyne.Do(func() {
		v.statusLabel.SetText(status)
	})
}

// SetRunning reflects the loop state in the run check without re-triggering
// RunChanged. Safe from any goroutine.
func (v *View) SetRunning(running bool) {
	fyne.Do(func() {
		v.sourcePanel.SetRunning(running)
	})
}

// ClearFrame empties both slots. Safe from any goroutine.
func (v *View) ClearFrame() {
	fyne.Do(func() {
		v.imageDisplay.Clear()
	})
}

func (v *View) Snapshot() models.Params {
	return v.parameterPanel.Snapshot()
}

func (v *View) Selection() models.Selection {
	return v.sourcePanel.Selection()
}

func (v *View) Show() {
	v.window.SetContent(v.mainContainer)
	v.window.Show()
}
