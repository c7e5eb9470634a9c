package widgets

import (
	"strings"
	"sync"

	"histoview/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const RunCheckLabel = "Run Webcam"

// SourcePanel picks the input origin and its inputs. Camera controls and
// static-image controls are shown only for their own origin.
type SourcePanel struct {
	container *fyne.Container

	sourceSelect *widget.Select
	runCheck     *widget.Check
	urlEntry     *widget.Entry
	uploadButton *widget.Button
	uploadLabel  *widget.Label
	cameraGroup  *fyne.Container
	staticGroup  *fyne.Container

	mu         sync.RWMutex
	selection  models.Selection
	suppressed bool

	sourceHandler func(models.SourceKind)
	runHandler    func(bool)
	inputHandler  func()
	uploadHandler func()
}

func NewSourcePanel(initial models.SourceKind) *SourcePanel {
	sp := &SourcePanel{selection: models.Selection{Kind: initial}}
	sp.createComponents()
	sp.buildLayout()
	sp.applyVisibility(initial)
	return sp
}

func (sp *SourcePanel) createComponents() {
	sp.sourceSelect = widget.NewSelect(models.SourceNames(), nil)
	sp.sourceSelect.SetSelected(sp.selection.Kind.String())
	sp.sourceSelect.OnChanged = sp.onSourceChanged

	sp.runCheck = widget.NewCheck(RunCheckLabel, sp.onRunChanged)

	sp.urlEntry = widget.NewEntry()
	sp.urlEntry.SetPlaceHolder("Image URL")
	sp.urlEntry.OnChanged = sp.onURLEdited
	sp.urlEntry.OnSubmitted = sp.onURLChanged

	sp.uploadButton = widget.NewButton("Upload image...", sp.onUploadClicked)
	sp.uploadButton.Importance = widget.HighImportance
	sp.uploadLabel = widget.NewLabel("No file selected")
}

func (sp *SourcePanel) buildLayout() {
	sp.cameraGroup = container.NewVBox(sp.runCheck)
	sp.staticGroup = container.NewVBox(
		widget.NewLabel("Image URL"),
		sp.urlEntry,
		container.NewHBox(sp.uploadButton, sp.uploadLabel),
	)

	sp.container = container.NewVBox(
		widget.NewLabel("Source"),
		sp.sourceSelect,
		sp.cameraGroup,
		sp.staticGroup,
	)
}

func (sp *SourcePanel) applyVisibility(kind models.SourceKind) {
	if kind == models.SourceCamera {
		sp.cameraGroup.Show()
		sp.staticGroup.Hide()
		return
	}
	sp.cameraGroup.Hide()
	sp.staticGroup.Show()
}

func (sp *SourcePanel) onSourceChanged(name string) {
	kind := models.ParseSourceKind(name)

	sp.mu.Lock()
	changed := sp.selection.Kind != kind
	sp.selection.Kind = kind
	handler := sp.sourceHandler
	sp.mu.Unlock()

	sp.applyVisibility(kind)
	if kind != models.SourceCamera {
		sp.SetRunning(false)
	}

	if changed && handler != nil {
		handler(kind)
	}
}

func (sp *SourcePanel) onRunChanged(checked bool) {
	sp.mu.RLock()
	handler := sp.runHandler
	suppressed := sp.suppressed
	sp.mu.RUnlock()

	if !suppressed && handler != nil {
		handler(checked)
	}
}

// onURLEdited records typing without triggering a run; submitting does.
func (sp *SourcePanel) onURLEdited(text string) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.selection.URL = strings.TrimSpace(text)
}

func (sp *SourcePanel) onURLChanged(text string) {
	text = strings.TrimSpace(text)

	sp.mu.Lock()
	sp.selection.URL = text
	handler := sp.inputHandler
	sp.mu.Unlock()

	if handler != nil {
		handler()
	}
}

func (sp *SourcePanel) onUploadClicked() {
	sp.mu.RLock()
	handler := sp.uploadHandler
	sp.mu.RUnlock()

	if handler != nil {
		handler()
	}
}

func (sp *SourcePanel) GetContainer() *fyne.Container {
	return sp.container
}

func (sp *SourcePanel) SetSourceChangeHandler(handler func(models.SourceKind)) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.sourceHandler = handler
}

func (sp *SourcePanel) SetRunChangeHandler(handler func(bool)) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.runHandler = handler
}

// SetInputChangeHandler fires when the URL is submitted or an upload is set.
func (sp *SourcePanel) SetInputChangeHandler(handler func()) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.inputHandler = handler
}

func (sp *SourcePanel) SetUploadHandler(handler func()) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.uploadHandler = handler
}

// SetUpload stores picked file bytes. Must run on the fyne goroutine.
func (sp *SourcePanel) SetUpload(name string, data []byte) {
	sp.mu.Lock()
	sp.selection.Upload = data
	sp.selection.UploadName = name
	handler := sp.inputHandler
	sp.mu.Unlock()

	if name == "" {
		sp.uploadLabel.SetText("No file selected")
	} else {
		sp.uploadLabel.SetText(name)
	}

	if handler != nil {
		handler()
	}
}

// SetRunning updates the run check without notifying the run handler.
// Must run on the fyne goroutine.
func (sp *SourcePanel) SetRunning(running bool) {
	if sp.runCheck.Checked == running {
		return
	}

	sp.mu.Lock()
	sp.suppressed = true
	sp.mu.Unlock()

	sp.runCheck.SetChecked(running)

	sp.mu.Lock()
	sp.suppressed = false
	sp.mu.Unlock()
}

// Selection returns a copy of the current inputs. Safe from any goroutine.
func (sp *SourcePanel) Selection() models.Selection {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.selection
}

func (sp *SourcePanel) SourceSelect() *widget.Select { return sp.sourceSelect }

func (sp *SourcePanel) RunCheck() *widget.Check { return sp.runCheck }

func (sp *SourcePanel) URLEntry() *widget.Entry { return sp.urlEntry }

func (sp *SourcePanel) StaticControlsVisible() bool { return sp.staticGroup.Visible() }

func (sp *SourcePanel) CameraControlsVisible() bool { return sp.cameraGroup.Visible() }
