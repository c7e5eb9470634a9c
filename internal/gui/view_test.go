package gui

import (
	"image"
	"sync"
	"testing"

	"histoview/internal/gui/widgets"
	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/services"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandlers struct {
	mu      sync.Mutex
	sources []models.SourceKind
	runs    []bool
	params  []models.Params
	inputs  int
}

func (h *recordingHandlers) SourceChanged(kind models.SourceKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sources = append(h.sources, kind)
}

func (h *recordingHandlers) RunChanged(running bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, running)
}

func (h *recordingHandlers) ParamsChanged(p models.Params) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.params = append(h.params, p)
}

func (h *recordingHandlers) InputChanged() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inputs++
}

func newTestView(t *testing.T, source models.SourceKind) (*View, *recordingHandlers) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	w := a.NewWindow(WindowTitle)
	v := NewView(w, source, models.DefaultParams(), services.NewUploadService(0, logger.Nop()), logger.Nop())
	h := &recordingHandlers{}
	v.Bind(h)
	return v, h
}

func TestParameterDefaultsAndEdits(t *testing.T) {
	v, h := newTestView(t, models.SourceCamera)

	assert.Equal(t, models.DefaultParams(), v.Snapshot())

	v.parameterPanel.ModeSelect().SetSelected("Canny")
	v.parameterPanel.ThresholdSlider().SetValue(42)
	low, high := v.parameterPanel.CannySliders()
	low.SetValue(300)
	high.SetValue(50)

	p := v.Snapshot()
	assert.Equal(t, models.ModeCanny, p.Mode)
	assert.Equal(t, 42, p.BinaryThresh)
	assert.Equal(t, 300, p.CannyLow)
	assert.Equal(t, 50, p.CannyHigh)

	require.Len(t, h.params, 4)
	assert.Equal(t, p, h.params[3])
}

func TestSourceSwitchTogglesControls(t *testing.T) {
	v, h := newTestView(t, models.SourceCamera)

	assert.True(t, v.sourcePanel.CameraControlsVisible())
	assert.False(t, v.sourcePanel.StaticControlsVisible())

	v.sourcePanel.SourceSelect().SetSelected(models.SourceStatic.String())

	assert.False(t, v.sourcePanel.CameraControlsVisible())
	assert.True(t, v.sourcePanel.StaticControlsVisible())
	assert.Equal(t, []models.SourceKind{models.SourceStatic}, h.sources)
	assert.Equal(t, models.SourceStatic, v.Selection().Kind)
}

func TestRunCheckAndSilentReset(t *testing.T) {
	v, h := newTestView(t, models.SourceCamera)

	test.Tap(v.sourcePanel.RunCheck())
	assert.Equal(t, []bool{true}, h.runs)

	v.sourcePanel.SetRunning(false)
	assert.False(t, v.sourcePanel.RunCheck().Checked)
	assert.Equal(t, []bool{true}, h.runs)
}

func TestURLAndUploadSelection(t *testing.T) {
	v, h := newTestView(t, models.SourceStatic)

	entry := v.sourcePanel.URLEntry()
	test.Type(entry, " http://example.com/a.png ")
	assert.Equal(t, "http://example.com/a.png", v.Selection().URL)
	assert.Equal(t, 0, h.inputs)

	entry.OnSubmitted(entry.Text)
	assert.Equal(t, 1, h.inputs)

	v.sourcePanel.SetUpload("a.png", []byte{1, 2, 3})
	sel := v.Selection()
	assert.True(t, sel.HasUpload())
	assert.Equal(t, "a.png", sel.UploadName)
	assert.Equal(t, 2, h.inputs)
}

func TestShowFrameFillsBothSlots(t *testing.T) {
	v, _ := newTestView(t, models.SourceCamera)

	processed := image.NewRGBA(image.Rect(0, 0, 4, 3))
	hist := image.NewRGBA(image.Rect(0, 0, 256, 120))

	v.ShowFrame(processed, hist)
	assert.Equal(t, processed, v.imageDisplay.ProcessedImage())
	assert.Equal(t, hist, v.imageDisplay.HistogramImage())

	v.ShowInfo("hello")
	assert.Equal(t, "hello", v.statusLabel.Text)

	v.ShowWarning("careful")
	assert.Equal(t, "Warning: careful", v.statusLabel.Text)
}

func TestCaptions(t *testing.T) {
	assert.Equal(t, "Processed Output", widgets.ProcessedCaption)
	assert.Equal(t, "Gray Histogram", widgets.HistogramCaption)
}
