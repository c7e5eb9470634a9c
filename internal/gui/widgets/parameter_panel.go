package widgets

import (
	"strconv"
	"sync"

	"histoview/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ParameterPanel edits the transform parameters. Snapshot may be called from
// any goroutine.
type ParameterPanel struct {
	container *fyne.Container

	modeSelect      *widget.Select
	threshSlider    *widget.Slider
	threshLabel     *widget.Label
	cannyLowSlider  *widget.Slider
	cannyLowLabel   *widget.Label
	cannyHighSlider *widget.Slider
	cannyHighLabel  *widget.Label

	mu       sync.RWMutex
	params   models.Params
	onChange func(models.Params)
}

func NewParameterPanel(initial models.Params) *ParameterPanel {
	pp := &ParameterPanel{params: initial.Clamp()}
	pp.createComponents()
	pp.buildLayout()
	return pp
}

func (pp *ParameterPanel) createComponents() {
	p := pp.params

	pp.modeSelect = widget.NewSelect(models.ModeNames(), nil)
	pp.modeSelect.SetSelected(p.Mode.String())
	pp.modeSelect.OnChanged = func(name string) {
		pp.update(func(params *models.Params) { params.Mode = models.ParseMode(name) })
	}

	pp.threshLabel = widget.NewLabel(thresholdText("Binary threshold", p.BinaryThresh))
	pp.threshSlider = newIntSlider(models.BinaryThreshMax, p.BinaryThresh)
	pp.threshSlider.OnChanged = func(value float64) {
		v := int(value)
		pp.threshLabel.SetText(thresholdText("Binary threshold", v))
		pp.update(func(params *models.Params) { params.BinaryThresh = v })
	}

	pp.cannyLowLabel = widget.NewLabel(thresholdText("Canny T1", p.CannyLow))
	pp.cannyLowSlider = newIntSlider(models.CannyThreshMax, p.CannyLow)
	pp.cannyLowSlider.OnChanged = func(value float64) {
		v := int(value)
		pp.cannyLowLabel.SetText(thresholdText("Canny T1", v))
		pp.update(func(params *models.Params) { params.CannyLow = v })
	}

	pp.cannyHighLabel = widget.NewLabel(thresholdText("Canny T2", p.CannyHigh))
	pp.cannyHighSlider = newIntSlider(models.CannyThreshMax, p.CannyHigh)
	pp.cannyHighSlider.OnChanged = func(value float64) {
		v := int(value)
		pp.cannyHighLabel.SetText(thresholdText("Canny T2", v))
		pp.update(func(params *models.Params) { params.CannyHigh = v })
	}
}

func (pp *ParameterPanel) buildLayout() {
	pp.container = container.NewVBox(
		widget.NewLabel("Processing Mode"),
		pp.modeSelect,
		pp.threshLabel, pp.threshSlider,
		pp.cannyLowLabel, pp.cannyLowSlider,
		pp.cannyHighLabel, pp.cannyHighSlider,
	)
}

func newIntSlider(limit, value int) *widget.Slider {
	s := widget.NewSlider(0, float64(limit))
	s.Step = 1
	s.Value = float64(value)
	return s
}

func thresholdText(name string, v int) string {
	return name + ": " + strconv.Itoa(v)
}

func (pp *ParameterPanel) update(apply func(*models.Params)) {
	pp.mu.Lock()
	before := pp.params
	apply(&pp.params)
	pp.params = pp.params.Clamp()
	after := pp.params
	handler := pp.onChange
	pp.mu.Unlock()

	if handler != nil && after != before {
		handler(after)
	}
}

func (pp *ParameterPanel) GetContainer() *fyne.Container {
	return pp.container
}

// SetChangeHandler is called with the new parameters after every edit.
func (pp *ParameterPanel) SetChangeHandler(handler func(models.Params)) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	pp.onChange = handler
}

func (pp *ParameterPanel) Snapshot() models.Params {
	pp.mu.RLock()
	defer pp.mu.RUnlock()
	return pp.params
}

// ModeSelect and the sliders are exposed for widget tests.
func (pp *ParameterPanel) ModeSelect() *widget.Select { return pp.modeSelect }

func (pp *ParameterPanel) ThresholdSlider() *widget.Slider { return pp.threshSlider }

func (pp *ParameterPanel) CannySliders() (low, high *widget.Slider) {
	return pp.cannyLowSlider, pp.cannyHighSlider
}
