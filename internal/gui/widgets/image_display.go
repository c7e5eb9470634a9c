package widgets

import (
	"image"

	"histoview/internal/processing/histogram"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 640
	ImageAreaHeight = 480

	ProcessedCaption = "Processed Output"
	HistogramCaption = "Gray Histogram"
)

// ImageDisplay holds the two persistent slots that each frame overwrites.
type ImageDisplay struct {
	container      fyne.CanvasObject
	processedImage *canvas.Image
	histogramImage *canvas.Image
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.processedImage = canvas.NewImageFromImage(nil)
	id.processedImage.FillMode = canvas.ImageFillContain
	id.processedImage.ScaleMode = canvas.ImageScaleSmooth
	id.processedImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	// pixel scaling keeps the one-pixel bars crisp
	id.histogramImage = canvas.NewImageFromImage(nil)
	id.histogramImage.FillMode = canvas.ImageFillContain
	id.histogramImage.ScaleMode = canvas.ImageScalePixels
	id.histogramImage.SetMinSize(fyne.NewSize(histogram.Width*2, histogram.Height*2))
}

func (id *ImageDisplay) setupLayout() {
	processedContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**"+ProcessedCaption+"**"),
		nil, nil, nil,
		id.processedImage,
	)

	histogramContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**"+HistogramCaption+"**"),
		nil, nil, nil,
		id.histogramImage,
	)

	split := container.NewHSplit(processedContainer, histogramContainer)
	split.SetOffset(0.65)
	id.container = split
}

func (id *ImageDisplay) GetContainer() fyne.CanvasObject {
	return id.container
}

// SetImages must run on the fyne goroutine.
func (id *ImageDisplay) SetImages(processed, hist image.Image) {
	id.processedImage.Image = processed
	id.processedImage.Refresh()
	id.histogramImage.Image = hist
	id.histogramImage.Refresh()
}

func (id *ImageDisplay) Clear() {
	id.SetImages(nil, nil)
}

func (id *ImageDisplay) ProcessedImage() image.Image {
	return id.processedImage.Image
}

func (id *ImageDisplay) HistogramImage() image.Image {
	return id.histogramImage.Image
}
