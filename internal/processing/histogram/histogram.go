package histogram

import (
	"fmt"
	"image"
	"image/color"

	"histoview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	Bins   = 256
	Width  = Bins
	Height = 120
)

var barColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}

// Compute returns the intensity counts of gray min-max normalised into
// [0, Height]. When every bucket holds the same count, including an empty
// image, all buckets are zero.
func Compute(gray *safe.Mat) ([]float32, error) {
	if gray == nil || !gray.IsValid() {
		return nil, fmt.Errorf("histogram source is nil or closed")
	}

	bins := make([]float32, Bins)
	if gray.Empty() {
		return bins, nil
	}
	if err := safe.ValidateChannels(gray, 1, "histogram"); err != nil {
		return nil, err
	}

	hist := gocv.NewMat()
	defer hist.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.CalcHist([]gocv.Mat{gray.GetMat()}, []int{0}, mask, &hist, []int{Bins}, []float64{0, Bins}, false)
	if hist.Rows() != Bins {
		return nil, fmt.Errorf("unexpected histogram size %d", hist.Rows())
	}

	// normalised in place; hist never leaves this call
	gocv.Normalize(hist, &hist, 0, Height, gocv.NormMinMax)

	for i := range bins {
		bins[i] = hist.GetFloatAt(i, 0)
	}
	return bins, nil
}

// Draw renders normalised bins as one vertical line per bucket, white on a
// black Width x Height BGR canvas.
func Draw(bins []float32) (*safe.Mat, error) {
	if len(bins) != Bins {
		return nil, fmt.Errorf("expected %d bins, got %d", Bins, len(bins))
	}

	canvas, err := safe.NewMatFromScalar(Height, Width, gocv.MatTypeCV8UC3, gocv.NewScalar(0, 0, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("canvas creation failed: %w", err)
	}

	dst := canvas.GetMat()
	for x, v := range bins {
		gocv.Line(&dst, image.Pt(x, Height), image.Pt(x, Height-int(v)), barColor, 1)
	}

	return canvas, nil
}

// Render computes and draws the histogram of gray. The result is always
// Width x Height regardless of the input size.
func Render(gray *safe.Mat) (*safe.Mat, error) {
	bins, err := Compute(gray)
	if err != nil {
		return nil, err
	}
	return Draw(bins)
}
