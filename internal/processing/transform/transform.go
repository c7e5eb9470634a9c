// Package transform applies the selected per-frame transform to a BGR frame.
package transform

import (
	"fmt"

	"histoview/internal/models"
	"histoview/internal/opencv/conversion"
	"histoview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const maxIntensity = 255

// Apply derives the grayscale byproduct of frame and the processed color
// image for p.Mode. frame is never modified; both results are new Mats owned
// by the caller. Unrecognised modes pass the frame through unchanged.
func Apply(frame *safe.Mat, p models.Params) (processed, gray *safe.Mat, err error) {
	if err := safe.ValidateMatForOperation(frame, "transform"); err != nil {
		return nil, nil, err
	}

	gray, err = conversion.ToGray(frame)
	if err != nil {
		return nil, nil, fmt.Errorf("grayscale derivation failed: %w", err)
	}

	switch p.Mode {
	case models.ModeGrayscale:
		processed, err = conversion.GrayToBGR(gray)
	case models.ModeBinary:
		processed, err = expand(gray, func(src gocv.Mat, dst *gocv.Mat) {
			binary(src, dst, p.BinaryThresh)
		})
	case models.ModeCanny:
		processed, err = expand(gray, func(src gocv.Mat, dst *gocv.Mat) {
			gocv.Canny(src, dst, float32(p.CannyLow), float32(p.CannyHigh))
		})
	default:
		processed, err = frame.Clone()
	}

	if err != nil {
		gray.Close()
		return nil, nil, fmt.Errorf("%s transform failed: %w", p.Mode, err)
	}

	return processed, gray, nil
}

// binary maps v >= thresh to 255 and everything else to 0. OpenCV compares
// with a strict greater-than, hence the half step.
func binary(src gocv.Mat, dst *gocv.Mat, thresh int) {
	gocv.Threshold(src, dst, float32(thresh)-0.5, maxIntensity, gocv.ThresholdBinary)
}

// expand runs a single-channel operation on gray and returns its result as
// three identical channels.
func expand(gray *safe.Mat, op func(src gocv.Mat, dst *gocv.Mat)) (*safe.Mat, error) {
	dst := gocv.NewMat()
	op(gray.GetMat(), &dst)

	single := safe.Wrap(dst)
	defer single.Close()

	return conversion.GrayToBGR(single)
}
