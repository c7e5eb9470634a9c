// Package display drives frames from a source through the processing
// pipeline onto a presentation surface.
package display

import (
	"image"

	"histoview/internal/models"
)

const (
	MsgCameraRead = "Cannot read frame from webcam."
	MsgCameraOpen = "Cannot open webcam."
	MsgNeedInput  = "Please provide a valid image URL or upload an image."
)

// Surface shows results and messages. Implementations must be safe to call
// from the loop goroutine.
type Surface interface {
	// ShowFrame overwrites the two display slots in place.
	ShowFrame(processed, histogram image.Image)
	ShowWarning(message string)
	ShowInfo(message string)
	ShowError(err error)
}

// ParamsProvider hands out the current parameters as a value copy.
type ParamsProvider interface {
	Snapshot() models.Params
}

// StaticParams is a fixed ParamsProvider.
type StaticParams models.Params

func (p StaticParams) Snapshot() models.Params {
	return models.Params(p)
}
