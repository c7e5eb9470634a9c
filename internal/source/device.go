package source

import (
	"fmt"

	"histoview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Device is an opened capture device. *gocv.VideoCapture satisfies it.
type Device interface {
	Read(m *gocv.Mat) bool
	Close() error
}

// Opener opens a Device on demand.
type Opener func() (Device, error)

// CameraOpener opens the camera at index.
func CameraOpener(index int) Opener {
	return func() (Device, error) {
		capture, err := gocv.OpenVideoCapture(index)
		if err != nil {
			return nil, fmt.Errorf("%w: index %d: %v", ErrDeviceUnavailable, index, err)
		}
		if !capture.IsOpened() {
			capture.Close()
			return nil, fmt.Errorf("%w: index %d not opened", ErrDeviceUnavailable, index)
		}
		return capture, nil
	}
}

// ReadFrame pulls the next frame from dev. A false read or an empty frame is
// ErrCameraRead.
func ReadFrame(dev Device) (*safe.Mat, error) {
	if dev == nil {
		return nil, ErrDeviceUnavailable
	}

	frame := gocv.NewMat()
	if !dev.Read(&frame) || frame.Empty() {
		frame.Close()
		return nil, ErrCameraRead
	}

	return safe.Wrap(frame), nil
}
