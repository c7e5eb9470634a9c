package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"histoview/internal/opencv/conversion"
	"histoview/internal/opencv/safe"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode turns encoded image bytes into a 3-channel BGR frame. OpenCV is
// tried first; formats its build lacks (GIF, sometimes WebP/TIFF) go through
// the Go decoders.
func Decode(data []byte) (*safe.Mat, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrUndecodable)
	}

	if mat, err := gocv.IMDecode(data, gocv.IMReadColor); err == nil {
		if !mat.Empty() {
			return safe.Wrap(mat), nil
		}
		mat.Close()
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	frame, err := conversion.ImageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s conversion: %v", ErrUndecodable, format, err)
	}
	return frame, nil
}
