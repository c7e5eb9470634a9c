package conversion

import (
	"fmt"

	"histoview/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Properties summarises a Mat for logging.
type Properties struct {
	Rows     int
	Cols     int
	Channels int
	DataType string
	Empty    bool
}

func Describe(mat *safe.Mat) Properties {
	if mat == nil || !mat.IsValid() {
		return Properties{Empty: true}
	}

	return Properties{
		Rows:     mat.Rows(),
		Cols:     mat.Cols(),
		Channels: mat.Channels(),
		DataType: dataTypeName(mat.Type()),
		Empty:    mat.Empty(),
	}
}

// Fields renders p as structured log fields.
func (p Properties) Fields() map[string]interface{} {
	return map[string]interface{}{
		"width":     p.Cols,
		"height":    p.Rows,
		"channels":  p.Channels,
		"data_type": p.DataType,
	}
}

func dataTypeName(matType gocv.MatType) string {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return "8-bit unsigned single channel"
	case gocv.MatTypeCV8UC3:
		return "8-bit unsigned 3-channel"
	case gocv.MatTypeCV8UC4:
		return "8-bit unsigned 4-channel"
	default:
		return fmt.Sprintf("unknown type %d", int(matType))
	}
}
