package models

// SourceKind is the user-selected frame origin.
type SourceKind int

const (
	SourceCamera SourceKind = iota
	SourceStatic
)

const (
	sourceCameraName = "Webcam"
	sourceStaticName = "URL/Image File"
)

func (k SourceKind) String() string {
	if k == SourceCamera {
		return sourceCameraName
	}
	return sourceStaticName
}

// ParseSourceKind maps a display name to a SourceKind. Anything that is not
// the camera name selects the static origin.
func ParseSourceKind(name string) SourceKind {
	if name == sourceCameraName {
		return SourceCamera
	}
	return SourceStatic
}

// SourceNames lists the selectable origins in display order.
func SourceNames() []string {
	return []string{sourceCameraName, sourceStaticName}
}

// Selection describes where the next static frame comes from. Upload takes
// priority over URL when both are set.
type Selection struct {
	Kind       SourceKind
	Upload     []byte
	UploadName string
	URL        string
}

func (s Selection) HasUpload() bool {
	return len(s.Upload) > 0
}

func (s Selection) HasURL() bool {
	return s.URL != ""
}
