package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput means no usable static image was supplied. Every URL fetch
	// failure also matches it through errors.Is.
	ErrNoInput = errors.New("no valid image input")

	ErrCameraRead        = errors.New("cannot read frame from camera")
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	ErrMalformedUpload   = errors.New("uploaded image could not be decoded")
	ErrUndecodable       = errors.New("data is not a decodable image")
)

// FaultKind classifies why a URL acquisition failed.
type FaultKind int

const (
	FaultBadURL FaultKind = iota
	FaultUnreachable
	FaultBadStatus
	FaultMalformedBody
)

func (k FaultKind) String() string {
	switch k {
	case FaultBadURL:
		return "bad_url"
	case FaultUnreachable:
		return "unreachable"
	case FaultBadStatus:
		return "bad_status"
	case FaultMalformedBody:
		return "malformed_body"
	default:
		return fmt.Sprintf("fault(%d)", int(k))
	}
}

// FetchError carries the fault kind of a failed URL acquisition. Callers
// outside this package only need errors.Is(err, ErrNoInput).
type FetchError struct {
	Kind   FaultKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FaultBadStatus {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrNoInput
}

// Fault extracts the fault kind from err, if it is a FetchError.
func Fault(err error) (FaultKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}
