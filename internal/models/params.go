package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Mode selects the per-frame transform.
type Mode int

const (
	ModeNormal Mode = iota
	ModeGrayscale
	ModeBinary
	ModeCanny
)

// ModeUnknown is returned by ParseMode for names it does not recognise.
// Transforms treat it as pass-through.
const ModeUnknown Mode = -1

var modeNames = [...]string{"Normal", "Grayscale", "Binary", "Canny"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a display name to a Mode.
func ParseMode(name string) Mode {
	for i, n := range modeNames {
		if n == name {
			return Mode(i)
		}
	}
	return ModeUnknown
}

// ModeNames lists the selectable modes in display order.
func ModeNames() []string {
	names := make([]string, len(modeNames))
	copy(names, modeNames[:])
	return names
}

const (
	BinaryThreshMax = 255
	CannyThreshMax  = 500

	DefaultBinaryThresh = 128
	DefaultCannyLow     = 100
	DefaultCannyHigh    = 200
)

// Params is the immutable per-frame parameter snapshot. CannyLow may exceed
// CannyHigh; the edge detector orders them itself.
type Params struct {
	Mode         Mode
	BinaryThresh int `validate:"gte=0,lte=255"`
	CannyLow     int `validate:"gte=0,lte=500"`
	CannyHigh    int `validate:"gte=0,lte=500"`
}

var validate = validator.New()

// DefaultParams returns the slider defaults.
func DefaultParams() Params {
	return Params{
		Mode:         ModeNormal,
		BinaryThresh: DefaultBinaryThresh,
		CannyLow:     DefaultCannyLow,
		CannyHigh:    DefaultCannyHigh,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// Clamp returns a copy with every numeric field forced into range.
func (p Params) Clamp() Params {
	p.BinaryThresh = clamp(p.BinaryThresh, 0, BinaryThreshMax)
	p.CannyLow = clamp(p.CannyLow, 0, CannyThreshMax)
	p.CannyHigh = clamp(p.CannyHigh, 0, CannyThreshMax)
	return p
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
