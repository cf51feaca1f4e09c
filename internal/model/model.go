// Package model defines the core data types shared across agvis.
package model

import "strings"

// CaptureMode describes how an observation frame was (or must be) obtained.
type CaptureMode int

const (
	// CaptureWindow means a specific window candidate was usable.
	CaptureWindow CaptureMode = iota
	// CaptureScreen means no candidate met the usability threshold and
	// whole-display bounds were used instead.
	CaptureScreen
	// CaptureFallback means no real bounds were obtainable; the caller
	// must synthesize a placeholder image.
	CaptureFallback
)

func (m CaptureMode) String() string {
	switch m {
	case CaptureWindow:
		return "window"
	case CaptureScreen:
		return "screen"
	case CaptureFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// MarshalText makes the mode render as its wire name in JSON records.
func (m CaptureMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a wire-name capture mode; unknown names map to fallback.
func (m *CaptureMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "window":
		*m = CaptureWindow
	case "screen":
		*m = CaptureScreen
	default:
		*m = CaptureFallback
	}
	return nil
}

// Shape categorizes an annotation.
type Shape int

const (
	ShapeRect Shape = iota
	ShapeArrow
	ShapeText
	ShapeSpotlight
)

func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeArrow:
		return "arrow"
	case ShapeText:
		return "text"
	case ShapeSpotlight:
		return "spotlight"
	default:
		return "unknown"
	}
}

// ParseShape maps a spec "type" string to a Shape. The aliases "focus" and
// "dim" are accepted for spotlight. Unknown names return ok=false; callers
// treat that as a spec error rather than silently skipping the annotation.
func ParseShape(name string) (Shape, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rect":
		return ShapeRect, true
	case "arrow":
		return ShapeArrow, true
	case "text":
		return ShapeText, true
	case "spotlight", "focus", "dim":
		return ShapeSpotlight, true
	default:
		return 0, false
	}
}
