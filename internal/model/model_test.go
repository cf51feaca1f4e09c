package model

import (
	"testing"
)

func TestCaptureModeString(t *testing.T) {
	tests := []struct {
		mode CaptureMode
		want string
	}{
		{CaptureWindow, "window"},
		{CaptureScreen, "screen"},
		{CaptureFallback, "fallback"},
		{CaptureMode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("CaptureMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		name string
		want Shape
		ok   bool
	}{
		{"rect", ShapeRect, true},
		{"RECT", ShapeRect, true},
		{"arrow", ShapeArrow, true},
		{"text", ShapeText, true},
		{"spotlight", ShapeSpotlight, true},
		{"focus", ShapeSpotlight, true},
		{"dim", ShapeSpotlight, true},
		{"  rect  ", ShapeRect, true},
		{"blob", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseShape(tt.name)
		if ok != tt.ok {
			t.Errorf("ParseShape(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseShape(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
