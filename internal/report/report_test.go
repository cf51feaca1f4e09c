package report

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
)

func TestNewDiffReport(t *testing.T) {
	before := pixel.NewUniform(50, 40, pixel.Color{R: 255, G: 255, B: 255, A: 255})
	after := before.Clone()
	for y := 10; y < 25; y++ {
		for x := 10; x < 25; x++ {
			after.Set(x, y, pixel.Color{R: 0, G: 0, B: 0, A: 255})
		}
	}
	res, err := detect.Run(before, after, detect.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	r := NewDiffReport("/tmp/base.png", "/tmp/cur.png", res, false)
	if r.Size != (Size{Width: 50, Height: 40}) {
		t.Errorf("size = %+v", r.Size)
	}
	if r.RegionCount != len(r.ChangeRegions) || r.RegionCount != 1 {
		t.Errorf("region count = %d, regions = %d", r.RegionCount, len(r.ChangeRegions))
	}
	if r.PercentChanged <= 0 {
		t.Error("percent_changed should be positive")
	}
	if r.MaskSummary.ChangedPixelCount != 225 || r.MaskSummary.TotalPixelCount != 2000 {
		t.Errorf("mask summary = %+v", r.MaskSummary)
	}
}

func TestWriteAndReadDiffReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.json")
	in := DiffReport{
		Baseline:       "a.png",
		Current:        "b.png",
		PercentChanged: 1.234,
		Size:           Size{Width: 10, Height: 20},
		RegionCount:    0,
	}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out, err := ReadDiffReport(path)
	if err != nil {
		t.Fatalf("ReadDiffReport: %v", err)
	}
	if out.Baseline != in.Baseline || out.PercentChanged != in.PercentChanged || out.Size != in.Size {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestSidecarFor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"shot.png", "shot.json"},
		{"/tmp/a/before-app-1.png", "/tmp/a/before-app-1.json"},
		{"noext", "noext.json"},
	}
	for _, tt := range tests {
		if got := SidecarFor(tt.in); got != tt.want {
			t.Errorf("SidecarFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHighlightJSON(t *testing.T) {
	doc := "{\n  \"percent_changed\": 1.5\n}"
	lines := HighlightJSON(doc)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[1].Plain() != `  "percent_changed": 1.5` {
		t.Errorf("plain text mismatch: %q", lines[1].Plain())
	}
	if len(lines[0].Tokens) == 0 {
		t.Error("expected tokens on first line")
	}
	joined := make([]string, len(lines))
	for i, l := range lines {
		joined[i] = l.Plain()
	}
	if strings.Join(joined, "\n") != doc {
		t.Error("highlighting altered the document text")
	}
}
