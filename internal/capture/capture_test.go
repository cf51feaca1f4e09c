package capture

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sprite-ai/agvis/internal/model"
	"github.com/sprite-ai/agvis/internal/pixel"
)

var pixelWhite = pixel.Color{R: 255, G: 255, B: 255, A: 255}

func TestSelectNoCandidates(t *testing.T) {
	d := DefaultPolicy().Select(nil)
	if d.Mode != model.CaptureFallback {
		t.Errorf("mode = %v, want fallback", d.Mode)
	}
	if !d.FallbackUsed {
		t.Error("fallback_used not set")
	}
	if len(d.Warnings) == 0 {
		t.Error("fallback decision must carry warnings")
	}
	if d.CandidateCount != 0 || d.UsableCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", d.CandidateCount, d.UsableCount)
	}
}

func TestSelectSingleUsableWindow(t *testing.T) {
	d := DefaultPolicy().Select([]Candidate{
		{Index: 1, X: 10, Y: 10, W: 300, H: 300},
	})
	if d.Mode != model.CaptureWindow {
		t.Fatalf("mode = %v, want window", d.Mode)
	}
	if d.Selected == nil || d.Selected.Index != 1 {
		t.Errorf("selected = %+v, want index 1", d.Selected)
	}
	if d.FallbackUsed || len(d.Warnings) != 0 {
		t.Errorf("clean selection carried fallback/warnings: %+v", d)
	}
	if d.SelectionMode != "largest_usable" {
		t.Errorf("selection_mode = %q", d.SelectionMode)
	}
	if !d.Usable {
		t.Error("window selection should report usable")
	}
}

func TestSelectPrefersLargestUsable(t *testing.T) {
	d := DefaultPolicy().Select([]Candidate{
		{Index: 1, W: 100, H: 50},
		{Index: 2, W: 50, H: 50},
		{Index: 3, W: 500, H: 400},
	})
	if d.Mode != model.CaptureWindow {
		t.Fatalf("mode = %v, want window", d.Mode)
	}
	if d.Selected.Index != 3 {
		t.Errorf("selected index = %d, want 3", d.Selected.Index)
	}
	if d.CandidateCount != 3 || d.UsableCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", d.CandidateCount, d.UsableCount)
	}
}

func TestSelectAreaTieBreaksByIndex(t *testing.T) {
	d := DefaultPolicy().Select([]Candidate{
		{Index: 4, W: 400, H: 300},
		{Index: 2, W: 300, H: 400},
	})
	if d.Selected.Index != 2 {
		t.Errorf("selected index = %d, want lowest index 2", d.Selected.Index)
	}
}

func TestSelectScreenWhenNothingUsable(t *testing.T) {
	d := DefaultPolicy().Select([]Candidate{
		{Index: 1, W: 100, H: 50},
		{Index: 2, W: 219, H: 500}, // width one short of the threshold
	})
	if d.Mode != model.CaptureScreen {
		t.Fatalf("mode = %v, want screen", d.Mode)
	}
	if d.Selected != nil {
		t.Errorf("screen mode should not select a window, got %+v", d.Selected)
	}
	if d.Usable {
		t.Error("screen fallback should not report usable")
	}
	if len(d.Warnings) != 1 || !strings.Contains(d.Warnings[0], "100x50") {
		t.Errorf("warning should name rejected sizes, got %v", d.Warnings)
	}
}

func TestUsableRejectsImplausiblePositions(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name string
		c    Candidate
		want bool
	}{
		{"normal", Candidate{X: 0, Y: 0, W: 300, H: 300}, true},
		{"negative but plausible", Candidate{X: -100, Y: -50, W: 300, H: 300}, true},
		{"far off-screen x", Candidate{X: -9000, Y: 0, W: 300, H: 300}, false},
		{"absurd y", Candidate{X: 0, Y: 60000, W: 300, H: 300}, false},
		{"area too small", Candidate{X: 0, Y: 0, W: 220, H: 140}, false},
		{"exactly at area threshold", Candidate{X: 0, Y: 0, W: 250, H: 160}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Usable(tt.c); got != tt.want {
				t.Errorf("Usable(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestParseCandidates(t *testing.T) {
	raw := strings.Join([]string{
		"1\t0\t0\t800\t600\tEditor",
		"",
		"bogus line",
		"0\t0\t0\t800\t600\tzero index",
		"2\t10.6\t20.4\t300\t200",
		"3\t0\t0\t-5\t100\tnegative width",
		"4\t0\t0\t100\t0\tzero height",
	}, "\n")
	got := ParseCandidates(raw)
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].Title != "Editor" || got[0].W != 800 {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[1].X != 11 || got[1].Y != 20 {
		t.Errorf("fractional coords rounded to (%d,%d), want (11,20)", got[1].X, got[1].Y)
	}
	if got[1].Title != "" {
		t.Errorf("missing title should stay empty, got %q", got[1].Title)
	}
}

func TestPlaceholder(t *testing.T) {
	b := Placeholder()
	if b.W != PlaceholderWidth || b.H != PlaceholderHeight {
		t.Fatalf("size = %dx%d, want %dx%d", b.W, b.H, PlaceholderWidth, PlaceholderHeight)
	}
	if b.At(0, 0) != (pixelWhite) || b.At(b.W-1, b.H-1) != pixelWhite {
		t.Error("placeholder is not uniform white")
	}
}

func TestSourceForDecision(t *testing.T) {
	sel := Candidate{Index: 1, X: 5, Y: 6, W: 300, H: 300}
	window := Decision{Mode: model.CaptureWindow, Selected: &sel}
	if _, ok := SourceFor(window, 0).(RegionSource); !ok {
		t.Error("window decision should map to a region source")
	}
	screen := Decision{Mode: model.CaptureScreen}
	if _, ok := SourceFor(screen, 0).(DisplaySource); !ok {
		t.Error("screen decision should map to a display source")
	}
	fallback := Decision{Mode: model.CaptureFallback, FallbackUsed: true}
	if _, ok := SourceFor(fallback, 0).(PlaceholderSource); !ok {
		t.Error("fallback decision should map to the placeholder source")
	}
}

func TestDecisionJSONFieldNames(t *testing.T) {
	d := DefaultPolicy().Select([]Candidate{
		{Index: 1, X: 10, Y: 10, W: 300, H: 300, Title: "editor"},
	})
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{
		`"mode":"window"`, `"selection_mode":"largest_usable"`,
		`"candidate_count":1`, `"usable_count":1`, `"usable":true`,
		`"fallback_used":false`,
		`"min_width":220`, `"min_height":140`, `"min_area":40000`,
	} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("decision JSON missing %s:\n%s", field, raw)
		}
	}
	var back Decision
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Mode != model.CaptureWindow || back.Selected == nil || back.Selected.Index != 1 {
		t.Errorf("round-trip lost selection: %+v", back)
	}
}
