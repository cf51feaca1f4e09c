package raster

import (
	"testing"

	"github.com/sprite-ai/agvis/internal/pixel"
)

var (
	red   = pixel.Color{R: 255, G: 0, B: 0, A: 255}
	white = pixel.Color{R: 255, G: 255, B: 255, A: 255}
)

func countNonZero(b *pixel.Buffer) int {
	n := 0
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.At(x, y) != (pixel.Color{}) {
				n++
			}
		}
	}
	return n
}

func TestDiscFills(t *testing.T) {
	b := pixel.New(20, 20)
	Disc(b, 10, 10, 4, red)
	if b.At(10, 10) != red {
		t.Error("disc center not painted")
	}
	if b.At(0, 0) != (pixel.Color{}) {
		t.Error("pixel far outside disc was painted")
	}
	if b.At(10, 10+6) != (pixel.Color{}) {
		t.Error("pixel past radius was painted")
	}
}

func TestDiscTinyRadiusPaintsSinglePixel(t *testing.T) {
	b := pixel.New(5, 5)
	Disc(b, 2, 2, 0.05, red)
	if got := countNonZero(b); got != 1 {
		t.Errorf("painted pixels = %d, want 1", got)
	}
}

func TestLineCoversEndpoints(t *testing.T) {
	b := pixel.New(40, 40)
	Line(b, 5, 5, 35, 30, red, 3)
	if b.At(5, 5) != red {
		t.Error("line start not painted")
	}
	if b.At(35, 30) != red {
		t.Error("line end not painted")
	}
	if b.At(35, 5) != (pixel.Color{}) {
		t.Error("off-line corner was painted")
	}
}

func TestLineClipsSilently(t *testing.T) {
	b := pixel.New(10, 10)
	Line(b, -50, 5, 50, 5, red, 2)
	if b.At(5, 5) != red {
		t.Error("on-canvas span of clipped line not painted")
	}
}

func TestArrowTipAndShaft(t *testing.T) {
	b := pixel.New(60, 20)
	Arrow(b, 5, 10, 50, 10, red, 3, 12, 8)
	if b.At(5, 10) != red {
		t.Error("shaft start not painted")
	}
	if b.At(48, 10) != red {
		t.Error("head near tip not painted")
	}
	// The head widens behind the tip.
	if b.At(40, 8) != red || b.At(40, 12) != red {
		t.Error("head flanks not painted")
	}
}

func TestArrowFullyOffCanvasIsNoOp(t *testing.T) {
	b := pixel.New(10, 10)
	Arrow(b, -100, -100, -50, -50, red, 3, 12, 8)
	if got := countNonZero(b); got != 0 {
		t.Errorf("off-canvas arrow painted %d pixels, want 0", got)
	}
}

func TestFillRectClips(t *testing.T) {
	b := pixel.New(10, 10)
	FillRect(b, 5, 5, 100, 100, red)
	if b.At(5, 5) != red || b.At(9, 9) != red {
		t.Error("in-bounds area not filled")
	}
	if b.At(4, 4) != (pixel.Color{}) {
		t.Error("pixel outside rect was filled")
	}

	off := pixel.New(10, 10)
	FillRect(off, -20, -20, -5, -5, red)
	FillRect(off, 100, 100, 120, 120, red)
	if got := countNonZero(off); got != 0 {
		t.Errorf("off-canvas rects painted %d pixels, want 0", got)
	}
}

func TestFillRectBlends(t *testing.T) {
	b := pixel.NewUniform(4, 4, white)
	FillRect(b, 0, 0, 3, 3, pixel.Color{R: 0, G: 0, B: 0, A: 153})
	got := b.At(1, 1)
	if got == white || got == (pixel.Color{R: 0, G: 0, B: 0, A: 255}) {
		t.Errorf("fill did not alpha-blend: got %v", got)
	}
}

func TestRectOutlineGrowsOutward(t *testing.T) {
	b := pixel.New(30, 30)
	RectOutline(b, 10, 10, 10, 10, red, 3)
	if b.At(10, 10) != red {
		t.Error("base border not painted")
	}
	if b.At(8, 10) != red {
		t.Error("outward growth missing")
	}
	if b.At(15, 15) != (pixel.Color{}) {
		t.Error("interior was painted")
	}
	if b.At(12, 12) != (pixel.Color{}) {
		t.Error("border grew inward")
	}
}

func TestRectOutlineZeroSizeIsNoOp(t *testing.T) {
	b := pixel.New(10, 10)
	RectOutline(b, 2, 2, 0, 5, red, 2)
	if got := countNonZero(b); got != 0 {
		t.Errorf("zero-width rect painted %d pixels, want 0", got)
	}
}

func TestRectOutlineOffCanvasIsNoOp(t *testing.T) {
	b := pixel.New(16, 16)
	RectOutline(b, -100, -100, 10, 10, red, 1)
	RectOutline(b, 50, 50, 10, 10, red, 3)
	if got := countNonZero(b); got != 0 {
		t.Errorf("off-canvas outlines painted %d pixels, want 0", got)
	}
}

func TestRectOutlineClipsHiddenEdges(t *testing.T) {
	// Left edge at x=-5 is off-canvas; only the top and bottom rows
	// may reach column 0.
	b := pixel.New(16, 16)
	RectOutline(b, -5, 2, 10, 5, red, 1)
	if b.At(0, 2) != red || b.At(0, 6) != red {
		t.Error("visible parts of top/bottom edges not painted")
	}
	if b.At(0, 4) != (pixel.Color{}) {
		t.Error("clipped left edge was pulled onto column 0")
	}
	if b.At(4, 4) != red {
		t.Error("on-canvas right edge not painted")
	}
}

func TestSpotlightDimsOutsideHole(t *testing.T) {
	b := pixel.NewUniform(40, 40, white)
	dim := pixel.Color{R: 0, G: 0, B: 0, A: 115}
	Spotlight(b, 10, 10, 30, 30, 0, dim)
	if b.At(20, 20) != white {
		t.Error("hole interior was dimmed")
	}
	if b.At(0, 0) == white {
		t.Error("outside of hole was not dimmed")
	}
	if got := b.At(5, 5); got.R != got.G || got.G != got.B {
		t.Errorf("dim should stay gray over white, got %v", got)
	}
}

func TestSpotlightRoundedCorners(t *testing.T) {
	b := pixel.NewUniform(40, 40, white)
	Spotlight(b, 10, 10, 30, 30, 8, pixel.Color{R: 0, G: 0, B: 0, A: 200})
	if b.At(10, 10) == white {
		t.Error("square corner inside rounded hole escaped dimming")
	}
	if b.At(20, 20) != white {
		t.Error("hole center was dimmed")
	}
}

func TestTextPaintsGlyphs(t *testing.T) {
	b := pixel.New(40, 12)
	Text(b, 2, 2, "A", white, 1)
	if got := countNonZero(b); got == 0 {
		t.Fatal("no pixels painted for glyph")
	}
	empty := pixel.New(40, 12)
	Text(empty, 2, 2, " ", white, 1)
	if got := countNonZero(empty); got != 0 {
		t.Errorf("space painted %d pixels, want 0", got)
	}
}

func TestTextUnknownRuneFallsBackToQuestionMark(t *testing.T) {
	a := pixel.New(20, 12)
	Text(a, 2, 2, "é", white, 1)
	q := pixel.New(20, 12)
	Text(q, 2, 2, "?", white, 1)
	if !a.Equal(q) {
		t.Error("unknown rune did not render as '?'")
	}
}

func TestTextScaleAdvance(t *testing.T) {
	x0, y0, x1, y1 := TextBounds(10, 20, "abc", 2)
	if x0 != 10 || y0 != 20 {
		t.Errorf("origin = (%d,%d), want (10,20)", x0, y0)
	}
	if x1 != 10+3*GlyphSize*2 {
		t.Errorf("x1 = %d, want %d", x1, 10+3*GlyphSize*2)
	}
	if y1 != 20+GlyphSize*2 {
		t.Errorf("y1 = %d, want %d", y1, 20+GlyphSize*2)
	}
}

func TestTextBoundsMultiline(t *testing.T) {
	_, _, x1, y1 := TextBounds(0, 0, "ab\ncdef", 1)
	if x1 != 4*GlyphSize {
		t.Errorf("x1 = %d, want widest line %d", x1, 4*GlyphSize)
	}
	if y1 != 2*GlyphSize {
		t.Errorf("y1 = %d, want two lines %d", y1, 2*GlyphSize)
	}
}

func TestTextMultilineAdvancesRows(t *testing.T) {
	b := pixel.New(16, 24)
	Text(b, 0, 0, "A\nA", white, 1)
	rowBand := func(y0, y1 int) int {
		n := 0
		for y := y0; y < y1; y++ {
			for x := 0; x < b.W; x++ {
				if b.At(x, y) != (pixel.Color{}) {
					n++
				}
			}
		}
		return n
	}
	first := rowBand(0, GlyphSize)
	second := rowBand(GlyphSize, 2*GlyphSize)
	if first == 0 || second != first {
		t.Errorf("line pixel counts = %d/%d, want equal and nonzero", first, second)
	}
	if got := rowBand(2*GlyphSize, b.H); got != 0 {
		t.Errorf("painted %d pixels below the second line", got)
	}
}
