// Package raster draws annotation primitives onto pixel buffers. Every
// primitive blends with alpha-over compositing and clips silently at the
// buffer edges; drawing entirely off-canvas is a no-op, never an error.
package raster

import (
	"math"

	"github.com/sprite-ai/agvis/internal/pixel"
)

// Disc blends a filled circle centered at (cx, cy). Radii at or below 0.1
// collapse to a single pixel.
func Disc(b *pixel.Buffer, cx, cy, radius float64, c pixel.Color) {
	if radius <= 0.1 {
		b.Blend(int(math.Round(cx)), int(math.Round(cy)), c)
		return
	}
	minX := clampInt(int(math.Floor(cx-radius)), 0, b.W-1)
	maxX := clampInt(int(math.Ceil(cx+radius)), 0, b.W-1)
	minY := clampInt(int(math.Floor(cy-radius)), 0, b.H-1)
	maxY := clampInt(int(math.Ceil(cy+radius)), 0, b.H-1)
	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r2 {
				b.Blend(x, y, c)
			}
		}
	}
}

// Line blends a thick line by stamping discs along the segment. The disc
// radius never drops below 0.6 so hairlines stay visible.
func Line(b *pixel.Buffer, x1, y1, x2, y2 float64, c pixel.Color, width float64) {
	dx := x2 - x1
	dy := y2 - y1
	dist := math.Hypot(dx, dy)
	steps := int(math.Ceil(math.Max(dist, 1)))
	radius := math.Max(math.Max(width, 1)/2, 0.6)
	for step := 0; step <= steps; step++ {
		t := float64(step) / float64(max(steps, 1))
		Disc(b, x1+dx*t, y1+dy*t, radius, c)
	}
}

// Arrow blends a thick shaft ending in a filled triangular head. The shaft
// stops at the back of the head so the tip lands exactly on (x2, y2).
func Arrow(b *pixel.Buffer, x1, y1, x2, y2 float64, c pixel.Color, width, headLen, headWidth float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	backX := x2 - headLen*math.Cos(angle)
	backY := y2 - headLen*math.Sin(angle)
	Line(b, x1, y1, backX, backY, c, width)

	leftAngle := angle + math.Pi/2
	rightAngle := angle - math.Pi/2
	left := point{backX + (headWidth/2)*math.Cos(leftAngle), backY + (headWidth/2)*math.Sin(leftAngle)}
	right := point{backX + (headWidth/2)*math.Cos(rightAngle), backY + (headWidth/2)*math.Sin(rightAngle)}
	fillTriangle(b, point{x2, y2}, left, right, c)
}

// FillRect blends a filled axis-aligned rectangle with inclusive corners.
// The part outside the buffer is clipped away; a rectangle entirely
// off-canvas paints nothing.
func FillRect(b *pixel.Buffer, x0, y0, x1, y1 int, c pixel.Color) {
	minX := max(min(x0, x1), 0)
	maxX := min(max(x0, x1), b.W-1)
	minY := max(min(y0, y1), 0)
	maxY := min(max(y0, y1), b.H-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			b.Blend(x, y, c)
		}
	}
}

// RectOutline paints a rectangle border that grows outward from the base
// box as thickness increases. The border is painted opaquely rather than
// blended so repeated strokes along the same edge do not shift the color.
// Edges outside the buffer are clipped, not pulled back on-canvas.
func RectOutline(b *pixel.Buffer, x, y, w, h int, c pixel.Color, thickness int) {
	if w <= 0 || h <= 0 {
		return
	}
	for t := 0; t < max(thickness, 1); t++ {
		x0, y0 := x-t, y-t
		x1, y1 := x+w-1+t, y+h-1+t
		hSpan(b, x0, x1, y0, c)
		hSpan(b, x0, x1, y1, c)
		vSpan(b, y0, y1, x0, c)
		vSpan(b, y0, y1, x1, c)
	}
}

// hSpan sets the horizontal run [x0, x1] on row y, clipped to the buffer.
func hSpan(b *pixel.Buffer, x0, x1, y int, c pixel.Color) {
	if y < 0 || y >= b.H {
		return
	}
	for x := max(x0, 0); x <= min(x1, b.W-1); x++ {
		b.Set(x, y, c)
	}
}

// vSpan sets the vertical run [y0, y1] on column x, clipped to the buffer.
func vSpan(b *pixel.Buffer, y0, y1, x int, c pixel.Color) {
	if x < 0 || x >= b.W {
		return
	}
	for y := max(y0, 0); y <= min(y1, b.H-1); y++ {
		b.Set(x, y, c)
	}
}

type point struct{ x, y float64 }

func triangleArea(a, b, c point) float64 {
	return math.Abs(a.x*(b.y-c.y)+b.x*(c.y-a.y)+c.x*(a.y-b.y)) / 2
}

// pointInTriangle tests containment with a sub-area sum; the epsilon keeps
// edge pixels in so thin heads do not develop holes.
func pointInTriangle(p, a, b, c point, eps float64) bool {
	total := triangleArea(a, b, c)
	if total <= eps {
		return false
	}
	sum := triangleArea(p, b, c) + triangleArea(a, p, c) + triangleArea(a, b, p)
	return math.Abs(sum-total) <= eps
}

func fillTriangle(buf *pixel.Buffer, a, b, c point, col pixel.Color) {
	if buf.W == 0 || buf.H == 0 {
		return
	}
	minX := clampInt(int(math.Floor(min3(a.x, b.x, c.x))), 0, buf.W-1)
	maxX := clampInt(int(math.Ceil(max3(a.x, b.x, c.x))), 0, buf.W-1)
	minY := clampInt(int(math.Floor(min3(a.y, b.y, c.y))), 0, buf.H-1)
	maxY := clampInt(int(math.Ceil(max3(a.y, b.y, c.y))), 0, buf.H-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := point{float64(x) + 0.5, float64(y) + 0.5}
			if pointInTriangle(p, a, b, c, 0.8) {
				buf.Blend(x, y, col)
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
