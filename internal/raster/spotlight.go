package raster

import (
	"math"

	"github.com/sprite-ai/agvis/internal/pixel"
)

// Spotlight dims every pixel outside a rounded-rect hole. The hole corners
// are exclusive on the right and bottom edge; the corner radius is clamped
// to half the hole's smaller dimension.
func Spotlight(b *pixel.Buffer, holeX0, holeY0, holeX1, holeY1 int, radius float64, dim pixel.Color) {
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if inRoundedRect(x, y, holeX0, holeY0, holeX1, holeY1, radius) {
				continue
			}
			b.Blend(x, y, dim)
		}
	}
}

func inRoundedRect(px, py, x0, y0, x1, y1 int, radius float64) bool {
	if px < x0 || px >= x1 || py < y0 || py >= y1 {
		return false
	}
	if radius <= 0.1 {
		return true
	}
	r := math.Min(radius, math.Min(math.Abs(float64(x1-x0))/2, math.Abs(float64(y1-y0))/2))
	fx, fy := float64(px), float64(py)
	left, right := float64(x0), float64(x1)
	top, bottom := float64(y0), float64(y1)

	if (fx >= left+r && fx <= right-r) || (fy >= top+r && fy <= bottom-r) {
		return true
	}

	corners := [4][2]float64{
		{left + r, top + r},
		{right - r, top + r},
		{left + r, bottom - r},
		{right - r, bottom - r},
	}
	for _, c := range corners {
		dx := fx - c[0]
		dy := fy - c[1]
		if dx*dx+dy*dy <= r*r {
			return true
		}
	}
	return false
}
