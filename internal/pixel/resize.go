package pixel

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Resize returns a copy of b scaled to w x h with Catmull-Rom resampling.
// When the buffer already has the requested size the same buffer is
// returned unchanged.
func Resize(b *Buffer, w, h int) *Buffer {
	if b.W == w && b.H == h {
		return b
	}
	dst := New(w, h)
	xdraw.CatmullRom.Scale(dst.Image(), image.Rect(0, 0, w, h), b.Image(), image.Rect(0, 0, b.W, b.H), xdraw.Src, nil)
	return dst
}
