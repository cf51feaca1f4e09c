// Package pixel provides the RGBA buffer that is the common currency
// between the diff, raster and annotation packages.
package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// Channels per sample. Buffers are always 8-bit RGBA.
const Channels = 4

// Buffer is a rectangular grid of RGBA samples. A Buffer is treated as
// immutable by every component except the one that created (or cloned) it:
// the raster primitives mutate only buffers owned by the calling
// invocation, so no locking is ever needed.
type Buffer struct {
	W, H   int
	Stride int // bytes per row, >= W*Channels
	Pix    []uint8
}

// New returns a zeroed (transparent black) buffer of the given size.
func New(w, h int) *Buffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Buffer{W: w, H: h, Stride: w * Channels, Pix: make([]uint8, w*h*Channels)}
}

// NewUniform returns a buffer filled with a single color.
func NewUniform(w, h int, c Color) *Buffer {
	b := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, c)
		}
	}
	return b
}

// FromPix wraps raw RGBA samples in a Buffer, validating the size invariant.
func FromPix(w, h, stride int, pix []uint8) (*Buffer, error) {
	if w < 0 || h < 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", w, h)
	}
	if stride < w*Channels {
		return nil, fmt.Errorf("stride %d smaller than row width %d", stride, w*Channels)
	}
	if len(pix) != stride*h {
		return nil, fmt.Errorf("pixel data length %d, want stride*h = %d", len(pix), stride*h)
	}
	return &Buffer{W: w, H: h, Stride: stride, Pix: pix}, nil
}

// FromImage converts any image into an owned RGBA buffer.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			r, g, bl, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			b.Set(x, y, Color{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)})
		}
	}
	return b
}

// Image returns a view of the buffer as a stdlib image. The returned image
// shares the buffer's pixel data.
func (b *Buffer) Image() *image.RGBA {
	return &image.RGBA{Pix: b.Pix, Stride: b.Stride, Rect: image.Rect(0, 0, b.W, b.H)}
}

// Clone returns an independent copy. Components that need to draw on a
// buffer clone it first; the input stays untouched.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{W: b.W, H: b.H, Stride: b.Stride, Pix: pix}
}

// In reports whether the coordinate lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.W && y < b.H
}

// At returns the color at (x, y). Out-of-range coordinates return zero.
func (b *Buffer) At(x, y int) Color {
	if !b.In(x, y) {
		return Color{}
	}
	i := y*b.Stride + x*Channels
	return Color{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

// Set writes the color at (x, y). Out-of-range coordinates are ignored.
func (b *Buffer) Set(x, y int, c Color) {
	if !b.In(x, y) {
		return
	}
	i := y*b.Stride + x*Channels
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// Blend composites src over the pixel at (x, y) with alpha-over blending.
// Out-of-range coordinates are ignored.
func (b *Buffer) Blend(x, y int, src Color) {
	if !b.In(x, y) {
		return
	}
	b.Set(x, y, Over(b.At(x, y), src))
}

// Equal reports whether two buffers have identical dimensions and samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.W != other.W || b.H != other.H {
		return false
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.At(x, y) != other.At(x, y) {
				return false
			}
		}
	}
	return true
}

// RGBA implements color.Color for Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}
