package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/sprite-ai/agvis/internal/pixel"
)

// Placeholder capture size used when nothing real can be grabbed.
const (
	PlaceholderWidth  = 1280
	PlaceholderHeight = 720
)

// Source produces a screenshot buffer. Implementations decide what
// surface they grab; the orchestration layer only cares about pixels.
type Source interface {
	Capture() (*pixel.Buffer, error)
}

// DisplaySource grabs a whole display.
type DisplaySource struct {
	Display int
}

// Capture grabs the configured display's current contents.
func (s DisplaySource) Capture() (*pixel.Buffer, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if s.Display < 0 || s.Display >= n {
		return nil, fmt.Errorf("display %d out of range (have %d)", s.Display, n)
	}
	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(s.Display))
	if err != nil {
		return nil, fmt.Errorf("capturing display %d: %w", s.Display, err)
	}
	return fromRGBA(img), nil
}

// RegionSource grabs an absolute screen rectangle, used for window-mode
// captures once the policy has picked a candidate.
type RegionSource struct {
	X, Y, W, H int
}

// Capture grabs the configured screen region.
func (s RegionSource) Capture() (*pixel.Buffer, error) {
	if s.W <= 0 || s.H <= 0 {
		return nil, fmt.Errorf("invalid capture region %dx%d", s.W, s.H)
	}
	img, err := screenshot.CaptureRect(image.Rect(s.X, s.Y, s.X+s.W, s.Y+s.H))
	if err != nil {
		return nil, fmt.Errorf("capturing region: %w", err)
	}
	return fromRGBA(img), nil
}

// PlaceholderSource synthesizes a white frame. It backs fallback mode and
// never fails.
type PlaceholderSource struct{}

// Capture returns a uniform white placeholder buffer.
func (PlaceholderSource) Capture() (*pixel.Buffer, error) {
	return Placeholder(), nil
}

// Placeholder returns the standard fallback frame.
func Placeholder() *pixel.Buffer {
	return pixel.NewUniform(PlaceholderWidth, PlaceholderHeight, pixel.Color{R: 255, G: 255, B: 255, A: 255})
}

// SourceFor maps a decision onto the source that can execute it.
func SourceFor(d Decision, display int) Source {
	switch {
	case d.Selected != nil:
		return RegionSource{X: d.Selected.X, Y: d.Selected.Y, W: d.Selected.W, H: d.Selected.H}
	case !d.FallbackUsed:
		return DisplaySource{Display: display}
	default:
		return PlaceholderSource{}
	}
}

func fromRGBA(img *image.RGBA) *pixel.Buffer {
	b, err := pixel.FromPix(img.Rect.Dx(), img.Rect.Dy(), img.Stride, img.Pix)
	if err != nil {
		return pixel.FromImage(img)
	}
	return b
}
