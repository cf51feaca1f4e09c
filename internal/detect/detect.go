// Package detect computes per-pixel screenshot diffs and clusters the
// changed pixels into ranked bounding-box regions.
package detect

import (
	"fmt"
	"math"

	"github.com/sprite-ai/agvis/internal/pixel"
)

// Default detection parameters. Threshold is the per-channel noise floor
// below which a pixel is considered unchanged.
const (
	DefaultThreshold = 24
	DefaultMinArea   = 64
	DefaultPad       = 2
	DefaultMaxBoxes  = 16
)

// Config controls diff detection and region ranking.
type Config struct {
	Threshold int // per-pixel difference required to count as changed
	MinArea   int // clusters with fewer changed pixels are dropped
	Pad       int // padding added around each box, clipped to the image
	MaxBoxes  int // regions kept after ranking

	// ResizeToMatch rescales the after image to the before image's size
	// instead of failing on a dimension mismatch.
	ResizeToMatch bool
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		MinArea:   DefaultMinArea,
		Pad:       DefaultPad,
		MaxBoxes:  DefaultMaxBoxes,
	}
}

// Mask is the per-pixel difference of two equally sized buffers. Each
// sample is the maximum absolute channel difference (alpha excluded).
type Mask struct {
	W, H      int
	Threshold int
	Gray      []uint8
}

// At returns the difference value at (x, y), zero outside the mask.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return 0
	}
	return m.Gray[y*m.W+x]
}

// Changed reports whether the pixel differs above the noise threshold.
func (m *Mask) Changed(x, y int) bool {
	return int(m.At(x, y)) > m.Threshold
}

// Diff computes the difference mask of two buffers. The buffers must have
// identical dimensions.
func Diff(before, after *pixel.Buffer, threshold int) (*Mask, error) {
	if before.W != after.W || before.H != after.H {
		return nil, fmt.Errorf("dimension mismatch: before %dx%d, after %dx%d",
			before.W, before.H, after.W, after.H)
	}
	m := &Mask{W: before.W, H: before.H, Threshold: threshold, Gray: make([]uint8, before.W*before.H)}
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			a := before.At(x, y)
			b := after.At(x, y)
			d := absDiff(a.R, b.R)
			if g := absDiff(a.G, b.G); g > d {
				d = g
			}
			if bl := absDiff(a.B, b.B); bl > d {
				d = bl
			}
			m.Gray[y*m.W+x] = d
		}
	}
	return m, nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Stats are aggregate measures of a difference mask.
type Stats struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	TotalPixels    int     `json:"total_pixels"`
	ChangedPixels  int     `json:"changed_pixels"`
	PercentChanged float64 `json:"percent_changed"`
	AvgDiffPercent float64 `json:"avg_diff_percent"`
	AboveThreshold int     `json:"above_threshold"`
}

// Summarize computes aggregate statistics for a mask. ChangedPixels counts
// every nonzero sample; AboveThreshold counts only samples past the noise
// floor, which is what clustering operates on.
func Summarize(m *Mask) Stats {
	s := Stats{Width: m.W, Height: m.H, TotalPixels: m.W * m.H}
	var sum uint64
	for _, g := range m.Gray {
		if g > 0 {
			s.ChangedPixels++
		}
		if int(g) > m.Threshold {
			s.AboveThreshold++
		}
		sum += uint64(g)
	}
	if s.TotalPixels > 0 {
		s.PercentChanged = roundTo(float64(s.ChangedPixels)/float64(s.TotalPixels)*100, 3)
		s.AvgDiffPercent = roundTo(float64(sum)/(255.0*float64(s.TotalPixels))*100, 3)
	}
	return s
}

// Overlay renders the mask as a red wash over the after image. Each pixel's
// difference value becomes the alpha of the red blend, so louder changes
// glow brighter.
func Overlay(after *pixel.Buffer, m *Mask) *pixel.Buffer {
	out := after.Clone()
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if g := m.At(x, y); g > 0 {
				out.Blend(x, y, pixel.Color{R: 255, A: g})
			}
		}
	}
	return out
}

// Result bundles everything a single detection pass produces.
type Result struct {
	Mask    *Mask
	Stats   Stats
	Regions []Region
}

// Run diffs two buffers and ranks the changed regions. When the sizes
// differ and cfg.ResizeToMatch is set, the after buffer is rescaled to the
// before buffer's size first.
func Run(before, after *pixel.Buffer, cfg Config) (*Result, error) {
	if (before.W != after.W || before.H != after.H) && cfg.ResizeToMatch {
		after = pixel.Resize(after, before.W, before.H)
	}
	m, err := Diff(before, after, cfg.Threshold)
	if err != nil {
		return nil, err
	}
	return &Result{
		Mask:    m,
		Stats:   Summarize(m),
		Regions: Rank(m, cfg),
	}, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
