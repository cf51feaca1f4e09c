// Package capture decides how a screenshot gets taken: from a specific
// window, from the whole screen, or as a synthesized placeholder when
// nothing real is available. The policy itself never captures anything;
// it only classifies candidates and picks one.
package capture

import (
	"fmt"
	"sort"

	"github.com/sprite-ai/agvis/internal/model"
)

// Usability thresholds. Windows smaller than this produce visually
// useless crops (utility popovers, tooltips, tool palettes).
const (
	DefaultMinWidth  = 220
	DefaultMinHeight = 140
	DefaultMinArea   = 40000
)

// Window origins outside this range are off-screen artifacts of stale
// window servers, not real surfaces.
const (
	minReasonableXY = -5000
	maxReasonableXY = 50000
)

// Candidate is one window reported by the platform layer.
type Candidate struct {
	Index int    `json:"index"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	Title string `json:"title,omitempty"`
}

// Area returns the candidate's pixel area.
func (c Candidate) Area() int { return c.W * c.H }

// Policy holds the usability thresholds for window selection.
type Policy struct {
	MinWidth  int `json:"min_width"`
	MinHeight int `json:"min_height"`
	MinArea   int `json:"min_area"`
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{MinWidth: DefaultMinWidth, MinHeight: DefaultMinHeight, MinArea: DefaultMinArea}
}

// Usable reports whether the candidate clears every threshold and sits at
// a plausible on-screen position.
func (p Policy) Usable(c Candidate) bool {
	return c.W >= p.MinWidth &&
		c.H >= p.MinHeight &&
		c.Area() >= p.MinArea &&
		c.X >= minReasonableXY && c.X <= maxReasonableXY &&
		c.Y >= minReasonableXY && c.Y <= maxReasonableXY
}

// Decision is the policy's verdict. Selected is set only in window mode.
// FallbackUsed means the caller must synthesize a placeholder image; it
// always comes with at least one warning.
type Decision struct {
	Mode           model.CaptureMode `json:"mode"`
	Selected       *Candidate        `json:"selected,omitempty"`
	SelectionMode  string            `json:"selection_mode"`
	CandidateCount int               `json:"candidate_count"`
	UsableCount    int               `json:"usable_count"`
	Usable         bool              `json:"usable"`
	FallbackUsed   bool              `json:"fallback_used"`
	Policy         Policy            `json:"policy"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// Select runs the capture selection state machine:
//
//	usable candidate found  -> window mode, largest usable wins
//	candidates but none usable -> screen mode, warning names the rejects
//	no candidates at all    -> fallback mode with warnings
//
// Ties on area break toward the lowest candidate index, so the decision
// is deterministic for any input order.
func (p Policy) Select(candidates []Candidate) Decision {
	d := Decision{CandidateCount: len(candidates), SelectionMode: "none", Policy: p}

	if len(candidates) == 0 {
		d.Mode = model.CaptureFallback
		d.FallbackUsed = true
		d.Warnings = append(d.Warnings, "no window candidates reported; synthesizing placeholder capture")
		return d
	}

	usable := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if p.Usable(c) {
			usable = append(usable, c)
		}
	}
	d.UsableCount = len(usable)

	if len(usable) > 0 {
		sort.SliceStable(usable, func(i, j int) bool {
			if usable[i].Area() != usable[j].Area() {
				return usable[i].Area() > usable[j].Area()
			}
			return usable[i].Index < usable[j].Index
		})
		selected := usable[0]
		d.Mode = model.CaptureWindow
		d.Selected = &selected
		d.SelectionMode = "largest_usable"
		d.Usable = true
		return d
	}

	d.Mode = model.CaptureScreen
	d.SelectionMode = "largest_any"
	d.Warnings = append(d.Warnings, fmt.Sprintf(
		"no usable window among %d candidates (%s); capturing full screen",
		len(candidates), describeSizes(candidates)))
	return d
}

// describeSizes lists candidate dimensions for warning messages.
func describeSizes(candidates []Candidate) string {
	out := ""
	for i, c := range candidates {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%dx%d", c.W, c.H)
	}
	return out
}
