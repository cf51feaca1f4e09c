package pixel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA sample.
type Color struct {
	R, G, B, A uint8
}

// WithOpacity scales the color's alpha by an opacity in [0, 1].
func (c Color) WithOpacity(opacity float64) Color {
	if opacity >= 1.0 {
		return c
	}
	if opacity <= 0 {
		c.A = 0
		return c
	}
	c.A = uint8(clamp255(float64(c.A) * opacity))
	return c
}

// Luma returns the relative luminance in [0, 1].
func (c Color) Luma() float64 {
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255.0
}

// AutoOutline picks a contrasting halo color for drawing over c: black for
// light colors, white for dark ones.
func AutoOutline(c Color) Color {
	if c.Luma() > 0.6 {
		return Color{0, 0, 0, 220}
	}
	return Color{255, 255, 255, 220}
}

// Over composites src over dst with standard alpha-over blending, clamped
// per channel.
func Over(dst, src Color) Color {
	a := float64(src.A) / 255.0
	if a <= 0 {
		return dst
	}
	inv := 1.0 - a
	return Color{
		R: uint8(clamp255(float64(dst.R)*inv + float64(src.R)*a)),
		G: uint8(clamp255(float64(dst.G)*inv + float64(src.G)*a)),
		B: uint8(clamp255(float64(dst.B)*inv + float64(src.B)*a)),
		A: uint8(clamp255(float64(src.A) + float64(dst.A)*inv)),
	}
}

func clamp255(v float64) float64 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ParseColor parses "#RRGGBB", "#RRGGBBAA" and "rgba(r,g,b,a)" strings.
// The rgba alpha component accepts either a 0-1 fraction or a 0-255 value.
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Color{}, fmt.Errorf("empty color")
	}

	if hex, ok := strings.CutPrefix(raw, "#"); ok {
		switch len(hex) {
		case 6, 8:
			v, err := strconv.ParseUint(hex, 16, 64)
			if err != nil {
				return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
			}
			if len(hex) == 6 {
				return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
			}
			return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
		default:
			return Color{}, fmt.Errorf("invalid hex color %q", s)
		}
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(lower, ")") {
		body := lower[len("rgba(") : len(lower)-1]
		parts := strings.Split(body, ",")
		if len(parts) != 4 {
			return Color{}, fmt.Errorf("invalid rgba color %q", s)
		}
		var ch [3]uint8
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
			if err != nil {
				return Color{}, fmt.Errorf("invalid rgba color %q: %w", s, err)
			}
			ch[i] = uint8(clamp255(v))
		}
		alphaRaw, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Color{}, fmt.Errorf("invalid rgba alpha in %q: %w", s, err)
		}
		var a uint8
		if alphaRaw <= 1.0 {
			a = uint8(clamp255(alphaRaw * 255.0))
		} else {
			a = uint8(clamp255(alphaRaw))
		}
		return Color{ch[0], ch[1], ch[2], a}, nil
	}

	return Color{}, fmt.Errorf("unrecognized color %q", s)
}

// ParseColorDefault parses a color string, returning fallback when the
// string is empty or malformed.
func ParseColorDefault(s string, fallback Color) Color {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}
