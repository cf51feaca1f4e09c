package annotate

import (
	"fmt"
	"math"

	"github.com/sprite-ai/agvis/internal/model"
	"github.com/sprite-ai/agvis/internal/pixel"
	"github.com/sprite-ai/agvis/internal/raster"
)

// Default stroke colors, matching the macOS system palette the spec format
// grew up with.
var (
	defaultRectColor  = pixel.Color{R: 255, G: 59, B: 48, A: 255}
	defaultArrowColor = pixel.Color{R: 10, G: 132, B: 255, A: 255}
	defaultTextColor  = pixel.Color{R: 255, G: 255, B: 255, A: 255}
	defaultDimColor   = pixel.Color{R: 0, G: 0, B: 0, A: 115}
)

// Result is a rendered spec: the annotated image plus one metadata item
// per annotation, ordered by annotation index.
type Result struct {
	Image *pixel.Buffer
	Meta  []map[string]any
}

// Apply renders a spec over a copy of src. Spotlights draw first so later
// shapes stay visible over the dimmed background; spotlights and rects
// register as anchor targets before any arrow or text resolves. The input
// buffer is never mutated.
func Apply(src *pixel.Buffer, spec *Spec) (*Result, error) {
	out := src.Clone()
	imgW, imgH := float64(src.W), float64(src.H)
	baseScale := resolveScale(spec.Defaults, src.W, src.H)

	type prepared struct {
		index int
		shape model.Shape
		ann   Annotation
	}
	var spotlights, others []prepared

	for idx, raw := range spec.Annotations {
		shape, ok := shapeOf(raw)
		if !ok {
			name, _ := valueToString(raw["type"])
			return nil, fmt.Errorf("annotation %d: unknown type %q", idx, name)
		}
		ann := merged(spec.Defaults, raw)
		resolveAnnotationUnits(ann, imgW, imgH, spec.Defaults)
		p := prepared{index: idx, shape: shape, ann: ann}
		if shape == model.ShapeSpotlight {
			spotlights = append(spotlights, p)
		} else {
			others = append(others, p)
		}
	}

	var targets []anchorTarget
	for _, p := range spotlights {
		if t, ok := targetFromAnn(p.index, "spotlight", p.ann); ok {
			targets = append(targets, t)
		}
	}
	for _, p := range others {
		if p.shape == model.ShapeRect {
			if t, ok := targetFromAnn(p.index, "rect", p.ann); ok {
				targets = append(targets, t)
			}
		}
	}

	meta := make([]map[string]any, 0, len(spec.Annotations))

	for _, p := range spotlights {
		drawSpotlight(out, p.ann, annScale(p.ann, baseScale), spec.Defaults)
		meta = append(meta, metaItem(p.index, p.ann, imgW, imgH))
	}

	for _, p := range others {
		scale := annScale(p.ann, baseScale)
		switch p.shape {
		case model.ShapeRect:
			drawRect(out, p.ann, scale)
		case model.ShapeArrow:
			applyArrowAnchor(p.ann, targets, spec.Defaults, imgW, imgH)
			drawArrow(out, p.ann, scale)
		case model.ShapeText:
			applyTextAnchor(p.ann, targets, spec.Defaults, imgW, imgH)
			drawText(out, p.ann, scale)
		}
		meta = append(meta, metaItem(p.index, p.ann, imgW, imgH))
	}

	sortMeta(meta)
	return &Result{Image: out, Meta: meta}, nil
}

func annScale(ann Annotation, base float64) float64 {
	if s, ok := valueToF64(ann["scale"]); ok {
		return s
	}
	return base
}

// resolveScale picks the stroke scale: an explicit defaults.scale wins;
// otherwise auto-scaling maps the longest image edge against a 1200 px
// reference, clamped to [1, 2]. auto_scale=false pins the scale at 1.
func resolveScale(defaults map[string]any, w, h int) float64 {
	if s, ok := valueToF64(defaults["scale"]); ok {
		return math.Max(s, 0.1)
	}
	autoScale := true
	if v, present := defaults["auto_scale"]; present {
		autoScale = valueToBool(v, true)
	}
	if !autoScale {
		return 1
	}
	maxDim := float64(max(max(w, h), 1))
	return math.Min(math.Max(maxDim/1200, 1), 2)
}

// scaleDefault scales a base stroke size, never dropping below minValue.
func scaleDefault(value, scale float64, minValue int) int {
	return max(int(math.Round(value*scale)), minValue)
}

func colorValue(v any) (pixel.Color, bool) {
	s, ok := valueToString(v)
	if !ok {
		return pixel.Color{}, false
	}
	c, err := pixel.ParseColor(s)
	if err != nil {
		return pixel.Color{}, false
	}
	return c, true
}

func drawRect(b *pixel.Buffer, ann Annotation, scale float64) {
	x, _ := valueToF64(ann["x"])
	y, _ := valueToF64(ann["y"])
	w, _ := valueToF64(ann["w"])
	h, _ := valueToF64(ann["h"])
	if w <= 0 || h <= 0 {
		return
	}

	if fill, ok := colorValue(ann["fill"]); ok {
		raster.FillRect(b,
			int(math.Round(x)), int(math.Round(y)),
			int(math.Round(x+w)), int(math.Round(y+h)), fill)
	}

	stroke := defaultRectColor
	if c, ok := colorValue(ann["color"]); ok {
		stroke = c
	}
	width := scaleDefault(3, scale, 2)
	if v, ok := valueToInt(ann["width"]); ok {
		width = max(v, 1)
	}
	outlineWidth := max(int(math.Round(float64(width)*0.6)), 2)
	if v, ok := valueToInt(ann["outline_width"]); ok {
		outlineWidth = max(v, 1)
	}
	outlineColor := pixel.AutoOutline(stroke)
	if c, ok := colorValue(ann["outline_color"]); ok {
		outlineColor = c
	}

	rx := int(math.Round(math.Max(x, 0)))
	ry := int(math.Round(math.Max(y, 0)))
	rw := int(math.Round(math.Max(w, 1)))
	rh := int(math.Round(math.Max(h, 1)))

	if valueToBool(ann["outline"], true) {
		raster.RectOutline(b, rx, ry, rw, rh, outlineColor, width+outlineWidth*2)
	}
	raster.RectOutline(b, rx, ry, rw, rh, stroke, width)
}

func drawArrow(b *pixel.Buffer, ann Annotation, scale float64) {
	x1, _ := valueToF64(ann["x1"])
	y1, _ := valueToF64(ann["y1"])
	x2, _ := valueToF64(ann["x2"])
	y2, _ := valueToF64(ann["y2"])

	color := defaultArrowColor
	if c, ok := colorValue(ann["color"]); ok {
		color = c
	}
	width := float64(scaleDefault(3, scale, 2))
	if v, ok := valueToF64(ann["width"]); ok {
		width = v
	}
	width = math.Max(width, 1)
	headLen := float64(scaleDefault(12, scale, 6))
	if v, ok := valueToF64(ann["head_len"]); ok {
		headLen = v
	}
	headLen = math.Max(headLen, 2)
	headWidth := float64(scaleDefault(8, scale, 5))
	if v, ok := valueToF64(ann["head_width"]); ok {
		headWidth = v
	}
	headWidth = math.Max(headWidth, 2)

	outlineWidth := math.Max(math.Round(width*0.6), 2)
	if v, ok := valueToF64(ann["outline_width"]); ok {
		outlineWidth = math.Max(v, 1)
	}
	outlineColor := pixel.AutoOutline(color)
	if c, ok := colorValue(ann["outline_color"]); ok {
		outlineColor = c
	}

	if valueToBool(ann["outline"], true) {
		raster.Arrow(b, x1, y1, x2, y2, outlineColor,
			width+outlineWidth*2, headLen+outlineWidth*2, headWidth+outlineWidth*2)
	}
	raster.Arrow(b, x1, y1, x2, y2, color, width, headLen, headWidth)
}

func drawText(b *pixel.Buffer, ann Annotation, scale float64) {
	text, _ := valueToString(ann["text"])
	if text == "" {
		return
	}

	x := 0
	if v, ok := valueToInt(ann["x"]); ok {
		x = v
	}
	y := 0
	if v, ok := valueToInt(ann["y"]); ok {
		y = v
	}
	color := defaultTextColor
	if c, ok := colorValue(ann["color"]); ok {
		color = c
	}
	size := scaleDefault(14, scale, 10)
	if v, ok := valueToInt(ann["size"]); ok {
		size = max(v, 8)
	}
	glyphScale := max(int(math.Round(float64(size)/float64(raster.GlyphSize))), 1)
	padding := scaleDefault(4, scale, 2)
	if v, ok := valueToInt(ann["padding"]); ok {
		padding = v
	}

	// auto_fit keeps the full glyph extent on canvas instead of letting
	// the edge clip it.
	if valueToBool(ann["auto_fit"], false) {
		x, y = fitTextPosition(b, x, y, text, glyphScale, padding)
		ann["x"] = float64(x)
		ann["y"] = float64(y)
	}

	bg := ann["bg"]
	if bg == nil {
		bg = ann["text_bg"]
	}
	if bgColor, ok := colorValue(bg); ok {
		x0, y0, x1, y1 := raster.TextBounds(x, y, text, glyphScale)
		raster.FillRect(b, x0-padding, y0-padding, x1+padding, y1+padding, bgColor)
	}

	outlineWidth := max(int(math.Round(float64(size)*0.12)), 1)
	if v, ok := valueToInt(ann["outline_width"]); ok {
		outlineWidth = max(v, 1)
	}
	outlineColor := pixel.AutoOutline(color)
	if c, ok := colorValue(ann["outline_color"]); ok {
		outlineColor = c
	}

	if valueToBool(ann["outline"], true) {
		for dx := -outlineWidth; dx <= outlineWidth; dx++ {
			for dy := -outlineWidth; dy <= outlineWidth; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if dx*dx+dy*dy > outlineWidth*outlineWidth {
					continue
				}
				raster.Text(b, x+dx, y+dy, text, outlineColor, glyphScale)
			}
		}
	}
	raster.Text(b, x, y, text, color, glyphScale)
}

// fitTextPosition shifts (x, y) the minimum distance needed so the text's
// bounds, including its background padding, lie inside the buffer.
func fitTextPosition(b *pixel.Buffer, x, y int, text string, glyphScale, padding int) (int, int) {
	x0, y0, x1, y1 := raster.TextBounds(x, y, text, glyphScale)
	x0, y0 = x0-padding, y0-padding
	x1, y1 = x1+padding, y1+padding
	if x1 > b.W {
		x -= x1 - b.W
		x0 -= x1 - b.W
	}
	if y1 > b.H {
		y -= y1 - b.H
		y0 -= y1 - b.H
	}
	if x0 < 0 {
		x -= x0
	}
	if y0 < 0 {
		y -= y0
	}
	return x, y
}

func drawSpotlight(b *pixel.Buffer, ann Annotation, scale float64, defaults map[string]any) {
	dim := defaultDimColor
	if c, ok := colorValue(ann["color"]); ok {
		dim = c
	} else if c, ok := colorValue(ann["dim_color"]); ok {
		dim = c
	} else if c, ok := colorValue(defaults["dim_color"]); ok {
		dim = c
	}

	opacity, hasOpacity := valueToF64(ann["opacity"])
	if !hasOpacity {
		opacity, hasOpacity = valueToF64(defaults["dim_opacity"])
	}
	if hasOpacity {
		if opacity <= 1 {
			dim.A = uint8(math.Min(math.Max(math.Round(opacity*255), 0), 255))
		} else {
			dim.A = uint8(math.Min(math.Max(math.Round(opacity), 0), 255))
		}
	}

	padding := spotlightMeasure(ann, defaults, "padding", "dim_padding") * scale
	radius := spotlightMeasure(ann, defaults, "radius", "dim_radius") * scale

	x, _ := valueToF64(ann["x"])
	y, _ := valueToF64(ann["y"])
	w, _ := valueToF64(ann["w"])
	h, _ := valueToF64(ann["h"])
	x -= padding
	y -= padding
	w += padding * 2
	h += padding * 2

	raster.Spotlight(b,
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
		radius, dim)
}

func spotlightMeasure(ann Annotation, defaults map[string]any, key, defaultsKey string) float64 {
	if v, ok := valueToF64(ann[key]); ok {
		return v
	}
	if v, ok := valueToF64(defaults[defaultsKey]); ok {
		return v
	}
	return 0
}
