package annotate

import "strings"

// anchorTarget is a rectangle another annotation can attach to. Spotlights
// and rects register themselves as targets before arrows and text resolve.
type anchorTarget struct {
	id    string
	index int
	kind  string
	x0    float64
	y0    float64
	x1    float64
	y1    float64
}

func (t anchorTarget) center() (float64, float64) {
	return (t.x0 + t.x1) / 2, (t.y0 + t.y1) / 2
}

// anchorPoint maps a named position on the target box to a point.
// Unrecognized names fall back to the center.
func (t anchorTarget) point(pos string) (float64, float64) {
	cx, cy := t.center()
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(pos)), "-", "_") {
	case "top":
		return cx, t.y0
	case "bottom":
		return cx, t.y1
	case "left":
		return t.x0, cy
	case "right":
		return t.x1, cy
	case "top_left":
		return t.x0, t.y0
	case "top_right":
		return t.x1, t.y0
	case "bottom_left":
		return t.x0, t.y1
	case "bottom_right":
		return t.x1, t.y1
	default:
		return cx, cy
	}
}

// targetFromAnn builds a target from an annotation whose box geometry has
// already been resolved to pixels. Degenerate boxes produce no target.
func targetFromAnn(index int, kind string, ann Annotation) (anchorTarget, bool) {
	x, okX := valueToF64(ann["x"])
	y, okY := valueToF64(ann["y"])
	w, okW := valueToF64(ann["w"])
	h, okH := valueToF64(ann["h"])
	if !okX || !okY || !okW || !okH || w <= 0 || h <= 0 {
		return anchorTarget{}, false
	}
	id, _ := valueToString(ann["id"])
	return anchorTarget{id: id, index: index, kind: kind, x0: x, y0: y, x1: x + w, y1: y + h}, true
}

// anchorSpec is a normalized anchor reference: by id, by annotation index,
// or nearest target, optionally filtered by target type.
type anchorSpec struct {
	id         string
	index      int
	hasIndex   bool
	nearest    bool
	targetType string
	pos        string
	offsetX    float64
	offsetY    float64
	hasOffset  bool
}

// normalizeAnchorSpec accepts the shorthand forms an anchor may take:
// true (nearest), a number (index), a string (id, or "nearest"), or an
// object with id/index/nearest/type/pos/offset.
func normalizeAnchorSpec(v any) (anchorSpec, bool) {
	switch t := v.(type) {
	case bool:
		if !t {
			return anchorSpec{}, false
		}
		return anchorSpec{nearest: true}, true
	case float64:
		return anchorSpec{index: int(t), hasIndex: true}, true
	case string:
		raw := strings.TrimSpace(t)
		if raw == "" {
			return anchorSpec{}, false
		}
		if strings.EqualFold(raw, "nearest") {
			return anchorSpec{nearest: true}, true
		}
		return anchorSpec{id: raw}, true
	case map[string]any:
		spec := anchorSpec{}
		spec.id, _ = valueToString(t["id"])
		if idx, ok := valueToInt(t["index"]); ok {
			spec.index = idx
			spec.hasIndex = true
		}
		if v, present := t["nearest"]; present {
			spec.nearest = valueToBool(v, false)
		}
		spec.targetType, _ = valueToString(t["type"])
		spec.pos, _ = valueToString(t["pos"])
		if dx, dy, ok := parseOffset(t["offset"]); ok {
			spec.offsetX, spec.offsetY = dx, dy
			spec.hasOffset = true
		}
		return spec, true
	default:
		return anchorSpec{}, false
	}
}

// resolveTarget finds the target the spec refers to. With no id, index or
// type filter the spec falls back to the target nearest the annotation's
// own position.
func resolveTarget(spec anchorSpec, targets []anchorTarget, fx, fy float64) (anchorTarget, bool) {
	if len(targets) == 0 {
		return anchorTarget{}, false
	}
	candidates := targets
	if spec.targetType != "" {
		candidates = nil
		for _, t := range targets {
			if strings.EqualFold(t.kind, spec.targetType) {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			return anchorTarget{}, false
		}
	}

	if spec.id != "" {
		for _, t := range candidates {
			if t.id == spec.id {
				return t, true
			}
		}
	}
	if spec.hasIndex {
		for _, t := range candidates {
			if t.index == spec.index {
				return t, true
			}
		}
	}
	if spec.nearest || (spec.id == "" && !spec.hasIndex && spec.targetType == "") {
		best := anchorTarget{}
		bestDist := -1.0
		for _, t := range candidates {
			cx, cy := t.center()
			dx, dy := cx-fx, cy-fy
			dist := dx*dx + dy*dy
			if bestDist < 0 || dist < bestDist {
				best, bestDist = t, dist
			}
		}
		return best, bestDist >= 0
	}
	return anchorTarget{}, false
}

// anchor pos/offset resolve through spec, then annotation key, then
// defaults, then the shape's fallback.
func resolveAnchorPos(spec anchorSpec, ann Annotation, annKey string, defaults map[string]any, fallback string) string {
	if spec.pos != "" {
		return spec.pos
	}
	if pos, ok := valueToString(ann[annKey]); ok {
		return pos
	}
	if pos, ok := valueToString(defaults["anchor_pos"]); ok {
		return pos
	}
	return fallback
}

func resolveAnchorOffset(spec anchorSpec, ann Annotation, annKey string, defaults map[string]any) (float64, float64) {
	if spec.hasOffset {
		return spec.offsetX, spec.offsetY
	}
	if dx, dy, ok := parseOffset(ann[annKey]); ok {
		return dx, dy
	}
	if dx, dy, ok := parseOffset(defaults["anchor_offset"]); ok {
		return dx, dy
	}
	return 0, 0
}

// applyTextAnchor rewrites a text annotation's x/y from its anchor. The
// default position is the target's top edge.
func applyTextAnchor(ann Annotation, targets []anchorTarget, defaults map[string]any, imgW, imgH float64) {
	spec, ok := normalizeAnchorSpec(ann["anchor"])
	if !ok {
		return
	}
	fx, okX := valueToF64(ann["x"])
	if !okX {
		fx = imgW / 2
	}
	fy, okY := valueToF64(ann["y"])
	if !okY {
		fy = imgH / 2
	}
	target, found := resolveTarget(spec, targets, fx, fy)
	if !found {
		return
	}
	pos := resolveAnchorPos(spec, ann, "anchor_pos", defaults, "top")
	dx, dy := resolveAnchorOffset(spec, ann, "anchor_offset", defaults)
	ax, ay := target.point(pos)
	ann["x"] = ax + dx
	ann["y"] = ay + dy
}

// applyArrowAnchor rewrites an arrow's endpoints from its from/to anchors.
// Either endpoint may anchor independently; the default position is the
// target's center.
func applyArrowAnchor(ann Annotation, targets []anchorTarget, defaults map[string]any, imgW, imgH float64) {
	type end struct {
		anchorKey, posKey, offKey, xKey, yKey string
	}
	for _, e := range []end{
		{"from", "from_pos", "from_offset", "x1", "y1"},
		{"to", "to_pos", "to_offset", "x2", "y2"},
	} {
		spec, ok := normalizeAnchorSpec(ann[e.anchorKey])
		if !ok {
			continue
		}
		fx, okX := valueToF64(ann[e.xKey])
		if !okX {
			fx = imgW / 2
		}
		fy, okY := valueToF64(ann[e.yKey])
		if !okY {
			fy = imgH / 2
		}
		target, found := resolveTarget(spec, targets, fx, fy)
		if !found {
			continue
		}
		pos := resolveAnchorPos(spec, ann, e.posKey, defaults, "center")
		dx, dy := resolveAnchorOffset(spec, ann, e.offKey, defaults)
		ax, ay := target.point(pos)
		ann[e.xKey] = ax + dx
		ann[e.yKey] = ay + dy
	}
}
