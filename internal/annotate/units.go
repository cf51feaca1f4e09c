package annotate

import (
	"strconv"
	"strings"
)

// unitsIsRel interprets the "units" key: true, "rel", "relative", "ratio",
// "fraction" and "normalized" all select relative units.
func unitsIsRel(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "rel", "relative", "ratio", "fraction", "normalized":
			return true
		}
	}
	return false
}

// resolveMeasure converts one coordinate value to pixels along the given
// span. Bare numbers follow the annotation's unit system; string values
// carry their own suffix: "40%" and "0.4rel" are span-relative, "12px" is
// absolute. A "rel" magnitude above 1 is read as a percentage.
func resolveMeasure(v any, span float64, defaultRel bool) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if defaultRel {
			return t * span, true
		}
		return t, true
	case string:
		raw := strings.ToLower(strings.TrimSpace(t))
		if raw == "" {
			return 0, false
		}
		if p, ok := strings.CutSuffix(raw, "%"); ok {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, false
			}
			return f * span / 100, true
		}
		if p, ok := strings.CutSuffix(raw, "rel"); ok {
			ratio, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, false
			}
			if ratio > 1 || ratio < -1 {
				ratio /= 100
			}
			return ratio * span, true
		}
		if p, ok := strings.CutSuffix(raw, "px"); ok {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return 0, false
			}
			return f, true
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		if defaultRel {
			return f * span, true
		}
		return f, true
	default:
		return 0, false
	}
}

// resolveOffsetUnits resolves a [dx, dy] offset, x against the width and y
// against the height.
func resolveOffsetUnits(v any, imgW, imgH float64, defaultRel bool) ([]any, bool) {
	var xs, ys any
	switch t := v.(type) {
	case []any:
		if len(t) < 2 {
			return nil, false
		}
		xs, ys = t[0], t[1]
	case string:
		parts := strings.Split(t, ",")
		if len(parts) < 2 {
			return nil, false
		}
		xs, ys = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	default:
		return nil, false
	}
	dx, okX := resolveMeasure(xs, imgW, defaultRel)
	dy, okY := resolveMeasure(ys, imgH, defaultRel)
	if !okX || !okY {
		return nil, false
	}
	return []any{dx, dy}, true
}

// coordinate keys and the axis span each resolves against.
var measureFields = []struct {
	key  string
	horz bool
}{
	{"x", true}, {"x1", true}, {"x2", true}, {"w", true},
	{"y", false}, {"y1", false}, {"y2", false}, {"h", false},
}

// resolveAnnotationUnits rewrites every coordinate of a merged annotation
// into absolute pixels, in place. This runs exactly once per annotation,
// before targets are registered or anything is drawn.
func resolveAnnotationUnits(ann Annotation, imgW, imgH float64, defaults map[string]any) {
	units := ann["units"]
	if units == nil {
		units = defaults["units"]
	}
	defaultRel := unitsIsRel(units)

	for _, f := range measureFields {
		v, present := ann[f.key]
		if !present {
			continue
		}
		span := imgW
		if !f.horz {
			span = imgH
		}
		if resolved, ok := resolveMeasure(v, span, defaultRel); ok {
			ann[f.key] = resolved
		}
	}

	for _, key := range []string{"anchor_offset", "from_offset", "to_offset"} {
		if v, present := ann[key]; present {
			if resolved, ok := resolveOffsetUnits(v, imgW, imgH, defaultRel); ok {
				ann[key] = resolved
			}
		}
	}

	// Anchor objects may carry their own offset and unit system.
	for _, key := range []string{"anchor", "from", "to"} {
		obj, ok := ann[key].(map[string]any)
		if !ok {
			continue
		}
		offset, present := obj["offset"]
		if !present {
			continue
		}
		units := obj["units"]
		if units == nil {
			units = ann["units"]
		}
		if units == nil {
			units = defaults["units"]
		}
		if resolved, ok := resolveOffsetUnits(offset, imgW, imgH, unitsIsRel(units)); ok {
			updated := make(map[string]any, len(obj))
			for k, v := range obj {
				updated[k] = v
			}
			updated["offset"] = resolved
			ann[key] = updated
		}
	}
}
