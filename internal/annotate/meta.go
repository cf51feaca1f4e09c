package annotate

import (
	"math"
	"sort"
	"strings"
)

// MetaVersion identifies the metadata record layout.
const MetaVersion = 1

// Meta is the sidecar record written next to an annotated image.
type Meta struct {
	Version     int              `json:"annotation_meta_version"`
	InputPath   string           `json:"input_path"`
	OutputPath  string           `json:"output_path"`
	MetaPath    string           `json:"meta_path"`
	GeneratedAt string           `json:"generated_at"`
	Size        MetaSize         `json:"size"`
	Defaults    map[string]any   `json:"defaults"`
	Annotations []map[string]any `json:"annotations"`
}

// MetaSize records the annotated image's dimensions.
type MetaSize struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Units  string `json:"units"`
}

// preservedKeys pass from the input annotation into its metadata item
// untouched. They mean nothing to the renderer.
var preservedKeys = []string{
	"id", "units", "intent", "action",
	"severity", "issue", "hypothesis", "next_action", "verify",
}

// metaItem summarizes one rendered annotation: its final geometry in
// pixels and relative coordinates, plus every semantic field verbatim.
func metaItem(index int, ann Annotation, imgW, imgH float64) map[string]any {
	kind, _ := valueToString(ann["type"])
	kind = strings.ToLower(kind)

	item := map[string]any{
		"index": index,
		"type":  kind,
	}
	for _, key := range preservedKeys {
		if v, ok := ann[key]; ok {
			item[key] = v
		}
	}

	geometry := extractGeometry(ann, kind)
	if len(geometry) > 0 {
		item["geometry"] = geometry
		if rel := geometryRel(geometry, kind, imgW, imgH); len(rel) > 0 {
			item["geometry_rel"] = rel
		}
	}

	if text, ok := valueToString(ann["text"]); ok {
		item["text"] = text
	}
	return item
}

func geometryKeys(kind string) []string {
	switch kind {
	case "rect", "spotlight", "focus", "dim":
		return []string{"x", "y", "w", "h"}
	case "arrow":
		return []string{"x1", "y1", "x2", "y2"}
	case "text":
		return []string{"x", "y"}
	default:
		return nil
	}
}

func extractGeometry(ann Annotation, kind string) map[string]any {
	geometry := map[string]any{}
	for _, key := range geometryKeys(kind) {
		if v, present := ann[key]; present {
			if n, ok := normalizeNumber(v); ok {
				geometry[key] = n
			}
		}
	}
	return geometry
}

func geometryRel(geometry map[string]any, kind string, imgW, imgH float64) map[string]any {
	rel := map[string]any{}
	for key, value := range geometry {
		num, ok := numberAsF64(value)
		if !ok {
			continue
		}
		switch key {
		case "x", "x1", "x2", "w":
			if imgW > 0 {
				rel[key] = roundTo(num/imgW, 6)
			}
		case "y", "y1", "y2", "h":
			if imgH > 0 {
				rel[key] = roundTo(num/imgH, 6)
			}
		}
	}

	switch kind {
	case "rect", "spotlight", "focus", "dim":
		x, okX := numberAsF64(geometry["x"])
		y, okY := numberAsF64(geometry["y"])
		w, okW := numberAsF64(geometry["w"])
		h, okH := numberAsF64(geometry["h"])
		if okX && okY && okW && okH {
			bbox := map[string]any{"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
			if imgW > 0 {
				bbox["x"] = roundTo(x/imgW, 6)
				bbox["w"] = roundTo(w/imgW, 6)
			}
			if imgH > 0 {
				bbox["y"] = roundTo(y/imgH, 6)
				bbox["h"] = roundTo(h/imgH, 6)
			}
			rel["bbox"] = bbox
		}
	}
	return rel
}

// normalizeNumber rounds geometry to 4 decimals and collapses whole
// numbers to ints so the sidecar JSON stays tidy.
func normalizeNumber(v any) (any, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	f, ok := valueToF64(v)
	if !ok {
		return nil, false
	}
	rounded := roundTo(f, 4)
	if math.Abs(rounded-math.Round(rounded)) < 1e-6 {
		return int64(math.Round(rounded)), true
	}
	return rounded, true
}

func numberAsF64(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return valueToF64(v)
	}
}

func sortMeta(items []map[string]any) {
	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i]["index"].(int)
		b, _ := items[j]["index"].(int)
		return a < b
	})
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
