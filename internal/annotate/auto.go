package annotate

import (
	"strconv"

	"github.com/sprite-ai/agvis/internal/detect"
)

// AutoSpec builds an annotation spec from detected change regions: a red
// rect per region plus a numbered label hanging off its top-left corner.
// The label anchors to the rect by id, so later edits to the spec keep the
// pair attached.
func AutoSpec(regions []detect.Region) *Spec {
	spec := &Spec{
		Defaults: map[string]any{
			"auto_scale": true,
			"outline":    true,
			"text_bg":    "rgba(0,0,0,0.6)",
		},
		Annotations: []Annotation{},
	}
	for i, region := range regions {
		spec.Annotations = append(spec.Annotations, Annotation{
			"type":   "rect",
			"id":     region.ID,
			"x":      float64(region.X),
			"y":      float64(region.Y),
			"w":      float64(region.W),
			"h":      float64(region.H),
			"color":  "#FF453A",
			"width":  float64(3),
			"intent": "changed-region",
			"action": "inspect",
		})
		spec.Annotations = append(spec.Annotations, Annotation{
			"type":          "text",
			"text":          strconv.Itoa(i + 1),
			"anchor":        region.ID,
			"anchor_pos":    "top_left",
			"anchor_offset": []any{float64(0), float64(-18)},
			"color":         "#FFFFFF",
			"text_bg":       "rgba(255,69,58,0.78)",
			"intent":        "change-label",
			"action":        "review-diff",
		})
	}
	return spec
}
