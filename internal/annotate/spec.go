// Package annotate interprets annotation specs and renders them onto
// screenshots. Specs are JSON: either a bare list of annotations or an
// object with "defaults" and "annotations". Geometry may be absolute
// pixels or relative fractions; everything is resolved to pixels exactly
// once before any drawing happens.
package annotate

import (
	"encoding/json"
	"fmt"

	"github.com/sprite-ai/agvis/internal/model"
)

// Annotation is one entry of a spec. Entries carry open-ended keys so
// semantic fields survive verbatim into the output metadata; only the
// geometry and style keys are interpreted.
type Annotation map[string]any

// Spec is a parsed annotation spec. Defaults are merged into every
// annotation before unit resolution, with the annotation's own keys
// winning.
type Spec struct {
	Defaults    map[string]any `json:"defaults"`
	Annotations []Annotation   `json:"annotations"`
}

// ParseSpec decodes spec JSON. A top-level array is shorthand for an
// object with empty defaults. Every annotation must name a known shape;
// an unknown shape is an error rather than a silent skip, so malformed
// specs cannot quietly lose annotations.
func ParseSpec(data []byte) (*Spec, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid spec JSON: %w", err)
	}

	spec := &Spec{Defaults: map[string]any{}}
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("annotation entries must be objects, got %T", item)
			}
			spec.Annotations = append(spec.Annotations, Annotation(obj))
		}
	case map[string]any:
		list, ok := v["annotations"].([]any)
		if !ok {
			return nil, fmt.Errorf("spec must be a list or an object with 'annotations'")
		}
		if d, ok := v["defaults"].(map[string]any); ok {
			spec.Defaults = d
		}
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("annotation entries must be objects, got %T", item)
			}
			spec.Annotations = append(spec.Annotations, Annotation(obj))
		}
	default:
		return nil, fmt.Errorf("spec must be a list or an object with 'annotations'")
	}

	for i, ann := range spec.Annotations {
		name, _ := valueToString(ann["type"])
		if _, ok := model.ParseShape(name); !ok {
			if name == "" {
				return nil, fmt.Errorf("annotation %d: missing type", i)
			}
			return nil, fmt.Errorf("annotation %d: unknown type %q", i, name)
		}
	}
	return spec, nil
}

// shapeOf returns the resolved shape of a merged annotation. Parse
// validation guarantees this succeeds for specs built through ParseSpec.
func shapeOf(ann Annotation) (model.Shape, bool) {
	name, _ := valueToString(ann["type"])
	return model.ParseShape(name)
}

// merged returns defaults overlaid with the annotation's own keys.
func merged(defaults map[string]any, ann Annotation) Annotation {
	out := make(Annotation, len(defaults)+len(ann))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range ann {
		out[k] = v
	}
	return out
}
