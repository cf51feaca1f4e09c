package annotate

import (
	"testing"

	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
)

func canvas(w, h int) *pixel.Buffer {
	return pixel.NewUniform(w, h, pixel.Color{R: 255, G: 255, B: 255, A: 255})
}

func TestParseSpecForms(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		count   int
		wantErr bool
	}{
		{"bare list", `[{"type":"rect","x":1,"y":1,"w":5,"h":5}]`, 1, false},
		{"object with defaults", `{"defaults":{"units":"rel"},"annotations":[{"type":"text","text":"a"}]}`, 1, false},
		{"object missing annotations", `{"defaults":{}}`, 0, true},
		{"scalar", `42`, 0, true},
		{"unknown type", `[{"type":"circle"}]`, 0, true},
		{"missing type", `[{"x":1}]`, 0, true},
		{"alias focus", `[{"type":"focus","x":0,"y":0,"w":5,"h":5}]`, 1, false},
		{"alias dim", `[{"type":"dim","x":0,"y":0,"w":5,"h":5}]`, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpec error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(spec.Annotations) != tt.count {
				t.Errorf("annotations = %d, want %d", len(spec.Annotations), tt.count)
			}
		})
	}
}

func TestResolveMeasure(t *testing.T) {
	tests := []struct {
		name       string
		in         any
		span       float64
		defaultRel bool
		want       float64
		wantOK     bool
	}{
		{"abs number", 30.0, 200, false, 30, true},
		{"rel number", 0.25, 200, true, 50, true},
		{"percent string", "40%", 200, false, 80, true},
		{"rel suffix fraction", "0.5rel", 200, false, 100, true},
		{"rel suffix percent magnitude", "50rel", 200, false, 100, true},
		{"px suffix under rel default", "12px", 200, true, 12, true},
		{"plain string abs", "15", 200, false, 15, true},
		{"plain string rel", "0.1", 200, true, 20, true},
		{"garbage", "wat", 200, false, 0, false},
		{"empty", "", 200, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveMeasure(tt.in, tt.span, tt.defaultRel)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("resolveMeasure = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelAndAbsSpecsRenderIdentically(t *testing.T) {
	abs, err := ParseSpec([]byte(`[{"type":"rect","x":50,"y":25,"w":100,"h":50,"outline":false}]`))
	if err != nil {
		t.Fatal(err)
	}
	rel, err := ParseSpec([]byte(`{"defaults":{"units":"rel"},"annotations":[{"type":"rect","x":0.25,"y":0.25,"w":0.5,"h":0.5,"outline":false}]}`))
	if err != nil {
		t.Fatal(err)
	}
	outAbs, err := Apply(canvas(200, 100), abs)
	if err != nil {
		t.Fatal(err)
	}
	outRel, err := Apply(canvas(200, 100), rel)
	if err != nil {
		t.Fatal(err)
	}
	if !outAbs.Image.Equal(outRel.Image) {
		t.Error("relative and absolute specs for the same box rendered differently")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	src := canvas(100, 100)
	want := src.Clone()
	spec, _ := ParseSpec([]byte(`[{"type":"rect","x":10,"y":10,"w":50,"h":50}]`))
	if _, err := Apply(src, spec); err != nil {
		t.Fatal(err)
	}
	if !src.Equal(want) {
		t.Error("Apply mutated the source buffer")
	}
}

func TestApplyUnknownShapeFails(t *testing.T) {
	spec := &Spec{
		Defaults:    map[string]any{},
		Annotations: []Annotation{{"type": "swirl"}},
	}
	if _, err := Apply(canvas(10, 10), spec); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}

func TestSemanticFieldsPreservedVerbatim(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"type":"rect","x":5,"y":5,"w":20,"h":20,"severity":"high","issue":"button overlaps label","hypothesis":"z-order","next_action":"re-run","verify":"screenshot","id":"r1"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(100, 100), spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Meta) != 1 {
		t.Fatalf("meta items = %d, want 1", len(res.Meta))
	}
	item := res.Meta[0]
	for key, want := range map[string]string{
		"severity":    "high",
		"issue":       "button overlaps label",
		"hypothesis":  "z-order",
		"next_action": "re-run",
		"verify":      "screenshot",
		"id":          "r1",
	} {
		if item[key] != want {
			t.Errorf("meta[%q] = %v, want %q", key, item[key], want)
		}
	}
	for _, key := range []string{"intent", "action", "units"} {
		if v, ok := item[key]; ok {
			t.Errorf("absent semantic field %q emitted as %v", key, v)
		}
	}
}

func TestMetaOrderedByIndexWithSpotlightFirstRendering(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"type":"text","text":"hi","x":5,"y":5},
		{"type":"spotlight","x":10,"y":10,"w":20,"h":20},
		{"type":"rect","x":30,"y":30,"w":10,"h":10}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(100, 100), spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Meta) != 3 {
		t.Fatalf("meta items = %d, want 3", len(res.Meta))
	}
	for i, item := range res.Meta {
		if item["index"] != i {
			t.Errorf("meta[%d] has index %v", i, item["index"])
		}
	}
	if res.Meta[1]["type"] != "spotlight" {
		t.Errorf("meta[1] type = %v, want spotlight", res.Meta[1]["type"])
	}
}

func TestSpotlightDimsAroundHole(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"type":"spotlight","x":20,"y":20,"w":40,"h":40}]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(80, 80), spec)
	if err != nil {
		t.Fatal(err)
	}
	white := pixel.Color{R: 255, G: 255, B: 255, A: 255}
	if res.Image.At(40, 40) != white {
		t.Error("hole interior was dimmed")
	}
	if res.Image.At(5, 5) == white {
		t.Error("area outside hole was not dimmed")
	}
}

func TestTextAnchorsToRectById(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"type":"rect","id":"target","x":100,"y":80,"w":60,"h":40},
		{"type":"text","text":"1","anchor":"target","anchor_pos":"top_left","anchor_offset":[0,-18],"outline":false}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(300, 200), spec)
	if err != nil {
		t.Fatal(err)
	}
	var textItem map[string]any
	for _, item := range res.Meta {
		if item["type"] == "text" {
			textItem = item
		}
	}
	if textItem == nil {
		t.Fatal("no text meta item")
	}
	geom, ok := textItem["geometry"].(map[string]any)
	if !ok {
		t.Fatalf("text geometry missing: %v", textItem)
	}
	if geom["x"] != int64(100) || geom["y"] != int64(62) {
		t.Errorf("anchored text at (%v,%v), want (100,62)", geom["x"], geom["y"])
	}
}

func TestArrowAnchorsToNearestTarget(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"type":"rect","x":10,"y":10,"w":20,"h":20},
		{"type":"rect","x":200,"y":150,"w":20,"h":20},
		{"type":"arrow","x1":5,"y1":5,"x2":0,"y2":0,"to":true,"outline":false}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(300, 200), spec)
	if err != nil {
		t.Fatal(err)
	}
	var arrowItem map[string]any
	for _, item := range res.Meta {
		if item["type"] == "arrow" {
			arrowItem = item
		}
	}
	geom := arrowItem["geometry"].(map[string]any)
	// Nearest target to (0,0) is the first rect; default pos is its center.
	if geom["x2"] != int64(20) || geom["y2"] != int64(20) {
		t.Errorf("arrow tip at (%v,%v), want nearest rect center (20,20)", geom["x2"], geom["y2"])
	}
}

func TestAutoFitKeepsTextOnCanvas(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"type":"text","text":"wide label","x":95,"y":95,"auto_fit":true,"outline":false,"size":8,"padding":0}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(100, 100), spec)
	if err != nil {
		t.Fatal(err)
	}
	geom := res.Meta[0]["geometry"].(map[string]any)
	x := geom["x"].(int64)
	y := geom["y"].(int64)
	if int(x)+len("wide label")*8 > 100 {
		t.Errorf("auto_fit left text clipped: x = %d", x)
	}
	if int(y)+8 > 100 {
		t.Errorf("auto_fit left text clipped: y = %d", y)
	}
}

func TestResolveScale(t *testing.T) {
	tests := []struct {
		name     string
		defaults map[string]any
		w, h     int
		want     float64
	}{
		{"explicit scale wins", map[string]any{"scale": 1.5, "auto_scale": false}, 3000, 3000, 1.5},
		{"auto below reference", map[string]any{}, 800, 600, 1},
		{"auto above reference", map[string]any{}, 1800, 1000, 1.5},
		{"auto clamped", map[string]any{}, 5000, 5000, 2},
		{"auto disabled", map[string]any{"auto_scale": false}, 5000, 5000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveScale(tt.defaults, tt.w, tt.h); got != tt.want {
				t.Errorf("resolveScale = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeometryRelRounding(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"type":"rect","x":33,"y":33,"w":34,"h":34,"outline":false}]`))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Apply(canvas(100, 100), spec)
	if err != nil {
		t.Fatal(err)
	}
	rel, ok := res.Meta[0]["geometry_rel"].(map[string]any)
	if !ok {
		t.Fatal("geometry_rel missing")
	}
	if rel["x"] != 0.33 {
		t.Errorf("rel x = %v, want 0.33", rel["x"])
	}
	bbox, ok := rel["bbox"].(map[string]any)
	if !ok {
		t.Fatal("bbox missing from geometry_rel")
	}
	if bbox["w"] != 0.34 {
		t.Errorf("bbox w = %v, want 0.34", bbox["w"])
	}
}

func TestAutoSpecFromRegions(t *testing.T) {
	regions := []detect.Region{
		{ID: "change-1", X: 10, Y: 10, W: 40, H: 30},
		{ID: "change-2", X: 100, Y: 60, W: 20, H: 20},
	}
	spec := AutoSpec(regions)
	if len(spec.Annotations) != 4 {
		t.Fatalf("annotations = %d, want rect+label per region", len(spec.Annotations))
	}
	if spec.Annotations[0]["id"] != "change-1" || spec.Annotations[1]["anchor"] != "change-1" {
		t.Error("label not anchored to its region's rect")
	}
	if spec.Defaults["text_bg"] != "rgba(0,0,0,0.6)" {
		t.Errorf("defaults text_bg = %v", spec.Defaults["text_bg"])
	}
	res, err := Apply(canvas(200, 120), spec)
	if err != nil {
		t.Fatalf("auto spec failed to render: %v", err)
	}
	if len(res.Meta) != 4 {
		t.Errorf("meta items = %d, want 4", len(res.Meta))
	}
}
