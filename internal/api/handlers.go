package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"

	"github.com/sprite-ai/agvis/internal/annotate"
	"github.com/sprite-ai/agvis/internal/capture"
	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Diff ---

type diffRequest struct {
	Baseline string `json:"baseline"` // base64 PNG
	Current  string `json:"current"`  // base64 PNG
	Resize   bool   `json:"resize,omitempty"`

	Threshold *int `json:"threshold,omitempty"`
	MinArea   *int `json:"min_area,omitempty"`
	Pad       *int `json:"pad,omitempty"`
	MaxBoxes  *int `json:"max_boxes,omitempty"`
}

type diffResponse struct {
	PercentChanged float64         `json:"percent_changed"`
	AvgDiffPercent float64         `json:"avg_diff_percent"`
	Size           sizeJSON        `json:"size"`
	Resized        bool            `json:"resized"`
	ChangeRegions  []detect.Region `json:"change_regions"`
	RegionCount    int             `json:"change_region_count"`
	AnnotateSpec   *annotate.Spec  `json:"annotate_spec"`
}

type sizeJSON struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	before, err := decodeImage(req.Baseline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "baseline: "+err.Error())
		return
	}
	after, err := decodeImage(req.Current)
	if err != nil {
		writeError(w, http.StatusBadRequest, "current: "+err.Error())
		return
	}

	resized := false
	if before.W != after.W || before.H != after.H {
		if !req.Resize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf(
				"image sizes differ (%dx%d vs %dx%d); set resize to match baseline size",
				before.W, before.H, after.W, after.H))
			return
		}
		after = pixel.Resize(after, before.W, before.H)
		resized = true
	}

	cfg := detect.DefaultConfig()
	if req.Threshold != nil {
		cfg.Threshold = *req.Threshold
	}
	if req.MinArea != nil {
		cfg.MinArea = *req.MinArea
	}
	if req.Pad != nil {
		cfg.Pad = *req.Pad
	}
	if req.MaxBoxes != nil {
		cfg.MaxBoxes = *req.MaxBoxes
	}

	res, err := detect.Run(before, after, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, diffResponse{
		PercentChanged: res.Stats.PercentChanged,
		AvgDiffPercent: res.Stats.AvgDiffPercent,
		Size:           sizeJSON{Width: res.Stats.Width, Height: res.Stats.Height},
		Resized:        resized,
		ChangeRegions:  res.Regions,
		RegionCount:    len(res.Regions),
		AnnotateSpec:   annotate.AutoSpec(res.Regions),
	})
}

// --- Annotate ---

type annotateRequest struct {
	Image string          `json:"image"` // base64 PNG
	Spec  json.RawMessage `json:"spec"`
}

type annotateResponse struct {
	Image       string           `json:"image"` // base64 PNG
	Size        sizeJSON         `json:"size"`
	Annotations []map[string]any `json:"annotations"`
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if len(req.Spec) == 0 {
		writeError(w, http.StatusBadRequest, "spec is required")
		return
	}

	src, err := decodeImage(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image: "+err.Error())
		return
	}
	spec, err := annotate.ParseSpec(req.Spec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := annotate.Apply(src, spec)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	encoded, err := encodeImage(res.Image)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, annotateResponse{
		Image:       encoded,
		Size:        sizeJSON{Width: res.Image.W, Height: res.Image.H},
		Annotations: res.Meta,
	})
}

// --- Select ---

type selectRequest struct {
	Candidates string `json:"candidates"` // tab-separated window list

	MinWidth  *int `json:"min_width,omitempty"`
	MinHeight *int `json:"min_height,omitempty"`
	MinArea   *int `json:"min_area,omitempty"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	policy := capture.DefaultPolicy()
	if req.MinWidth != nil {
		policy.MinWidth = *req.MinWidth
	}
	if req.MinHeight != nil {
		policy.MinHeight = *req.MinHeight
	}
	if req.MinArea != nil {
		policy.MinArea = *req.MinArea
	}

	decision := policy.Select(capture.ParseCandidates(req.Candidates))
	writeJSON(w, http.StatusOK, decision)
}

// --- Image codecs ---

func decodeImage(b64 string) (*pixel.Buffer, error) {
	if b64 == "" {
		return nil, fmt.Errorf("image data is required")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return pixel.FromImage(img), nil
}

func encodeImage(b *pixel.Buffer) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.Image()); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
