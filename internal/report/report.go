// Package report defines the JSON records the tool emits: diff reports,
// capture sidecars and observation packets. Records favor flat, explicit
// fields so downstream agents can consume them without schema negotiation.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sprite-ai/agvis/internal/capture"
	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/observe"
)

// Size is an image dimension pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MaskSummary carries the raw pixel counts behind the percentages.
type MaskSummary struct {
	ChangedPixelCount int `json:"changed_pixel_count"`
	TotalPixelCount   int `json:"total_pixel_count"`
}

// DiffReport is the JSON summary of one diff run.
type DiffReport struct {
	Baseline       string          `json:"baseline"`
	Current        string          `json:"current"`
	DiffImage      string          `json:"diff_image,omitempty"`
	AnnotatedImage string          `json:"annotated_image,omitempty"`
	AnnotateSpec   string          `json:"annotate_spec,omitempty"`
	PercentChanged float64         `json:"percent_changed"`
	AvgDiffPercent float64         `json:"avg_diff_percent"`
	MaskSummary    MaskSummary     `json:"mask_summary"`
	Size           Size            `json:"size"`
	Resized        bool            `json:"resized"`
	ChangeRegions  []detect.Region `json:"change_regions"`
	RegionCount    int             `json:"change_region_count"`
}

// NewDiffReport summarizes a detection result. Baseline and current are
// recorded as given; callers pass absolute paths when they have them.
func NewDiffReport(baseline, current string, res *detect.Result, resized bool) DiffReport {
	return DiffReport{
		Baseline:       baseline,
		Current:        current,
		PercentChanged: res.Stats.PercentChanged,
		AvgDiffPercent: res.Stats.AvgDiffPercent,
		MaskSummary: MaskSummary{
			ChangedPixelCount: res.Stats.ChangedPixels,
			TotalPixelCount:   res.Stats.TotalPixels,
		},
		Size:          Size{Width: res.Stats.Width, Height: res.Stats.Height},
		Resized:       resized,
		ChangeRegions: res.Regions,
		RegionCount:   len(res.Regions),
	}
}

// CaptureRecord is the sidecar written next to a captured screenshot.
type CaptureRecord struct {
	Path       string           `json:"path"`
	Step       string           `json:"step,omitempty"`
	Note       string           `json:"note,omitempty"`
	Process    string           `json:"process,omitempty"`
	Decision   capture.Decision `json:"decision"`
	Size       Size             `json:"size"`
	CapturedAt time.Time        `json:"captured_at"`
}

// ObservePacket bundles everything one observation run produced.
type ObservePacket struct {
	RunID         string               `json:"run_id"`
	Process       string               `json:"process,omitempty"`
	Action        observe.ActionResult `json:"action"`
	BeforeCapture CaptureRecord        `json:"before_capture"`
	AfterCapture  CaptureRecord        `json:"after_capture"`
	SettleSeconds float64              `json:"settle_seconds"`
	Diff          DiffReport           `json:"diff"`
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at"`
}

// WriteJSON writes a record as indented JSON, creating parent directories
// as needed.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// ReadDiffReport loads a diff report from disk.
func ReadDiffReport(path string) (*DiffReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r DiffReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}

// SidecarFor returns the conventional sidecar path for an image:
// screenshot.png -> screenshot.json.
func SidecarFor(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return imagePath[:len(imagePath)-len(ext)] + ".json"
}
