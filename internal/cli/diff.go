package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/annotate"
	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
	"github.com/sprite-ai/agvis/internal/raster"
	"github.com/sprite-ai/agvis/internal/report"
)

// changeBoxColor outlines detected regions in quick annotated output.
var changeBoxColor = pixel.Color{R: 255, G: 69, B: 58, A: 255}

var diffCmd = &cobra.Command{
	Use:   "diff <baseline> <current>",
	Short: "Compare two screenshots and report changed regions",
	Long: `Compare two images pixel by pixel and extract bounding boxes around
the changed areas. Prints a JSON report to stdout; optional flags write
the diff heatmap, an annotated copy of the current image, and an
annotation spec describing the change boxes.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().String("diff-out", "", "write the diff heatmap PNG here")
	diffCmd.Flags().String("json-out", "", "write the JSON report here")
	diffCmd.Flags().Bool("resize", false, "resize current to the baseline size when dimensions differ")
	diffCmd.Flags().Int("bbox-threshold", detect.DefaultThreshold, "per-pixel change threshold for region extraction")
	diffCmd.Flags().Int("bbox-min-area", detect.DefaultMinArea, "minimum changed pixels per region")
	diffCmd.Flags().Int("bbox-pad", detect.DefaultPad, "padding around each region box")
	diffCmd.Flags().Int("max-boxes", detect.DefaultMaxBoxes, "maximum number of change regions")
	diffCmd.Flags().String("annotated-out", "", "write current with change boxes drawn here")
	diffCmd.Flags().String("annotate-spec-out", "", "write an annotate-compatible spec here")
}

// diffOutputs names the optional artifacts of one diff run. Empty paths
// are skipped.
type diffOutputs struct {
	DiffImage    string
	JSONReport   string
	Annotated    string
	AnnotateSpec string
}

func runDiff(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	cfg := detect.DefaultConfig()
	cfg.Threshold, _ = flags.GetInt("bbox-threshold")
	cfg.MinArea, _ = flags.GetInt("bbox-min-area")
	cfg.Pad, _ = flags.GetInt("bbox-pad")
	cfg.MaxBoxes, _ = flags.GetInt("max-boxes")
	resize, _ := flags.GetBool("resize")

	var outs diffOutputs
	outs.DiffImage, _ = flags.GetString("diff-out")
	outs.JSONReport, _ = flags.GetString("json-out")
	outs.Annotated, _ = flags.GetString("annotated-out")
	outs.AnnotateSpec, _ = flags.GetString("annotate-spec-out")

	rep, err := runDiffFiles(args[0], args[1], cfg, resize, outs)
	if err != nil {
		return err
	}

	out, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// runDiffFiles loads both images, runs detection, and writes the requested
// artifacts. The loop and observe commands reuse it with their own paths.
func runDiffFiles(baselinePath, currentPath string, cfg detect.Config, resize bool, outs diffOutputs) (*report.DiffReport, error) {
	before, err := loadImage(baselinePath)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	after, err := loadImage(currentPath)
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}

	resized := false
	if before.W != after.W || before.H != after.H {
		if !resize {
			return nil, fmt.Errorf("image sizes differ (%dx%d vs %dx%d); re-run with --resize to match baseline size",
				before.W, before.H, after.W, after.H)
		}
		after = pixel.Resize(after, before.W, before.H)
		resized = true
	}

	res, err := detect.Run(before, after, cfg)
	if err != nil {
		return nil, err
	}

	rep := report.NewDiffReport(absPath(baselinePath), absPath(currentPath), res, resized)

	if outs.DiffImage != "" {
		if err := savePNG(outs.DiffImage, detect.Overlay(after, res.Mask)); err != nil {
			return nil, err
		}
		rep.DiffImage = absPath(outs.DiffImage)
	}
	if outs.AnnotateSpec != "" {
		if err := report.WriteJSON(outs.AnnotateSpec, annotate.AutoSpec(res.Regions)); err != nil {
			return nil, err
		}
		rep.AnnotateSpec = absPath(outs.AnnotateSpec)
	}
	if outs.Annotated != "" {
		if err := savePNG(outs.Annotated, quickAnnotated(after, res.Regions)); err != nil {
			return nil, err
		}
		rep.AnnotatedImage = absPath(outs.Annotated)
	}
	if outs.JSONReport != "" {
		if err := report.WriteJSON(outs.JSONReport, rep); err != nil {
			return nil, err
		}
	}
	return &rep, nil
}

// quickAnnotated draws plain red outlines around the change regions. The
// full annotate pipeline produces richer output from the emitted spec.
func quickAnnotated(after *pixel.Buffer, regions []detect.Region) *pixel.Buffer {
	out := after.Clone()
	for _, r := range regions {
		raster.RectOutline(out, r.X, r.Y, r.W, r.H, changeBoxColor, 3)
	}
	return out
}
