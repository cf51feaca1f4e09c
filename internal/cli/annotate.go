package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/annotate"
	"github.com/sprite-ai/agvis/internal/report"
)

const specHelp = `Annotation spec (JSON):

Either a top-level array of annotations, or an object:
  {"defaults": {...}, "annotations": [...]}

Shapes:
  rect      x,y,w,h; color, width, fill, outline, outline_width
  arrow     x1,y1,x2,y2 (or from/to anchors); color, width, head_len, head_width
  text      x,y (or anchor); text, color, size, bg/text_bg, padding, auto_fit
  spotlight x,y,w,h; dim_color, opacity, padding, radius (aliases: focus, dim)

Coordinates are pixels by default. Set "units": "rel" for 0..1 fractions
of the image size; values may also carry their own unit ("50%", "0.25 rel",
"120 px"). Anchors reference other annotations by id, index, or "nearest",
with anchor_pos (top, bottom_right, center, ...) and anchor_offset [dx,dy].

defaults.scale (or auto_scale) sizes strokes and text for the image;
semantic keys (id, intent, action, severity, issue, hypothesis,
next_action, verify) pass through to the metadata sidecar untouched.`

var annotateCmd = &cobra.Command{
	Use:   "annotate <input.png> <output.png>",
	Short: "Render an annotation spec over an image",
	Long: `Render rectangles, arrows, labels and spotlights over a screenshot
according to a JSON spec. A metadata sidecar recording the resolved
geometry of every annotation is written next to the output unless
--no-meta is set. Use --spec-help for the spec format.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("spec", "", "JSON spec file path, or - for stdin")
	annotateCmd.Flags().String("meta-out", "", "metadata sidecar path (default: <output>.json)")
	annotateCmd.Flags().Bool("no-meta", false, "skip the metadata sidecar")
	annotateCmd.Flags().Bool("spec-help", false, "print the spec format and exit")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	if help, _ := cmd.Flags().GetBool("spec-help"); help {
		fmt.Println(specHelp)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("expected <input.png> <output.png> arguments")
	}
	input, output := args[0], args[1]

	specPath, _ := cmd.Flags().GetString("spec")
	if specPath == "" {
		return fmt.Errorf("--spec is required (path or - for stdin)")
	}
	raw, err := readSpec(specPath)
	if err != nil {
		return err
	}
	spec, err := annotate.ParseSpec(raw)
	if err != nil {
		return err
	}

	src, err := loadImage(input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	res, err := annotate.Apply(src, spec)
	if err != nil {
		return err
	}
	if err := savePNG(output, res.Image); err != nil {
		return err
	}

	noMeta, _ := cmd.Flags().GetBool("no-meta")
	if !noMeta {
		metaPath, _ := cmd.Flags().GetString("meta-out")
		if metaPath == "" {
			metaPath = report.SidecarFor(output)
		}
		meta := annotate.Meta{
			Version:     annotate.MetaVersion,
			InputPath:   absPath(input),
			OutputPath:  absPath(output),
			MetaPath:    absPath(metaPath),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Size:        annotate.MetaSize{Width: src.W, Height: src.H, Units: "px"},
			Defaults:    spec.Defaults,
			Annotations: res.Meta,
		}
		if err := report.WriteJSON(metaPath, meta); err != nil {
			return err
		}
	}

	fmt.Println(absPath(output))
	return nil
}

func readSpec(path string) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading spec from stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec: %w", err)
	}
	return raw, nil
}
