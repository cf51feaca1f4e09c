package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/detect"
)

var loopCmd = &cobra.Command{
	Use:   "loop <current.png> <baseline-name>",
	Short: "Compare a screenshot against a named baseline",
	Long: `Maintain a baseline image per name and diff each new screenshot
against it. The first run for a name stores the screenshot as the
baseline; later runs diff against it and keep a timestamped history of
screenshots, diffs, reports and annotated images.

Layout under the loop directory:
  baselines/<name>.png        the reference image
  latest/<name>.png           most recent screenshot
  history/<name>-<ts>.png     every screenshot seen
  diffs/<name>-<ts>.png       diff heatmaps
  reports/<name>-<ts>.json    diff reports and annotation specs
  annotations/<name>-<ts>.png annotated screenshots`,
	Args: cobra.ExactArgs(2),
	RunE: runLoop,
}

func init() {
	loopCmd.Flags().String("loop-dir", "", "loop storage directory (default: <out-root>/loop, or AGVIS_LOOP_DIR)")
	loopCmd.Flags().Bool("resize", false, "resize current to the baseline size when dimensions differ")
	loopCmd.Flags().Bool("update-baseline", false, "replace the baseline with current after comparison")
	loopCmd.Flags().Bool("no-annotated", false, "skip annotated output and spec")
	loopCmd.Flags().Int("bbox-threshold", detect.DefaultThreshold, "per-pixel change threshold for region extraction")
	loopCmd.Flags().Int("bbox-min-area", detect.DefaultMinArea, "minimum changed pixels per region")
	loopCmd.Flags().Int("bbox-pad", detect.DefaultPad, "padding around each region box")
	loopCmd.Flags().Int("max-boxes", detect.DefaultMaxBoxes, "maximum number of change regions")
}

func runLoop(cmd *cobra.Command, args []string) error {
	currentPath, baselineName := args[0], args[1]
	if _, err := os.Stat(currentPath); err != nil {
		return fmt.Errorf("current image not found: %s", currentPath)
	}

	flags := cmd.Flags()
	loopDir, _ := flags.GetString("loop-dir")
	if loopDir == "" {
		if v := strings.TrimSpace(os.Getenv("AGVIS_LOOP_DIR")); v != "" {
			loopDir = v
		} else {
			loopDir = filepath.Join(outRoot(), "loop")
		}
	}

	name := sanitizeBaselineName(baselineName)
	ts := timestampCompact()

	baselinePath := filepath.Join(loopDir, "baselines", name+".png")
	latestPath := filepath.Join(loopDir, "latest", name+".png")
	historyPath := filepath.Join(loopDir, "history", fmt.Sprintf("%s-%s.png", name, ts))

	if err := copyFile(currentPath, latestPath); err != nil {
		return err
	}
	if err := copyFile(currentPath, historyPath); err != nil {
		return err
	}

	if _, err := os.Stat(baselinePath); err != nil {
		if err := copyFile(currentPath, baselinePath); err != nil {
			return err
		}
		out, err := json.Marshal(map[string]string{
			"baseline_created": absPath(baselinePath),
			"latest":           absPath(latestPath),
			"history":          absPath(historyPath),
		})
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	cfg := detect.DefaultConfig()
	cfg.Threshold, _ = flags.GetInt("bbox-threshold")
	cfg.MinArea, _ = flags.GetInt("bbox-min-area")
	cfg.Pad, _ = flags.GetInt("bbox-pad")
	cfg.MaxBoxes, _ = flags.GetInt("max-boxes")
	resize, _ := flags.GetBool("resize")
	noAnnotated, _ := flags.GetBool("no-annotated")

	outs := diffOutputs{
		DiffImage:  filepath.Join(loopDir, "diffs", fmt.Sprintf("%s-%s.png", name, ts)),
		JSONReport: filepath.Join(loopDir, "reports", fmt.Sprintf("%s-%s.json", name, ts)),
	}
	if !noAnnotated {
		outs.Annotated = filepath.Join(loopDir, "annotations", fmt.Sprintf("%s-%s.png", name, ts))
		outs.AnnotateSpec = filepath.Join(loopDir, "reports", fmt.Sprintf("%s-%s-change-spec.json", name, ts))
	}

	rep, err := runDiffFiles(baselinePath, currentPath, cfg, resize, outs)
	if err != nil {
		return err
	}

	if update, _ := flags.GetBool("update-baseline"); update {
		if err := copyFile(currentPath, baselinePath); err != nil {
			return err
		}
	}

	out, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
