package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/capture"
)

var selectCmd = &cobra.Command{
	Use:   "select [candidates-file]",
	Short: "Run window selection over a candidate list",
	Long: `Evaluate a window candidate list against the capture policy and
print the selection decision as JSON without capturing anything. Reads
tab-separated candidates (index, x, y, w, h, optional title) from the
given file, or stdin when no file is named.

Useful for scripting: the decision carries the chosen window, the mode
(window, screen or fallback), and any warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().Int("min-width", capture.DefaultMinWidth, "minimum usable window width")
	selectCmd.Flags().Int("min-height", capture.DefaultMinHeight, "minimum usable window height")
	selectCmd.Flags().Int("min-area", capture.DefaultMinArea, "minimum usable window area in pixels")
}

func runSelect(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = readStdin()
	}
	if err != nil {
		return fmt.Errorf("reading candidates: %w", err)
	}

	policy := capture.DefaultPolicy()
	policy.MinWidth, _ = cmd.Flags().GetInt("min-width")
	policy.MinHeight, _ = cmd.Flags().GetInt("min-height")
	policy.MinArea, _ = cmd.Flags().GetInt("min-area")

	decision := policy.Select(capture.ParseCandidates(string(raw)))
	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding decision: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
