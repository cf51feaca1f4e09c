package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/report"
	"github.com/sprite-ai/agvis/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review <report.json>",
	Short: "Inspect a diff report in an interactive TUI",
	Long: `Open an interactive view of a diff report: the ranked change
regions, a coverage map of where they sit on the image, and the raw
report JSON.

Examples:
  agvis diff before.png after.png --json-out report.json
  agvis review report.json
  agvis review report.json --stat   # print a summary and exit`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Bool("stat", false, "print report stats and exit (non-interactive)")
}

func runReview(cmd *cobra.Command, args []string) error {
	rep, err := report.ReadDiffReport(args[0])
	if err != nil {
		return err
	}

	if stat, _ := cmd.Flags().GetBool("stat"); stat {
		fmt.Printf("%s vs %s\n", rep.Baseline, rep.Current)
		fmt.Printf("%dx%d, %.3f%% changed (avg diff %.3f%%), %d regions\n",
			rep.Size.Width, rep.Size.Height, rep.PercentChanged, rep.AvgDiffPercent, rep.RegionCount)
		for _, r := range rep.ChangeRegions {
			fmt.Printf("  %-12s %4d,%-4d %4dx%-4d %6d px\n", r.ID, r.X, r.Y, r.W, r.H, r.Pixels)
		}
		return nil
	}

	return tui.Run(rep)
}
