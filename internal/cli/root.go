package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agvis",
	Short: "Visual diff and annotation engine for agent screenshots",
	Long: `agvis compares screenshots, extracts changed regions, and renders
annotation overlays so agents can see what their actions changed.

Typical flow:
  agvis capture before.png             # grab the screen or a window
  agvis observe --action-cmd "..."     # before/action/settle/after in one run
  agvis diff before.png after.png      # report changed regions
  agvis annotate shot.png out.png --spec spec.json
  agvis review report.json             # inspect a diff report in the TUI`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(
		diffCmd,
		annotateCmd,
		captureCmd,
		selectCmd,
		observeCmd,
		loopCmd,
		reviewCmd,
		serveCmd,
		versionCmd,
	)
}
