package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/annotate"
	"github.com/sprite-ai/agvis/internal/capture"
	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/model"
	"github.com/sprite-ai/agvis/internal/observe"
	"github.com/sprite-ai/agvis/internal/pixel"
	"github.com/sprite-ai/agvis/internal/report"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Capture before/after screenshots around an action",
	Long: `Run the full observation sequence: capture a before screenshot,
execute the action command, wait for the UI to settle, capture an after
screenshot, then diff the pair. All artifacts land in the output
directory under one run id and the combined packet prints as JSON.

A failing action command is recorded in the packet, not treated as an
error: the after capture exists precisely to show what the failure did
to the screen.`,
	RunE: runObserve,
}

func init() {
	observeCmd.Flags().String("process", "app", "process name recorded in artifacts")
	observeCmd.Flags().String("action", "observe", "human-readable action label")
	observeCmd.Flags().String("action-cmd", "", "shell command to run between captures")
	observeCmd.Flags().Float64("duration", 2, "settle time in seconds before the after capture (max 30)")
	observeCmd.Flags().String("out-dir", "", "artifact directory (default: <out-root>/observe)")
	observeCmd.Flags().String("candidates", "", "window candidate list file, or - for stdin")
	observeCmd.Flags().Bool("screen", false, "capture the full display, skipping window selection")
	observeCmd.Flags().Int("display", 0, "display index for screen capture")
	observeCmd.Flags().Bool("strict", false, "fail when either capture falls back to placeholder output")
}

func runObserve(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	process, _ := flags.GetString("process")
	label, _ := flags.GetString("action")
	actionCmd, _ := flags.GetString("action-cmd")
	duration, _ := flags.GetFloat64("duration")
	display, _ := flags.GetInt("display")
	screen, _ := flags.GetBool("screen")
	candidatesPath, _ := flags.GetString("candidates")

	outDir, _ := flags.GetString("out-dir")
	if outDir == "" {
		outDir = filepath.Join(outRoot(), "observe")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating observe dir: %w", err)
	}

	decision, err := captureDecision(candidatesPath, screen)
	if err != nil {
		return err
	}

	// Each capture records how it actually resolved, since either one can
	// independently fall back to a placeholder.
	var beforeDecision, afterDecision capture.Decision
	orch := &observe.Orchestrator{
		Before: func(ctx context.Context) (*pixel.Buffer, error) {
			var buf *pixel.Buffer
			buf, beforeDecision = captureOrPlaceholder(decision, display)
			return buf, nil
		},
		After: func(ctx context.Context) (*pixel.Buffer, error) {
			var buf *pixel.Buffer
			buf, afterDecision = captureOrPlaceholder(decision, display)
			return buf, nil
		},
	}

	cfg := observe.Config{
		Action: observe.Action{Label: label, Command: actionCmd},
		Settle: time.Duration(duration * float64(time.Second)),
		Detect: detect.DefaultConfig(),
	}
	cfg.Detect.ResizeToMatch = true

	run, err := orch.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	slug := slugify(process)
	name := func(prefix, ext string) string {
		return filepath.Join(outDir, fmt.Sprintf("%s-%s-%s.%s", prefix, slug, run.RunID, ext))
	}
	beforePath := name("before", "png")
	afterPath := name("after", "png")
	logPath := name("action", "log")
	diffPath := name("diff", "png")
	annotatedPath := name("diff-annotated", "png")
	specPath := name("diff-annotate-spec", "json")
	comparePath := name("compare", "json")
	packetPath := name("observe", "json")

	beforeRec, err := writeObserveCapture(beforePath, run.Before, beforeDecision, process, "before", label)
	if err != nil {
		return err
	}
	afterRec, err := writeObserveCapture(afterPath, run.After, afterDecision, process, "after", label)
	if err != nil {
		return err
	}
	if err := os.WriteFile(logPath, []byte(run.Action.Output), 0o644); err != nil {
		return fmt.Errorf("writing action log: %w", err)
	}

	after := run.After
	if after.W != run.Before.W || after.H != run.Before.H {
		after = pixel.Resize(after, run.Before.W, run.Before.H)
	}
	if err := savePNG(diffPath, detect.Overlay(after, run.Result.Mask)); err != nil {
		return err
	}
	if err := savePNG(annotatedPath, quickAnnotated(after, run.Result.Regions)); err != nil {
		return err
	}
	if err := report.WriteJSON(specPath, annotate.AutoSpec(run.Result.Regions)); err != nil {
		return err
	}

	diffReport := report.NewDiffReport(beforeRec.Path, afterRec.Path, run.Result, after != run.After)
	diffReport.DiffImage = absPath(diffPath)
	diffReport.AnnotatedImage = absPath(annotatedPath)
	diffReport.AnnotateSpec = absPath(specPath)
	if err := report.WriteJSON(comparePath, diffReport); err != nil {
		return err
	}

	packet := report.ObservePacket{
		RunID:         run.RunID,
		Process:       process,
		Action:        run.Action,
		BeforeCapture: beforeRec,
		AfterCapture:  afterRec,
		SettleSeconds: run.Settled.Seconds(),
		Diff:          diffReport,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
	}
	if err := report.WriteJSON(packetPath, packet); err != nil {
		return err
	}

	out, err := json.Marshal(packet)
	if err != nil {
		return fmt.Errorf("encoding packet: %w", err)
	}
	fmt.Println(string(out))

	if strict, _ := flags.GetBool("strict"); strict && (beforeDecision.FallbackUsed || afterDecision.FallbackUsed) {
		return fmt.Errorf("observation used placeholder captures; check capture permissions or pass --candidates with a visible window")
	}
	return nil
}

// captureOrPlaceholder executes a capture decision, degrading to a
// placeholder frame on failure so the observation sequence never aborts
// mid-run.
func captureOrPlaceholder(decision capture.Decision, display int) (*pixel.Buffer, capture.Decision) {
	buf, err := capture.SourceFor(decision, display).Capture()
	if err != nil {
		decision.Mode = model.CaptureFallback
		decision.FallbackUsed = true
		decision.Warnings = append(decision.Warnings, fmt.Sprintf("capture failed: %v; writing placeholder", err))
		return capture.Placeholder(), decision
	}
	return buf, decision
}

func writeObserveCapture(path string, buf *pixel.Buffer, decision capture.Decision, process, step, note string) (report.CaptureRecord, error) {
	if err := savePNG(path, buf); err != nil {
		return report.CaptureRecord{}, err
	}
	rec := report.CaptureRecord{
		Path:       absPath(path),
		Step:       step,
		Note:       note,
		Process:    process,
		Decision:   decision,
		Size:       report.Size{Width: buf.W, Height: buf.H},
		CapturedAt: time.Now().UTC(),
	}
	if err := report.WriteJSON(report.SidecarFor(path), rec); err != nil {
		return report.CaptureRecord{}, err
	}
	return rec, nil
}
