package cli

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/sprite-ai/agvis/internal/capture"
	"github.com/sprite-ai/agvis/internal/model"
	"github.com/sprite-ai/agvis/internal/pixel"
	"github.com/sprite-ai/agvis/internal/report"
)

var captureCmd = &cobra.Command{
	Use:   "capture [out.png]",
	Short: "Capture a screenshot with a metadata sidecar",
	Long: `Capture a window, the screen, or a placeholder frame. Window
candidates come from --candidates (tab-separated: index, x, y, w, h,
optional title); the largest usable window wins. With no usable window
the whole display is captured, and with no candidates at all a
placeholder frame is written so downstream steps always have an image.

--strict turns a placeholder fallback into a hard error for callers that
need a real capture.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().String("candidates", "", "window candidate list file, or - for stdin")
	captureCmd.Flags().Bool("screen", false, "capture the full display, skipping window selection")
	captureCmd.Flags().Int("display", 0, "display index for screen capture")
	captureCmd.Flags().String("process", "", "process name recorded in metadata")
	captureCmd.Flags().String("step", "", "workflow step label (e.g. before/after)")
	captureCmd.Flags().String("note", "", "free-form note stored in metadata")
	captureCmd.Flags().String("sidecar", "", "metadata sidecar path (default: <out>.json)")
	captureCmd.Flags().Bool("no-sidecar", false, "skip the metadata sidecar")
	captureCmd.Flags().Bool("strict", false, "fail when capture falls back to placeholder output")
	captureCmd.Flags().Bool("json", false, "print capture metadata JSON to stdout")
}

func runCapture(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	process, _ := flags.GetString("process")
	step, _ := flags.GetString("step")
	note, _ := flags.GetString("note")
	display, _ := flags.GetInt("display")
	screen, _ := flags.GetBool("screen")
	candidatesPath, _ := flags.GetString("candidates")

	outPath := defaultCapturePath(process)
	if len(args) == 1 {
		outPath = args[0]
	}

	sidecarPath, _ := flags.GetString("sidecar")
	if noSidecar, _ := flags.GetBool("no-sidecar"); noSidecar {
		sidecarPath = ""
	} else if sidecarPath == "" {
		sidecarPath = report.SidecarFor(outPath)
	}

	decision, err := captureDecision(candidatesPath, screen)
	if err != nil {
		return err
	}
	rec, _, err := captureToFile(outPath, decision, display, process, step, note, sidecarPath)
	if err != nil {
		return err
	}

	asJSON, _ := flags.GetBool("json")
	if asJSON {
		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding capture metadata: %w", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(rec.Path)
	}

	if strict, _ := flags.GetBool("strict"); strict && rec.Decision.FallbackUsed {
		return fmt.Errorf("capture fell back to placeholder output; check capture permissions or pass --candidates with a visible window")
	}
	return nil
}

// captureDecision resolves the capture mode before any pixels move.
// --screen bypasses window selection entirely.
func captureDecision(candidatesPath string, screen bool) (capture.Decision, error) {
	if screen {
		return capture.Decision{Mode: model.CaptureScreen, SelectionMode: "display"}, nil
	}
	cands, err := readCandidates(candidatesPath)
	if err != nil {
		return capture.Decision{}, err
	}
	return capture.DefaultPolicy().Select(cands), nil
}

func readCandidates(path string) ([]capture.Candidate, error) {
	if path == "" {
		return nil, nil
	}
	var raw []byte
	var err error
	if path == "-" {
		raw, err = readStdin()
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}
	return capture.ParseCandidates(string(raw)), nil
}

// captureToFile executes a capture decision, writes the PNG and optional
// sidecar, and returns the record. A failed grab degrades to a placeholder
// frame rather than aborting, so downstream steps always have an image.
func captureToFile(outPath string, decision capture.Decision, display int, process, step, note, sidecarPath string) (report.CaptureRecord, *pixel.Buffer, error) {
	src := capture.SourceFor(decision, display)
	buf, err := src.Capture()
	if err != nil {
		decision.Mode = model.CaptureFallback
		decision.FallbackUsed = true
		decision.Warnings = append(decision.Warnings, fmt.Sprintf("capture failed: %v; writing placeholder", err))
		buf = capture.Placeholder()
	}

	if err := savePNG(outPath, buf); err != nil {
		return report.CaptureRecord{}, nil, err
	}

	rec := report.CaptureRecord{
		Path:       absPath(outPath),
		Step:       step,
		Note:       note,
		Process:    process,
		Decision:   decision,
		Size:       report.Size{Width: buf.W, Height: buf.H},
		CapturedAt: time.Now().UTC(),
	}
	if sidecarPath != "" {
		if err := report.WriteJSON(sidecarPath, rec); err != nil {
			return report.CaptureRecord{}, nil, err
		}
	}
	return rec, buf, nil
}

func defaultCapturePath(process string) string {
	if process == "" {
		process = "app"
	}
	name := fmt.Sprintf("app-window-%s-%s-%d-%d.png",
		slugify(process), timestampCompact(), os.Getpid(), 1000+rand.IntN(9000))
	return filepath.Join(outRoot(), "capture", name)
}
