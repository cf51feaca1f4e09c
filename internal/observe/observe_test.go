package observe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
)

func fixedBuffer(c pixel.Color) func(context.Context) (*pixel.Buffer, error) {
	return func(context.Context) (*pixel.Buffer, error) {
		return pixel.NewUniform(64, 64, c), nil
	}
}

func TestRunSequencesAndDiffs(t *testing.T) {
	var slept time.Duration
	var executed []string
	o := &Orchestrator{
		Before: fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		After:  fixedBuffer(pixel.Color{R: 0, G: 0, B: 0, A: 255}),
		Sleep:  func(d time.Duration) { slept = d },
		Exec: func(_ context.Context, cmd string) (int, string, error) {
			executed = append(executed, cmd)
			return 0, "ok", nil
		},
	}
	run, err := o.Run(context.Background(), Config{
		Action: Action{Label: "click save", Command: "echo save"},
		Settle: 2 * time.Second,
		Detect: detect.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(executed) != 1 || executed[0] != "echo save" {
		t.Errorf("executed = %v", executed)
	}
	if slept != 2*time.Second {
		t.Errorf("slept %v, want 2s", slept)
	}
	if run.Result == nil || run.Result.Stats.ChangedPixels != 64*64 {
		t.Errorf("diff missing or wrong: %+v", run.Result)
	}
	if run.RunID == "" {
		t.Error("run id empty")
	}
	if run.Action.Status != 0 || run.Action.Output != "ok" {
		t.Errorf("action result = %+v", run.Action)
	}
}

func TestRunClampsSettleToMaximum(t *testing.T) {
	var slept time.Duration
	o := &Orchestrator{
		Before: fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		After:  fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		Sleep:  func(d time.Duration) { slept = d },
	}
	run, err := o.Run(context.Background(), Config{
		Settle: 120 * time.Second,
		Detect: detect.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if slept != MaxSettle {
		t.Errorf("slept %v, want clamped %v", slept, MaxSettle)
	}
	if run.Settled != MaxSettle {
		t.Errorf("recorded settle %v, want %v", run.Settled, MaxSettle)
	}
}

func TestRunRecordsActionFailure(t *testing.T) {
	o := &Orchestrator{
		Before: fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		After:  fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		Sleep:  func(time.Duration) {},
		Exec: func(context.Context, string) (int, string, error) {
			return 3, "boom", nil
		},
	}
	run, err := o.Run(context.Background(), Config{
		Action: Action{Command: "exit 3"},
		Detect: detect.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("nonzero action status must not abort the run: %v", err)
	}
	if run.Action.Status != 3 {
		t.Errorf("action status = %d, want 3", run.Action.Status)
	}
	if run.Result == nil {
		t.Error("diff should still run after a failed action")
	}
}

func TestRunWithoutCommandSkipsExec(t *testing.T) {
	o := &Orchestrator{
		Before: fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		After:  fixedBuffer(pixel.Color{R: 255, G: 255, B: 255, A: 255}),
		Sleep:  func(time.Duration) {},
		Exec: func(context.Context, string) (int, string, error) {
			t.Fatal("exec called without an action command")
			return 0, "", nil
		},
	}
	run, err := o.Run(context.Background(), Config{Detect: detect.DefaultConfig()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Action.Status != 0 {
		t.Errorf("empty action status = %d, want 0", run.Action.Status)
	}
}

func TestClampSettle(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, 0},
		{-5 * time.Second, 0},
		{10 * time.Second, 10 * time.Second},
		{30 * time.Second, 30 * time.Second},
		{31 * time.Second, MaxSettle},
		{10 * time.Minute, MaxSettle},
	}
	for _, tt := range tests {
		if got := ClampSettle(tt.in); got != tt.want {
			t.Errorf("ClampSettle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRunIDShape(t *testing.T) {
	id := NewRunID()
	parts := strings.Split(id, "-")
	if len(parts) != 4 {
		t.Fatalf("run id %q, want timestamp-time-pid-rand shape", id)
	}
	if NewRunID() == id {
		// The random suffix makes collisions within a second vanishingly
		// unlikely; a repeat here almost certainly means the suffix is gone.
		t.Errorf("two run ids were identical: %q", id)
	}
}
