// Package observe sequences a before/after observation: capture, run an
// optional action, wait for the surface to settle, capture again, then
// diff. File layout and encoding stay with the caller; this package only
// orders the steps and enforces the timing bounds.
package observe

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"time"

	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
)

// MaxSettle caps the post-action settle wait. Longer requests are clamped,
// not rejected: an agent asking for two minutes still gets a bounded run.
const MaxSettle = 30 * time.Second

// Action is the optional command run between the two captures.
type Action struct {
	Label   string
	Command string
}

// ActionResult records how the action went. A nonzero Status is data, not
// an error: a failing action is exactly the kind of outcome the after
// capture is meant to show.
type ActionResult struct {
	Label      string    `json:"label,omitempty"`
	Command    string    `json:"command,omitempty"`
	Status     int       `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Output     string    `json:"-"`
}

// Config parameterizes one observation run.
type Config struct {
	Action Action
	Settle time.Duration
	Detect detect.Config
}

// Run is the outcome of one observation.
type Run struct {
	RunID      string
	Action     ActionResult
	Settled    time.Duration
	Before     *pixel.Buffer
	After      *pixel.Buffer
	Result     *detect.Result
	StartedAt  time.Time
	FinishedAt time.Time
}

// Orchestrator wires the observation steps together. Capture callbacks are
// injected so the same sequencing serves live screens, test fixtures and
// remote sessions; Sleep and Exec default to the real thing.
type Orchestrator struct {
	Before func(ctx context.Context) (*pixel.Buffer, error)
	After  func(ctx context.Context) (*pixel.Buffer, error)

	Sleep func(time.Duration)
	Exec  func(ctx context.Context, command string) (status int, output string, err error)
	Now   func() time.Time
}

// Run executes the observation sequence. Capture failures abort the run;
// action failures are recorded and carried through.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*Run, error) {
	if o.Before == nil || o.After == nil {
		return nil, errors.New("orchestrator needs both capture callbacks")
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}
	sleep := o.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	execFn := o.Exec
	if execFn == nil {
		execFn = runShell
	}

	run := &Run{RunID: NewRunID(), StartedAt: now()}

	before, err := o.Before(ctx)
	if err != nil {
		return nil, fmt.Errorf("before capture: %w", err)
	}
	run.Before = before

	run.Action = ActionResult{Label: cfg.Action.Label, Command: cfg.Action.Command, StartedAt: now()}
	if cfg.Action.Command != "" {
		status, output, err := execFn(ctx, cfg.Action.Command)
		if err != nil {
			return nil, fmt.Errorf("running action: %w", err)
		}
		run.Action.Status = status
		run.Action.Output = output
	}
	run.Action.FinishedAt = now()

	run.Settled = ClampSettle(cfg.Settle)
	if run.Settled > 0 {
		sleep(run.Settled)
	}

	after, err := o.After(ctx)
	if err != nil {
		return nil, fmt.Errorf("after capture: %w", err)
	}
	run.After = after

	result, err := detect.Run(before, after, cfg.Detect)
	if err != nil {
		return nil, fmt.Errorf("diffing captures: %w", err)
	}
	run.Result = result
	run.FinishedAt = now()
	return run, nil
}

// ClampSettle bounds a requested settle duration to [0, MaxSettle].
func ClampSettle(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > MaxSettle {
		return MaxSettle
	}
	return d
}

// NewRunID returns a timestamped identifier unique enough to name the
// artifacts of one run: compact timestamp, pid, and a random suffix.
func NewRunID() string {
	return fmt.Sprintf("%s-%d-%d",
		time.Now().Format("20060102-150405"),
		os.Getpid(),
		1000+rand.IntN(9000))
}

// runShell executes the action through a login shell so agent PATH setup
// applies. A nonzero exit is a status, not an error.
func runShell(ctx context.Context, command string) (int, string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), string(output), nil
		}
		return 1, string(output), err
	}
	return 0, string(output), nil
}
