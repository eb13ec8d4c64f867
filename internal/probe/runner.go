package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"time"

	"github.com/hamed0406/probeexporter/internal/domain"
)

// Runner executes one probe and hands back what the tool printed.
type Runner interface {
	Run(ctx context.Context, req domain.ProbeRequest) (domain.RawOutput, error)
}

// ExecRunner runs the system ping binary. When Binary6 is set it is used for
// IPv6 literals (BSD-style systems ship a separate ping6).
type ExecRunner struct {
	Binary  string
	Binary6 string
	// WaitDelay bounds how long Run waits for output pipes after the
	// process is killed.
	WaitDelay time.Duration
}

func NewExecRunner(binary, binary6 string) *ExecRunner {
	if binary == "" {
		binary = "ping"
	}
	return &ExecRunner{Binary: binary, Binary6: binary6, WaitDelay: time.Second}
}

func (r *ExecRunner) binaryFor(t domain.Target) string {
	if r.Binary6 != "" && t.IsIPv6() {
		return r.Binary6
	}
	return r.Binary
}

// Args is the argument list passed to the ping binary.
func Args(req domain.ProbeRequest) []string {
	return []string{"-q", "-c", strconv.Itoa(req.Count), req.Target.String()}
}

// Run starts ping and waits for it. A non-zero exit is not an error; it is
// reported through RawOutput.ExitCode. Cancelling ctx kills the process and
// Run returns ctx.Err().
func (r *ExecRunner) Run(ctx context.Context, req domain.ProbeRequest) (domain.RawOutput, error) {
	bin := r.binaryFor(req.Target)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, Args(req)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay

	start := time.Now()
	err := cmd.Run()
	out := domain.RawOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	// A ping that exited on its own keeps its output even if ctx ended after.
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr), errors.Is(err, exec.ErrWaitDelay):
	default:
		return out, &SpawnError{Binary: bin, Err: err}
	}

	if code := cmd.ProcessState.ExitCode(); code >= 0 {
		out.ExitCode = &code
	}
	return out, nil
}
