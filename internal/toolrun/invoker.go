package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Invoker runs external build/lint commands with a wall-clock timeout.
// A timed-out command surfaces as an error, never as a hang.
type Invoker struct {
	timeout time.Duration
}

func NewInvoker(timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Invoker{timeout: timeout}
}

type Output struct {
	Stdout string
	Stderr string
}

func (i *Invoker) Invoke(ctx context.Context, dir, name string, args ...string) (*Output, error) {
	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := &Output{Stdout: stdout.String(), Stderr: stderr.String()}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%s timed out after %s", name, i.timeout)
	}
	if err != nil {
		if out.Stderr != "" {
			return out, fmt.Errorf("%s failed: %v: %s", name, err, out.Stderr)
		}
		return out, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}
