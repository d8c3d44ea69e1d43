package pipeline

import (
	"context"
	"fmt"
)

// StageResult is the normalized outcome of one stage execution: either
// OK with the collaborator's output, or a failure message. The runner
// never interprets collaborator payloads and never touches job records.
type StageResult struct {
	OK     bool
	Output any
	Err    string
}

// StageFunc wraps one external collaborator call.
type StageFunc func(ctx context.Context) (any, error)

type Runner struct{}

// Run executes a single stage, converting errors and panics into a
// failure result so a collaborator can never crash the orchestrator.
func (Runner) Run(ctx context.Context, stage string, fn StageFunc) (result StageResult) {
	defer func() {
		if r := recover(); r != nil {
			result = StageResult{Err: fmt.Sprintf("%s stage panicked: %v", stage, r)}
		}
	}()

	output, err := fn(ctx)
	if err != nil {
		return StageResult{Err: err.Error()}
	}
	return StageResult{OK: true, Output: output}
}
