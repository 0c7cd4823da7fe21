package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the process is killed
const waitDelay = 2 * time.Second

// Output is what a finished search process produced
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts the external search process.
// A non-zero exit is reported through Output.ExitCode, not as an error;
// the error is reserved for processes that could not run to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// execRunner runs processes with os/exec. Arguments are passed as discrete
// argv entries, no shell is involved.
type execRunner struct{}

// NewExecRunner returns the production Runner
func NewExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s did not finish: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, fmt.Errorf("failed to run %s: %w", name, err)
}
