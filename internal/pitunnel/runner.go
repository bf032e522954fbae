package pitunnel

import (
	"context"
	"os/exec"
)

// Runner abstracts synchronous subprocess execution so client methods can be
// unit-tested against canned command output without spawning real processes.
//
// Output returns the command's stdout; Run only reports the exit status.
// Both honor context cancellation via exec.CommandContext.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, name string, args ...string) error
}

// execRunner is the production Runner backed by os/exec. All arguments are
// passed via argv (never through a shell), so values scraped from process
// tables cannot be reinterpreted as shell syntax.
type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
