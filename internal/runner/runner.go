// Package runner executes the external tools of the release pipeline
// (cargo, docker) as child processes.
//
// Commands are run without a shell: the program and its arguments are
// passed straight to os/exec, so label values and tags containing spaces
// or shell metacharacters reach the tool unchanged.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner runs a program to completion in a working directory.
//
// Implementations must block until the process exits and return a non-nil
// error when it could not be started or exited non-zero.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming their output.
type ExecRunner struct {
	// Stdout and Stderr receive the child's output. Nil means the
	// corresponding stream of this process.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an ExecRunner wired to this process's stdout and stderr.
func New() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts name with args in dir and waits for it.
//
// The child inherits the environment. Its output is streamed rather than
// buffered so long cargo and docker builds show progress as they go.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	// #nosec G204 -- the program is fixed by the caller; args are passed
	// without shell interpretation.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", CommandLine(name, args...), err)
	}
	return nil
}

// CommandLine renders a command for log output. Arguments containing
// whitespace are quoted.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			parts = append(parts, fmt.Sprintf("%q", a))
			continue
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
