// Package vcs resolves version-control metadata for provenance labels.
//
// The installed git CLI is invoked for each lookup, so worktrees and
// submodules resolve exactly as they do for the user.
//
// Lookups are best-effort. Resolver never returns an error to its caller;
// a failed lookup yields model.FallbackRevision so the release pipeline can
// continue with the "unknown" sentinel.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// defaultGitBinary is looked up on PATH.
const defaultGitBinary = "git"

// Resolver looks up commit identifiers by invoking git.
type Resolver struct {
	// GitBinary is the executable to run. Empty means "git" from PATH.
	GitBinary string
}

// NewResolver creates a Resolver that uses git from PATH.
func NewResolver() *Resolver {
	return &Resolver{GitBinary: defaultGitBinary}
}

// ResolveRevision is a convenience wrapper around NewResolver().Revision.
func ResolveRevision(ctx context.Context, dir string) model.Revision {
	return NewResolver().Revision(ctx, dir)
}

// Revision returns the full commit identifier of HEAD for the repository
// containing dir.
//
// Any failure (git not installed, dir outside a repository, a repository
// without commits, empty output) produces the sentinel revision with the
// cause attached. The pipeline treats both outcomes the same way.
func (r *Resolver) Revision(ctx context.Context, dir string) model.Revision {
	out, err := r.runGit(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return model.FallbackRevision(err)
	}

	id := strings.TrimSpace(out)
	if id == "" {
		return model.FallbackRevision(errors.New("git rev-parse HEAD returned no output"))
	}
	return model.ResolvedRevision(id)
}

// runGit executes a git command with the given arguments in the specified
// directory and returns its stdout.
//
// The directory is passed to git via -C so the process working directory is
// never changed. On failure the returned error includes git's stderr.
func (r *Resolver) runGit(ctx context.Context, dir string, args ...string) (string, error) {
	bin := r.GitBinary
	if bin == "" {
		bin = defaultGitBinary
	}

	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, bin, fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("git %s failed: %s: %w", strings.Join(args, " "), stderrStr, err)
		}
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}
