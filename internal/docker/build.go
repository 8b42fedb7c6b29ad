package docker

import (
	"context"
	"fmt"

	"github.com/rachlenko/cargo-dockerize/internal/model"
	"github.com/rachlenko/cargo-dockerize/internal/runner"
)

// dockerBinary is the docker CLI, looked up on PATH.
const dockerBinary = "docker"

// BuildOptions describes a single "docker build" invocation.
type BuildOptions struct {
	// Tags lists every reference to apply; the first one is the primary tag.
	Tags []model.ImageReference

	// Dockerfile is passed to -f as given, relative to the build directory.
	Dockerfile string

	// Labels are applied in order, one --label flag each.
	Labels model.Labels

	// Context is the build context argument. Empty means ".", the
	// directory the command runs in.
	Context string
}

// BuildArgs returns the docker CLI arguments for opts:
//
//	build -t <tag>... -f <dockerfile> --label <k=v>... <context>
func BuildArgs(opts BuildOptions) []string {
	buildContext := opts.Context
	if buildContext == "" {
		buildContext = "."
	}

	args := make([]string, 0, 4+len(opts.Tags)*2+len(opts.Labels)*2)
	args = append(args, "build")
	for _, ref := range opts.Tags {
		args = append(args, "-t", ref.String())
	}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	args = append(args, opts.Labels.Args()...)
	args = append(args, buildContext)
	return args
}

// BuildImage runs "docker build" in dir and waits for it to finish.
//
// Returns a CLIError with ExitImageBuildFailed if docker cannot be started
// or exits non-zero.
func BuildImage(ctx context.Context, r runner.Runner, dir string, opts BuildOptions) error {
	if len(opts.Tags) == 0 {
		return model.NewCLIError(model.ExitImageBuildFailed, "docker build needs at least one tag")
	}

	if err := r.Run(ctx, dir, dockerBinary, BuildArgs(opts)...); err != nil {
		return model.WrapCLIError(model.ExitImageBuildFailed,
			fmt.Sprintf("docker build of %s failed", opts.Tags[0]), err)
	}
	return nil
}
