package project

import (
	"context"

	"github.com/rachlenko/cargo-dockerize/internal/model"
	"github.com/rachlenko/cargo-dockerize/internal/runner"
)

// cargoBinary is the Rust build tool, looked up on PATH.
const cargoBinary = "cargo"

// BuildArgs are the cargo arguments for a release build.
var BuildArgs = []string{"build", "--release"}

// Build compiles the project at root in release mode.
//
// Returns a CLIError with ExitBuildFailed if cargo cannot be started or
// exits non-zero.
func Build(ctx context.Context, r runner.Runner, root string) error {
	if err := r.Run(ctx, root, cargoBinary, BuildArgs...); err != nil {
		return model.WrapCLIError(model.ExitBuildFailed, "cargo build failed", err)
	}
	return nil
}
