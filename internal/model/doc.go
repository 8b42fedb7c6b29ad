// Package model defines the domain types and value objects for the
// cargo-dockerize CLI.
//
// This package contains pure data structures with no external dependencies.
// Everything here is transient and scoped to a single run: the package
// metadata read from Cargo.toml, the image reference being built, the
// ordered provenance labels and the best-effort commit revision.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
