// Package main is the entry point for the cargo-dockerize CLI.
//
// Installed on PATH, the binary is also reachable as "cargo dockerize".
// All functionality lives in internal/cli.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release build. During development they default to "dev",
// "none", and "unknown".
package main

import (
	"github.com/rachlenko/cargo-dockerize/internal/cli"
)

// Set at build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
