package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// FindRoot walks upward from start, one directory at a time, and returns the
// first directory that contains Cargo.toml.
//
// start is made absolute first so the walk terminates at the filesystem
// root. Returns a CLIError with ExitNotFound when no ancestor holds the
// manifest.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", model.WrapCLIError(model.ExitIOError, "failed to resolve start directory", err)
	}

	for {
		if hasManifest(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		// filepath.Dir returns its input unchanged once the root ("/" or a
		// volume name on Windows) is reached.
		if parent == dir {
			return "", model.NewCLIError(model.ExitNotFound,
				fmt.Sprintf("could not find %s in %s or any parent directory", model.ManifestFile, start))
		}
		dir = parent
	}
}

// ManifestPath returns the path of Cargo.toml inside root.
func ManifestPath(root string) string {
	return filepath.Join(root, model.ManifestFile)
}

// hasManifest reports whether dir contains a Cargo.toml file.
// A directory named Cargo.toml does not count.
func hasManifest(dir string) bool {
	info, err := os.Stat(ManifestPath(dir))
	if err != nil {
		return false
	}
	return !info.IsDir()
}
