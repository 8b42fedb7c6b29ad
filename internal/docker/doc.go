// Package docker provides the container-image side of the release
// pipeline for the cargo-dockerize CLI.
//
// This package handles:
//   - Image reference validation (repository name and tag grammar)
//   - OCI provenance labels stamped onto the image at build time
//   - The "docker build" invocation, run through the docker CLI so the
//     user's BuildKit, contexts and credential helpers apply unchanged
//   - Image export, streamed from the Docker Engine API through gzip into
//     a .tgz archive
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
