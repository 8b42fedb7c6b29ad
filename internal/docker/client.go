package docker

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// defaultPingTimeout is the maximum duration to wait for a Docker daemon
// response during a Ping operation. Docker Desktop on macOS can take a few
// seconds to answer after waking up.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client. It handles automatic Docker
// socket detection across platforms and exposes the few Engine API calls
// the pipeline needs.
//
// Usage:
//
//	c, err := docker.NewClient()
//	if err != nil { /* handle */ }
//	defer c.Close()
//	rc, err := c.SaveImage(ctx, "svc:1.2.3")
type Client struct {
	// inner is the underlying Docker SDK client. It is wrapped rather than
	// embedded so only SaveImage, Ping and Close are reachable.
	inner *client.Client
}

// NewClient creates a new Docker client with automatic socket detection.
//
// The detection strategy follows this priority order:
//  1. DOCKER_HOST environment variable (if set, used as-is)
//  2. Platform-specific default socket paths:
//     - Linux: /var/run/docker.sock, then $XDG_RUNTIME_DIR/docker.sock (rootless)
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     - Windows: npipe:////./pipe/docker_engine
//
// Returns a model.CLIError with ExitExportFailed if no socket is found or
// the client cannot be created; the client is only needed for export.
func NewClient() (*Client, error) {
	// Step 1: an explicit DOCKER_HOST wins. The SDK parses the connection
	// string (unix://, tcp://, npipe://, ssh://) itself.
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	// Step 2: probe the platform's well-known socket locations.
	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitExportFailed, "Docker socket not found", err)
	}

	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client connected to the specified host,
// e.g. "unix:///var/run/docker.sock" or "npipe:////./pipe/docker_engine".
func newClientWithHost(host string) (*Client, error) {
	// WithAPIVersionNegotiation lets the client downgrade to the daemon's
	// API version instead of failing against an older engine.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitExportFailed,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost determines the Docker socket path for the current platform.
// It probes known socket paths and returns the first one that exists.
// Reachability is checked separately by Ping.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		// The system daemon socket first, then the rootless daemon which
		// listens under the user's runtime directory.
		paths := []string{"/var/run/docker.sock"}
		if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
			paths = append(paths, xdg+"/docker.sock")
		}
		return detectUnixSocket(paths)

	case "darwin":
		// Docker Desktop symlinks /var/run/docker.sock unless the user
		// opted out; newer versions always provide ~/.docker/run/docker.sock.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Without a home directory only the standard path is left.
			return detectUnixSocket([]string{"/var/run/docker.sock"})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// os.Stat does not work on named pipes, so probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			// Only the existence of the pipe matters; drop the probe connection.
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the Docker host URI for the first path that
// exists. Paths are checked in order, most preferred first.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		// A successful Stat means the socket file exists, not that a
		// daemon is listening on it.
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies that the Docker daemon is reachable, waiting at most
// defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	// Bound the wait so a paused Docker Desktop does not hang the export.
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(
			model.ExitExportFailed,
			"Docker daemon is not responding — is Docker running?",
			err,
		)
	}
	return nil
}

// SaveImage opens the tar stream of a single image, the same stream
// "docker save <ref>" writes. The caller must close the returned reader.
func (c *Client) SaveImage(ctx context.Context, ref string) (io.ReadCloser, error) {
	// ImageSave accepts several references and would bundle them into one
	// archive; the pipeline always exports exactly the primary tag.
	return c.inner.ImageSave(ctx, []string{ref})
}

// Close releases all resources held by the Docker client.
// Close is safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
