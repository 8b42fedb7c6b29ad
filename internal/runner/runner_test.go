package runner

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"no args", "cargo", nil, "cargo"},
		{"plain args", "cargo", []string{"build", "--release"}, "cargo build --release"},
		{
			name: "argument with space is quoted",
			cmd:  "docker",
			args: []string{"build", "--label", "org.opencontainers.image.title=My Service"},
			want: `docker build --label "org.opencontainers.image.title=My Service"`,
		},
		{"empty argument is visible", "docker", []string{""}, `docker ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandLine(tt.cmd, tt.args...))
		})
	}
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
}

func TestExecRunner_Run(t *testing.T) {
	requireUnix(t)
	if _, err := exec.LookPath("pwd"); err != nil {
		t.Skip("pwd not available")
	}

	dir := t.TempDir()
	var stdout bytes.Buffer
	r := &ExecRunner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	require.NoError(t, r.Run(context.Background(), dir, "pwd"))

	// The command runs inside dir; compare resolved paths because the temp
	// directory may be a symlink (macOS /var → /private/var).
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(string(bytes.TrimSpace(stdout.Bytes())))
	assert.Equal(t, want, got)
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	requireUnix(t)
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	r := &ExecRunner{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err := r.Run(context.Background(), t.TempDir(), "false")

	require.Error(t, err)
	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
	assert.Contains(t, err.Error(), "false")
}

func TestExecRunner_MissingProgram(t *testing.T) {
	r := &ExecRunner{}
	err := r.Run(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "missing-tool"))
	assert.Error(t, err)
}
