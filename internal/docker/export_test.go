package docker

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// fakeSaver serves a fixed payload as the image stream.
type fakeSaver struct {
	payload string
	openErr error
	readErr error
	gotRef  string
}

func (f *fakeSaver) SaveImage(_ context.Context, ref string) (io.ReadCloser, error) {
	f.gotRef = ref
	if f.openErr != nil {
		return nil, f.openErr
	}
	var r io.Reader = strings.NewReader(f.payload)
	if f.readErr != nil {
		r = io.MultiReader(r, &failingReader{err: f.readErr})
	}
	return io.NopCloser(r), nil
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

// gunzipFile returns the decompressed content of path.
func gunzipFile(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = io.Copy(&buf, zr)
	require.NoError(t, err)
	return buf.String()
}

func TestExportImage(t *testing.T) {
	dir := t.TempDir()
	ref := model.ImageReference{Name: "svc", Tag: "1.2.3"}
	saver := &fakeSaver{payload: "image tar stream"}
	archive := filepath.Join(dir, ref.ArchiveName())

	n, err := ExportImage(context.Background(), saver, ref, archive)
	require.NoError(t, err)

	assert.Equal(t, "svc:1.2.3", saver.gotRef)
	assert.Equal(t, int64(len("image tar stream")), n)
	assert.FileExists(t, filepath.Join(dir, "svc-1.2.3.tgz"))
	assert.Equal(t, "image tar stream", gunzipFile(t, archive))
}

func TestExportImage_NestedName(t *testing.T) {
	dir := t.TempDir()
	ref := model.ImageReference{Name: "acme/svc", Tag: "1"}
	archive := filepath.Join(dir, ref.ArchiveName())

	_, err := ExportImage(context.Background(), &fakeSaver{payload: "x"}, ref, archive)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "acme", "svc-1.tgz"))
}

func TestExportImage_SaveFails(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "svc-1.tgz")
	saver := &fakeSaver{openErr: errors.New("no such image")}

	_, err := ExportImage(context.Background(), saver, model.ImageReference{Name: "svc", Tag: "1"}, archive)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitExportFailed, cliErr.Code)
	assert.NoFileExists(t, archive)
}

// TestExportImage_StreamBreaks verifies that an engine error mid-stream is
// reported as an export failure and leaves no partial archive behind.
func TestExportImage_StreamBreaks(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "svc-1.tgz")
	cause := errors.New("connection reset")
	saver := &fakeSaver{payload: "partial", readErr: cause}

	_, err := ExportImage(context.Background(), saver, model.ImageReference{Name: "svc", Tag: "1"}, archive)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitExportFailed, cliErr.Code)
	assert.ErrorIs(t, err, cause)
	assert.NoFileExists(t, archive)
}

func TestExportImage_CreateFails(t *testing.T) {
	dir := t.TempDir()
	// A directory occupies the archive path, so os.Create fails.
	archive := filepath.Join(dir, "svc-1.tgz")
	require.NoError(t, os.Mkdir(archive, 0755))

	_, err := ExportImage(context.Background(), &fakeSaver{payload: "x"}, model.ImageReference{Name: "svc", Tag: "1"}, archive)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitIOError, cliErr.Code)
}
