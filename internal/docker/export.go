package docker

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rachlenko/cargo-dockerize/internal/model"
)

// ImageSaver opens the "docker save" tar stream of an image.
// *Client satisfies it through the Engine API.
type ImageSaver interface {
	SaveImage(ctx context.Context, ref string) (io.ReadCloser, error)
}

// ExportImage saves ref through gzip into archivePath and returns the number
// of uncompressed bytes read from the engine.
//
// Failures to obtain or read the image stream are ExitExportFailed; failures
// to create, write or close the archive are ExitIOError. A partially written
// archive is removed before returning an error.
func ExportImage(ctx context.Context, saver ImageSaver, ref model.ImageReference, archivePath string) (n int64, err error) {
	stream, err := saver.SaveImage(ctx, ref.String())
	if err != nil {
		return 0, model.WrapCLIError(model.ExitExportFailed,
			fmt.Sprintf("failed to save image %s", ref), err)
	}
	defer stream.Close()

	if dir := filepath.Dir(archivePath); dir != "." {
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return 0, model.WrapCLIError(model.ExitIOError,
				fmt.Sprintf("failed to create directory for %s", archivePath), mkErr)
		}
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitIOError,
			fmt.Sprintf("failed to create archive %s", archivePath), err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(archivePath)
		}
	}()

	gz := gzip.NewWriter(f)

	n, err = io.Copy(gz, readerOnly{stream})
	if err != nil {
		var rerr *readError
		if errors.As(err, &rerr) {
			return n, model.WrapCLIError(model.ExitExportFailed,
				fmt.Sprintf("failed to read image %s from Docker", ref), rerr.err)
		}
		return n, model.WrapCLIError(model.ExitIOError,
			fmt.Sprintf("failed to write archive %s", archivePath), err)
	}

	if err = gz.Close(); err != nil {
		return n, model.WrapCLIError(model.ExitIOError,
			fmt.Sprintf("failed to finish archive %s", archivePath), err)
	}
	if err = f.Close(); err != nil {
		return n, model.WrapCLIError(model.ExitIOError,
			fmt.Sprintf("failed to close archive %s", archivePath), err)
	}

	return n, nil
}

// readerOnly tags errors coming from the image stream so ExportImage can
// tell engine failures from local write failures after io.Copy.
type readerOnly struct {
	r io.Reader
}

func (ro readerOnly) Read(p []byte) (int, error) {
	n, err := ro.r.Read(p)
	if err != nil && err != io.EOF {
		return n, &readError{err: err}
	}
	return n, err
}

type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }
