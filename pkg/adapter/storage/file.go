package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/domain/interfaces"
	"github.com/secmon-lab/earmark/pkg/utils/errutil"
)

// FileClient stores objects as files under a local directory. Writes go to a temporary
// file in the same directory and are renamed into place on Close, so a reader never sees
// a partially written export.
type FileClient struct {
	dir string
}

var _ interfaces.StorageClient = &FileClient{}

func NewFileClient(dir string) (*FileClient, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory", goerr.TV(errutil.FilePathKey, dir))
	}
	return &FileClient{dir: dir}, nil
}

func (x *FileClient) path(object string) (string, error) {
	clean := filepath.Clean("/" + object)
	if clean == "/" || strings.Contains(object, "\x00") {
		return "", goerr.New("invalid object name", goerr.TV(errutil.ObjectKey, object))
	}
	return filepath.Join(x.dir, clean), nil
}

func (x *FileClient) PutObject(ctx context.Context, object string) io.WriteCloser {
	dst, err := x.path(object)
	if err != nil {
		return &fileWriter{err: err}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return &fileWriter{err: goerr.Wrap(err, "failed to create object directory", goerr.TV(errutil.FilePathKey, dst))}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return &fileWriter{err: goerr.Wrap(err, "failed to create temporary file", goerr.TV(errutil.FilePathKey, dst))}
	}

	return &fileWriter{file: tmp, dst: dst}
}

func (x *FileClient) GetObject(ctx context.Context, object string) (io.ReadCloser, error) {
	path, err := x.path(object)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Join(ErrObjectNotFound, err)
		}
		return nil, goerr.Wrap(err, "failed to open object", goerr.TV(errutil.ObjectKey, object))
	}
	return f, nil
}

func (x *FileClient) Close(ctx context.Context) {}

type fileWriter struct {
	file   *os.File
	dst    string
	err    error
	closed bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.closed {
		return 0, goerr.New("writer is closed")
	}
	n, err := w.file.Write(p)
	if err != nil {
		w.err = goerr.Wrap(err, "failed to write object", goerr.TV(errutil.FilePathKey, w.dst))
		return n, w.err
	}
	return n, nil
}

func (w *fileWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.file == nil {
		return w.err
	}

	tmpName := w.file.Name()
	if err := w.file.Close(); err != nil && w.err == nil {
		w.err = goerr.Wrap(err, "failed to close temporary file", goerr.TV(errutil.FilePathKey, tmpName))
	}
	if w.err != nil {
		_ = os.Remove(tmpName)
		return w.err
	}

	if err := os.Rename(tmpName, w.dst); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to publish object", goerr.TV(errutil.FilePathKey, w.dst))
	}
	return nil
}
